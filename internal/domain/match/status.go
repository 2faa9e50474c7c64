package match

import "strings"

// Status is the canonical lifecycle of a match.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusInPlay    Status = "IN_PLAY"
	StatusPaused    Status = "PAUSED"
	StatusFinished  Status = "FINISHED"
)

// LegacyStatus is the three-value vocabulary older consumers still read.
type LegacyStatus string

const (
	LegacyUpcoming LegacyStatus = "upcoming"
	LegacyLive     LegacyStatus = "live"
	LegacyFinished LegacyStatus = "finished"
)

// Legacy is the only way a LegacyStatus is produced.
func (s Status) Legacy() LegacyStatus {
	switch s {
	case StatusFinished:
		return LegacyFinished
	case StatusInPlay, StatusPaused:
		return LegacyLive
	default:
		return LegacyUpcoming
	}
}

func (s Status) IsFinished() bool {
	return s == StatusFinished
}

// Normalize maps unknown or empty values to SCHEDULED.
func (s Status) Normalize() Status {
	switch Status(strings.ToUpper(strings.TrimSpace(string(s)))) {
	case StatusFinished:
		return StatusFinished
	case StatusInPlay:
		return StatusInPlay
	case StatusPaused:
		return StatusPaused
	default:
		return StatusScheduled
	}
}

// TranslateStatus maps free-text upstream status strings. It never fails;
// anything unrecognised is SCHEDULED.
func TranslateStatus(raw string) Status {
	text := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case text == "":
		return StatusScheduled
	case strings.Contains(text, "finished"), text == "ft", text == "aet", text == "pen":
		return StatusFinished
	case strings.Contains(text, "half"), text == "ht":
		return StatusPaused
	case strings.Contains(text, "progress"), strings.Contains(text, "live"),
		text == "1h", text == "2h", text == "et":
		return StatusInPlay
	default:
		return StatusScheduled
	}
}
