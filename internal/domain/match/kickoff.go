package match

import (
	"regexp"
	"strings"
	"time"
)

// KickoffLayout is the UTC ISO form used in fuzzy keys and
// comparisons; it matches what older records stored.
const KickoffLayout = "2006-01-02T15:04:05.000Z"

var zoneSuffix = regexp.MustCompile(`(?i)(z|[+-]\d{2}:?\d{2})$`)

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// NormalizeKickoff resolves a UTC kickoff from an explicit timestamp, a
// date plus time (UTC assumed without a zone), or a bare date at midnight
// UTC. It returns nil rather than guessing.
func NormalizeKickoff(timestamp, date, clock string) *time.Time {
	timestamp = strings.TrimSpace(timestamp)
	date = strings.TrimSpace(date)
	clock = strings.TrimSpace(clock)

	if timestamp != "" {
		return parseTimestamp(timestamp)
	}
	if date != "" && clock != "" {
		raw := date + "T" + clock
		if !zoneSuffix.MatchString(clock) {
			raw += "Z"
		}
		return parseTimestamp(raw)
	}
	if date != "" {
		t, err := time.Parse("2006-01-02", date)
		if err != nil {
			return nil
		}
		t = t.UTC()
		return &t
	}
	return nil
}

// ParseKickoff parses one ISO-like timestamp; zone-less values are UTC.
func ParseKickoff(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return parseTimestamp(raw)
}

// FormatKickoff renders t as KickoffLayout in UTC, or "" for nil.
func FormatKickoff(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.UTC().Format(KickoffLayout)
}

func parseTimestamp(raw string) *time.Time {
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			t = t.UTC().Truncate(time.Millisecond)
			return &t
		}
	}
	return nil
}
