package match

import (
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ExternalKey is the provenance key "provider:externalId", or "" when
// either part is missing.
func ExternalKey(provider, externalMatchID string) string {
	provider = strings.TrimSpace(provider)
	externalMatchID = strings.TrimSpace(externalMatchID)
	if provider == "" || externalMatchID == "" {
		return ""
	}
	return provider + ":" + externalMatchID
}

// FuzzyKey is "home|away|kickoff" with names case- and accent-folded, or
// "" when any part is missing.
func FuzzyKey(homeTeam, awayTeam string, kickoff *time.Time) string {
	home := NormalizeTeamName(homeTeam)
	away := NormalizeTeamName(awayTeam)
	at := FormatKickoff(kickoff)
	if home == "" || away == "" || at == "" {
		return ""
	}
	return home + "|" + away + "|" + at
}

// NormalizeTeamName folds "Côte d'Ivoire " and "cote d'ivoire" together.
func NormalizeTeamName(name string) string {
	folder := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(folder, name)
	if err != nil {
		folded = name
	}
	return strings.Join(strings.Fields(strings.ToLower(folded)), " ")
}

func (d Draft) ExternalKey() string {
	return ExternalKey(d.Provider, d.ExternalMatchID)
}

func (d Draft) FuzzyKey() string {
	return FuzzyKey(d.HomeTeam, d.AwayTeam, d.KickOffTime)
}

func (m Match) ExternalKey() string {
	return ExternalKey(m.ExternalProvider, m.ExternalMatchID)
}

func (m Match) FuzzyKey() string {
	return FuzzyKey(m.HomeTeam, m.AwayTeam, m.KickOffTime)
}
