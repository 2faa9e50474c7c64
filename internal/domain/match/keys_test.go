package match

import (
	"testing"
	"time"
)

func kickoffAt(raw string) *time.Time {
	return ParseKickoff(raw)
}

func TestNormalizeTeamName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  Côte d'Ivoire ": "cote d'ivoire",
		"CURAÇAO":          "curacao",
		"Türkiye":          "turkiye",
		"South   Korea":    "south korea",
		"":                 "",
	}
	for in, want := range cases {
		if got := NormalizeTeamName(in); got != want {
			t.Fatalf("NormalizeTeamName(%q)=%q want=%q", in, got, want)
		}
	}
}

func TestFuzzyKey(t *testing.T) {
	t.Parallel()

	at := kickoffAt("2026-06-10T18:00:00Z")
	if got := FuzzyKey("México", "Canada", at); got != "mexico|canada|2026-06-10T18:00:00.000Z" {
		t.Fatalf("unexpected fuzzy key %q", got)
	}
	if got := FuzzyKey("Mexico", "", at); got != "" {
		t.Fatalf("missing team must give empty key, got %q", got)
	}
	if got := FuzzyKey("Mexico", "Canada", nil); got != "" {
		t.Fatalf("missing kickoff must give empty key, got %q", got)
	}
}

func TestExternalKey(t *testing.T) {
	t.Parallel()

	if got := ExternalKey("thesportsdb", " 123 "); got != "thesportsdb:123" {
		t.Fatalf("unexpected external key %q", got)
	}
	if got := ExternalKey("thesportsdb", ""); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}
}

func TestIndex_ExactBeatsFuzzy(t *testing.T) {
	t.Parallel()

	at := kickoffAt("2026-06-10T18:00:00Z")
	manual := Match{ID: "manual-1", HomeTeam: "Argentina", AwayTeam: "Brazil", KickOffTime: at}
	synced := Match{ID: "thesportsdb_123", HomeTeam: "Argentina", AwayTeam: "Brazil", KickOffTime: kickoffAt("2026-06-11T18:00:00Z"),
		ExternalProvider: "thesportsdb", ExternalMatchID: "123"}
	idx := NewIndex([]Match{manual, synced})

	got, ok := idx.Resolve(Draft{Provider: "thesportsdb", ExternalMatchID: "123", HomeTeam: "argentina", AwayTeam: "brazil", KickOffTime: at})
	if !ok || got.ID != "thesportsdb_123" {
		t.Fatalf("expected exact match, got %+v ok=%v", got, ok)
	}

	got, ok = idx.Resolve(Draft{Provider: "thesportsdb", ExternalMatchID: "999", HomeTeam: "ARGENTINA", AwayTeam: "Brazil", KickOffTime: at})
	if !ok || got.ID != "manual-1" {
		t.Fatalf("expected fuzzy match on manual record, got %+v ok=%v", got, ok)
	}

	if _, ok := idx.Resolve(Draft{Provider: "thesportsdb", ExternalMatchID: "555", HomeTeam: "Spain", AwayTeam: "Japan", KickOffTime: at}); ok {
		t.Fatalf("expected no match")
	}
}

func TestIndex_PutRefreshesKeys(t *testing.T) {
	t.Parallel()

	at := kickoffAt("2026-06-10T18:00:00Z")
	idx := NewIndex([]Match{{ID: "manual-1", HomeTeam: "Argentina", AwayTeam: "Brazil", KickOffTime: at}})

	idx.Put(Match{ID: "manual-1", HomeTeam: "Argentina", AwayTeam: "Brazil", KickOffTime: at,
		ExternalProvider: "football-data", ExternalMatchID: "77"})
	if idx.Len() != 1 {
		t.Fatalf("put with same id must replace, len=%d", idx.Len())
	}

	got, ok := idx.Resolve(Draft{Provider: "football-data", ExternalMatchID: "77"})
	if !ok || got.ID != "manual-1" {
		t.Fatalf("expected provenance key after put, got %+v ok=%v", got, ok)
	}

	later := kickoffAt("2026-06-12T18:00:00Z")
	idx.Put(Match{ID: "manual-1", HomeTeam: "Argentina", AwayTeam: "Brazil", KickOffTime: later,
		ExternalProvider: "football-data", ExternalMatchID: "77"})
	if _, ok := idx.Resolve(Draft{Provider: "x", ExternalMatchID: "1", HomeTeam: "Argentina", AwayTeam: "Brazil", KickOffTime: at}); ok {
		t.Fatalf("stale fuzzy key must be dropped")
	}
}
