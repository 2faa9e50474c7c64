package match

import (
	"testing"
	"time"
)

func TestNormalizeKickoff(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		timestamp string
		date      string
		clock     string
		want      string
	}{
		{name: "timestamp wins", timestamp: "2026-06-10T18:00:00+00:00", date: "2026-06-11", clock: "10:00:00", want: "2026-06-10T18:00:00.000Z"},
		{name: "zone-less timestamp is utc", timestamp: "2026-06-10T18:00:00", want: "2026-06-10T18:00:00.000Z"},
		{name: "date plus time appends Z", date: "2026-06-10", clock: "18:00:00", want: "2026-06-10T18:00:00.000Z"},
		{name: "date plus zoned time", date: "2026-06-10", clock: "20:00:00+02:00", want: "2026-06-10T18:00:00.000Z"},
		{name: "date only", date: "2026-06-10", want: "2026-06-10T00:00:00.000Z"},
		{name: "garbage", date: "10/06/2026", want: ""},
		{name: "bad timestamp", timestamp: "soon", date: "2026-06-10", want: ""},
		{name: "nothing", want: ""},
	}
	for _, tc := range cases {
		got := FormatKickoff(NormalizeKickoff(tc.timestamp, tc.date, tc.clock))
		if got != tc.want {
			t.Fatalf("%s: got %q want %q", tc.name, got, tc.want)
		}
	}
}

func TestFormatKickoff_UsesUTC(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("WIB", 7*3600)
	at := time.Date(2026, 6, 11, 1, 0, 0, 0, loc)
	if got := FormatKickoff(&at); got != "2026-06-10T18:00:00.000Z" {
		t.Fatalf("unexpected format %q", got)
	}
	if got := FormatKickoff(nil); got != "" {
		t.Fatalf("nil kickoff must format empty, got %q", got)
	}
}
