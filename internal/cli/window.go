package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/fixture-sync/internal/config"
	"github.com/riskibarqy/fixture-sync/internal/usecase"
)

const dayLayout = "2006-01-02"

// parseBound accepts a calendar day or an RFC 3339 instant. A bare day
// used as an upper bound covers the whole day.
func parseBound(raw string, upper bool) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if day, err := time.ParseInLocation(dayLayout, raw, time.UTC); err == nil {
		if upper {
			return day.Add(24*time.Hour - time.Millisecond), nil
		}
		return day, nil
	}
	ts, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q is neither %s nor RFC 3339", usecase.ErrInvalidInput, raw, dayLayout)
	}
	return ts.UTC(), nil
}

// resolveWindow fills a missing range from the mode's default window.
// Manual runs must name both ends.
func resolveWindow(cfg config.Config, mode usecase.SyncMode, rawFrom, rawTo string, now time.Time) (time.Time, time.Time, error) {
	if strings.TrimSpace(rawFrom) == "" || strings.TrimSpace(rawTo) == "" {
		switch mode {
		case usecase.SyncModeFixtures:
			from, to := usecase.FixtureWindow(now, cfg.LookbackDays, cfg.FixtureDaysAhead)
			return from, to, nil
		case usecase.SyncModeLive:
			from, to := usecase.LiveWindow(now, cfg.LiveDaysAhead)
			return from, to, nil
		default:
			return time.Time{}, time.Time{}, fmt.Errorf("%w: --from and --to are required for %s runs", usecase.ErrInvalidInput, mode)
		}
	}

	from, err := parseBound(rawFrom, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseBound(rawTo, true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}
