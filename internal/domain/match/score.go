package match

import (
	"math"
	"strconv"
	"strings"
)

// ScorePair is one home/away breakdown. Nil sides are unknown, not zero.
type ScorePair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

func (p ScorePair) Equal(o ScorePair) bool {
	return equalIntPtr(p.Home, o.Home) && equalIntPtr(p.Away, o.Away)
}

func (p ScorePair) IsZero() bool {
	return p.Home == nil && p.Away == nil
}

// Score is the persisted score object. Home/Away are the headline values.
type Score struct {
	Home     *int      `json:"home"`
	Away     *int      `json:"away"`
	FullTime ScorePair `json:"fullTime"`
	HalfTime ScorePair `json:"halfTime"`
}

func (s Score) Equal(o Score) bool {
	return equalIntPtr(s.Home, o.Home) &&
		equalIntPtr(s.Away, o.Away) &&
		s.FullTime.Equal(o.FullTime) &&
		s.HalfTime.Equal(o.HalfTime)
}

// ScoreBreakdown is every period an upstream may report.
type ScoreBreakdown struct {
	FullTime    ScorePair
	RegularTime ScorePair
	ExtraTime   ScorePair
	Penalties   ScorePair
	HalfTime    ScorePair
}

// PickScore takes the first known value per side in the order full time,
// regular time, extra time, penalties, half time.
func PickScore(b ScoreBreakdown) Score {
	order := []ScorePair{b.FullTime, b.RegularTime, b.ExtraTime, b.Penalties, b.HalfTime}
	var home, away *int
	for _, p := range order {
		if home == nil && p.Home != nil {
			home = p.Home
		}
		if away == nil && p.Away != nil {
			away = p.Away
		}
	}
	return Score{
		Home:     cloneInt(home),
		Away:     cloneInt(away),
		FullTime: ScorePair{Home: cloneInt(b.FullTime.Home), Away: cloneInt(b.FullTime.Away)},
		HalfTime: ScorePair{Home: cloneInt(b.HalfTime.Home), Away: cloneInt(b.HalfTime.Away)},
	}
}

// ParseScoreValue accepts ints, floats and numeric strings. Anything else,
// including "", is nil.
func ParseScoreValue(v any) *int {
	switch x := v.(type) {
	case nil:
		return nil
	case int:
		return &x
	case int64:
		n := int(x)
		return &n
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) || x != math.Trunc(x) {
			return nil
		}
		n := int(x)
		return &n
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil
		}
		return &n
	case *int:
		return cloneInt(x)
	default:
		return nil
	}
}

func Int(v int) *int {
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func equalIntPtr(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
