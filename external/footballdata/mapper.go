package footballdata

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/fixture-sync/internal/domain/match"
)

var stageByCode = map[string]match.Stage{
	"GROUP_STAGE":    match.StageGroup,
	"LAST_32":        match.StageRound32,
	"ROUND_OF_32":    match.StageRound32,
	"LAST_16":        match.StageRound16,
	"ROUND_OF_16":    match.StageRound16,
	"QUARTER_FINALS": match.StageQuarter,
	"SEMI_FINALS":    match.StageSemi,
	"THIRD_PLACE":    match.StageThirdPlace,
	"FINAL":          match.StageFinal,
}

func MapMatch(raw json.RawMessage) match.Draft {
	var item Match
	if err := sonic.Unmarshal(raw, &item); err != nil {
		return match.Draft{Provider: ProviderName}
	}
	return mapMatch(item)
}

func mapMatch(item Match) match.Draft {
	draft := match.Draft{
		Provider:    ProviderName,
		HomeTeam:    strings.TrimSpace(item.HomeTeam.Name),
		AwayTeam:    strings.TrimSpace(item.AwayTeam.Name),
		KickOffTime: match.ParseKickoff(item.UTCDate),
		Status:      mapStatus(item.Status),
		Stage:       stageByCode[strings.ToUpper(strings.TrimSpace(item.Stage))],
	}
	if item.ID > 0 {
		draft.ExternalMatchID = strconv.FormatInt(item.ID, 10)
	}

	if draft.Stage == match.StageGroup {
		draft.Group = normalizeGroup(item.Group)
		if item.Matchday != nil {
			draft.Matchday = match.ParseMatchday(*item.Matchday, "")
		}
	}

	score := match.PickScore(match.ScoreBreakdown{
		FullTime:    pair(item.Score.FullTime),
		RegularTime: pair(item.Score.RegularTime),
		ExtraTime:   pair(item.Score.ExtraTime),
		Penalties:   pair(item.Score.Penalties),
		HalfTime:    pair(item.Score.HalfTime),
	})
	if score.Home != nil || score.Away != nil {
		draft.Score = &score
	}
	return draft
}

// mapStatus passes the provider's own lifecycle codes through.
func mapStatus(raw string) match.Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "FINISHED", "AWARDED":
		return match.StatusFinished
	case "IN_PLAY", "LIVE":
		return match.StatusInPlay
	case "PAUSED":
		return match.StatusPaused
	default:
		return match.StatusScheduled
	}
}

// normalizeGroup turns "GROUP_A" or "Group A" into "A".
func normalizeGroup(raw string) string {
	value := strings.TrimSpace(raw)
	if value == "" {
		return ""
	}
	if rest, ok := strings.CutPrefix(strings.ToUpper(value), "GROUP_"); ok {
		return match.ParseGroup(rest)
	}
	return match.ParseGroup(value)
}

func pair(g Goals) match.ScorePair {
	return match.ScorePair{Home: g.Home, Away: g.Away}
}
