package thesportsdb

import (
	"encoding/json"

	"github.com/bytedance/sonic"

	"github.com/riskibarqy/fixture-sync/internal/domain/match"
)

// MapEvent normalizes one raw event. It never fails; undecodable input
// gives a draft without an external id.
func MapEvent(raw json.RawMessage) match.Draft {
	var event Event
	if err := sonic.Unmarshal(raw, &event); err != nil {
		return match.Draft{Provider: ProviderName}
	}
	return mapEvent(event)
}

func mapEvent(event Event) match.Draft {
	roundText := event.StrRound.String()
	if roundText == "" {
		roundText = event.StrEvent.String()
	}
	class := match.Classify(match.ParseRound(event.IntRound.String()), roundText, event.StrGroup.String())

	draft := match.Draft{
		Provider:        ProviderName,
		ExternalMatchID: event.IDEvent.String(),
		HomeTeam:        event.StrHomeTeam.String(),
		AwayTeam:        event.StrAwayTeam.String(),
		KickOffTime: match.NormalizeKickoff(
			event.StrTimestamp.String(),
			event.DateEvent.String(),
			event.StrTime.String(),
		),
		Status:   match.TranslateStatus(event.StrStatus.String()),
		Stage:    class.Stage,
		Group:    class.Group,
		Matchday: class.Matchday,
	}

	if draft.Status.IsFinished() {
		home := match.ParseScoreValue(event.IntHomeScore.String())
		away := match.ParseScoreValue(event.IntAwayScore.String())
		score := match.PickScore(match.ScoreBreakdown{
			FullTime: match.ScorePair{Home: home, Away: away},
		})
		draft.Score = &score
	}
	return draft
}
