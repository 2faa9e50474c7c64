package match

import "time"

const (
	ColumnTournamentID     = "tournament_id"
	ColumnHomeTeam         = "home_team"
	ColumnAwayTeam         = "away_team"
	ColumnKickOffTime      = "kickoff_time"
	ColumnStatus           = "status"
	ColumnLegacyStatus     = "legacy_status"
	ColumnHomeScore        = "home_score"
	ColumnAwayScore        = "away_score"
	ColumnScore            = "score"
	ColumnStage            = "stage"
	ColumnGroup            = "group_name"
	ColumnMatchday         = "matchday"
	ColumnStageKey         = "stage_key"
	ColumnExternalProvider = "external_provider"
	ColumnExternalMatchID  = "external_match_id"
	ColumnLastSyncedAt     = "last_synced_at"
	ColumnSyncStatus       = "sync_status"
	ColumnSyncError        = "sync_error"
	ColumnIsManuallyEdited = "is_manually_edited"
)

// Column is one serialized patch entry. Value is nil for NULL; otherwise
// a string, int, bool, time.Time or Score.
type Column struct {
	Name  string
	Value any
}

// Patch is a partial write against a Match. Status and its legacy mirror
// are only settable together through SetStatus.
type Patch struct {
	TournamentID     Field[string]
	HomeTeam         Field[string]
	AwayTeam         Field[string]
	KickOffTime      Field[time.Time]
	status           Field[Status]
	HomeScore        Field[int]
	AwayScore        Field[int]
	Score            Field[Score]
	Stage            Field[Stage]
	Group            Field[string]
	Matchday         Field[int]
	StageKey         Field[string]
	ExternalProvider Field[string]
	ExternalMatchID  Field[string]
	LastSyncedAt     Field[time.Time]
	SyncStatus       Field[string]
	SyncError        Field[string]
	IsManuallyEdited Field[bool]
}

func (p *Patch) SetStatus(s Status) {
	p.status = Some(s.Normalize())
}

func (p Patch) Status() (Status, bool) {
	return p.status.Get()
}

// OmitScores drops every score column from the write.
func (p *Patch) OmitScores() {
	p.HomeScore = Field[int]{}
	p.AwayScore = Field[int]{}
	p.Score = Field[Score]{}
}

// Columns is the single serialization of a patch; only set fields appear,
// in a stable order.
func (p Patch) Columns() []Column {
	out := make([]Column, 0, 19)
	add := func(name string, set bool, value any) {
		if set {
			out = append(out, Column{Name: name, Value: value})
		}
	}
	add(ColumnTournamentID, p.TournamentID.IsSet(), p.TournamentID.any())
	add(ColumnHomeTeam, p.HomeTeam.IsSet(), p.HomeTeam.any())
	add(ColumnAwayTeam, p.AwayTeam.IsSet(), p.AwayTeam.any())
	add(ColumnKickOffTime, p.KickOffTime.IsSet(), p.KickOffTime.any())
	if s, ok := p.status.Get(); ok {
		out = append(out,
			Column{Name: ColumnStatus, Value: string(s)},
			Column{Name: ColumnLegacyStatus, Value: string(s.Legacy())},
		)
	}
	add(ColumnHomeScore, p.HomeScore.IsSet(), p.HomeScore.any())
	add(ColumnAwayScore, p.AwayScore.IsSet(), p.AwayScore.any())
	add(ColumnScore, p.Score.IsSet(), p.Score.any())
	if p.Stage.IsSet() {
		var v any
		if s, ok := p.Stage.Get(); ok {
			v = string(s)
		}
		out = append(out, Column{Name: ColumnStage, Value: v})
	}
	add(ColumnGroup, p.Group.IsSet(), p.Group.any())
	add(ColumnMatchday, p.Matchday.IsSet(), p.Matchday.any())
	add(ColumnStageKey, p.StageKey.IsSet(), p.StageKey.any())
	add(ColumnExternalProvider, p.ExternalProvider.IsSet(), p.ExternalProvider.any())
	add(ColumnExternalMatchID, p.ExternalMatchID.IsSet(), p.ExternalMatchID.any())
	add(ColumnLastSyncedAt, p.LastSyncedAt.IsSet(), p.LastSyncedAt.any())
	add(ColumnSyncStatus, p.SyncStatus.IsSet(), p.SyncStatus.any())
	add(ColumnSyncError, p.SyncError.IsSet(), p.SyncError.any())
	add(ColumnIsManuallyEdited, p.IsManuallyEdited.IsSet(), p.IsManuallyEdited.any())
	return out
}

// Apply merges the set fields of p into m.
func (p Patch) Apply(m Match) Match {
	if p.TournamentID.IsSet() {
		m.TournamentID = p.TournamentID.OrZero()
	}
	if p.HomeTeam.IsSet() {
		m.HomeTeam = p.HomeTeam.OrZero()
	}
	if p.AwayTeam.IsSet() {
		m.AwayTeam = p.AwayTeam.OrZero()
	}
	if p.KickOffTime.IsSet() {
		m.KickOffTime = p.KickOffTime.Ptr()
	}
	if s, ok := p.status.Get(); ok {
		m.Status = s
		m.LegacyStatus = s.Legacy()
	}
	if p.HomeScore.IsSet() {
		m.HomeScore = p.HomeScore.Ptr()
	}
	if p.AwayScore.IsSet() {
		m.AwayScore = p.AwayScore.Ptr()
	}
	if p.Score.IsSet() {
		m.Score = p.Score.Ptr()
	}
	if p.Stage.IsSet() {
		m.Stage = p.Stage.OrZero()
	}
	if p.Group.IsSet() {
		m.Group = p.Group.OrZero()
	}
	if p.Matchday.IsSet() {
		m.Matchday = p.Matchday.OrZero()
	}
	if p.StageKey.IsSet() {
		m.StageKey = p.StageKey.OrZero()
	}
	if p.ExternalProvider.IsSet() {
		m.ExternalProvider = p.ExternalProvider.OrZero()
	}
	if p.ExternalMatchID.IsSet() {
		m.ExternalMatchID = p.ExternalMatchID.OrZero()
	}
	if p.LastSyncedAt.IsSet() {
		m.LastSyncedAt = p.LastSyncedAt.Ptr()
	}
	if p.SyncStatus.IsSet() {
		m.SyncStatus = p.SyncStatus.OrZero()
	}
	if p.SyncError.IsSet() {
		m.SyncError = p.SyncError.OrZero()
	}
	if p.IsManuallyEdited.IsSet() {
		m.IsManuallyEdited = p.IsManuallyEdited.OrZero()
	}
	return m
}

// Changes lists the comparable columns whose set value differs from m.
// Bookkeeping columns never count as a change.
func (p Patch) Changes(m Match) []string {
	var changed []string
	diff := func(name string, set, equal bool) {
		if set && !equal {
			changed = append(changed, name)
		}
	}

	diff(ColumnHomeTeam, p.HomeTeam.IsSet(), p.HomeTeam.OrZero() == m.HomeTeam)
	diff(ColumnAwayTeam, p.AwayTeam.IsSet(), p.AwayTeam.OrZero() == m.AwayTeam)
	diff(ColumnKickOffTime, p.KickOffTime.IsSet(), FormatKickoff(p.KickOffTime.Ptr()) == FormatKickoff(m.KickOffTime))
	if s, ok := p.status.Get(); ok {
		diff(ColumnStatus, true, s == m.Status)
		diff(ColumnLegacyStatus, true, s.Legacy() == m.LegacyStatus)
	}
	diff(ColumnHomeScore, p.HomeScore.IsSet(), equalIntPtr(p.HomeScore.Ptr(), m.HomeScore))
	diff(ColumnAwayScore, p.AwayScore.IsSet(), equalIntPtr(p.AwayScore.Ptr(), m.AwayScore))
	diff(ColumnScore, p.Score.IsSet(), equalScorePtr(p.Score.Ptr(), m.Score))
	diff(ColumnStage, p.Stage.IsSet(), p.Stage.OrZero() == m.Stage)
	diff(ColumnGroup, p.Group.IsSet(), p.Group.OrZero() == m.Group)
	diff(ColumnMatchday, p.Matchday.IsSet(), p.Matchday.OrZero() == m.Matchday)
	diff(ColumnStageKey, p.StageKey.IsSet(), p.StageKey.OrZero() == m.StageKey)
	diff(ColumnExternalProvider, p.ExternalProvider.IsSet(), p.ExternalProvider.OrZero() == m.ExternalProvider)
	diff(ColumnExternalMatchID, p.ExternalMatchID.IsSet(), p.ExternalMatchID.OrZero() == m.ExternalMatchID)
	return changed
}

func equalScorePtr(a, b *Score) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}
