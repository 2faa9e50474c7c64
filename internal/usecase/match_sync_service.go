package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/riskibarqy/fixture-sync/internal/domain/match"
	"github.com/riskibarqy/fixture-sync/internal/domain/syncstate"
	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
	"github.com/riskibarqy/fixture-sync/internal/platform/upstream"
)

const (
	defaultLockTTL   = 10 * time.Minute
	maxBatchSize     = 450
	liveWindowBefore = 6 * time.Hour
	liveWindowAfter  = 36 * time.Hour
	maxStatusError   = 500
	dateLayout       = "2006-01-02"
)

// FixtureProvider is one upstream fixture source. Map must never fail.
type FixtureProvider interface {
	Name() string
	Validate() error
	FetchMatches(ctx context.Context, from, to time.Time) upstream.Result
	Map(raw json.RawMessage) match.Draft
}

type SyncMode string

const (
	SyncModeFixtures SyncMode = "fixtures"
	SyncModeLive     SyncMode = "live"
	SyncModeManual   SyncMode = "manual"
)

type SyncInput struct {
	Mode                SyncMode  `validate:"required,oneof=fixtures live manual"`
	DateFrom            time.Time `validate:"required"`
	DateTo              time.Time `validate:"required,gtefield=DateFrom"`
	AllowManualOverride bool
}

const SkipReasonLocked = "lock_held"

type SyncResult struct {
	Mode             SyncMode  `json:"mode"`
	Provider         string    `json:"provider"`
	TournamentID     string    `json:"tournament_id"`
	Created          int       `json:"created"`
	Updated          int       `json:"updated"`
	SkippedManual    int       `json:"skipped_manual"`
	SkippedUnchanged int       `json:"skipped_unchanged"`
	Rejected         int       `json:"rejected"`
	Total            int       `json:"total"`
	Batches          int       `json:"batches"`
	Skipped          bool      `json:"skipped"`
	SkipReason       string    `json:"skip_reason,omitempty"`
	StartedAt        time.Time `json:"started_at"`
	FinishedAt       time.Time `json:"finished_at"`
}

func (r *SyncResult) count(kind match.WriteKind) {
	r.Total++
	switch kind {
	case match.WriteCreate:
		r.Created++
	case match.WriteUpdate:
		r.Updated++
	case match.WriteSkipManual:
		r.SkippedManual++
	case match.WriteSkipUnchanged:
		r.SkippedUnchanged++
	case match.WriteReject:
		r.Rejected++
	}
}

func (r SyncResult) Counters() syncstate.Counters {
	return syncstate.Counters{
		Created:          r.Created,
		Updated:          r.Updated,
		SkippedManual:    r.SkippedManual,
		SkippedUnchanged: r.SkippedUnchanged,
		Rejected:         r.Rejected,
		Total:            r.Total,
	}
}

type MatchSyncConfig struct {
	TournamentID string
	// Holder identifies this process in the lock record.
	Holder    string
	LockTTL   time.Duration
	BatchSize int
}

// MatchSyncService reconciles upstream fixtures into the canonical match
// store for one tournament.
type MatchSyncService struct {
	provider FixtureProvider
	matches  match.Repository
	locks    syncstate.LockRepository
	statuses syncstate.StatusRepository
	cfg      MatchSyncConfig
	validate *validator.Validate
	logger   *logging.Logger
	now      func() time.Time
}

func NewMatchSyncService(
	provider FixtureProvider,
	matches match.Repository,
	locks syncstate.LockRepository,
	statuses syncstate.StatusRepository,
	cfg MatchSyncConfig,
	logger *logging.Logger,
) *MatchSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = defaultLockTTL
	}
	if cfg.BatchSize <= 0 || cfg.BatchSize > maxBatchSize {
		cfg.BatchSize = maxBatchSize
	}
	if strings.TrimSpace(cfg.Holder) == "" {
		cfg.Holder = "fixture-sync"
	}

	return &MatchSyncService{
		provider: provider,
		matches:  matches,
		locks:    locks,
		statuses: statuses,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger.Named("match-sync"),
		now:      time.Now,
	}
}

type syncPhase string

const (
	phaseIdle        syncPhase = "idle"
	phaseLocked      syncPhase = "locked"
	phaseFetching    syncPhase = "fetching"
	phaseReconciling syncPhase = "reconciling"
	phaseCommitting  syncPhase = "committing"
	phaseCompleted   syncPhase = "completed"
	phaseFailed      syncPhase = "failed"
)

type syncRun struct {
	phase  syncPhase
	span   trace.Span
	logger *logging.Logger
}

func (r *syncRun) enter(ctx context.Context, next syncPhase) {
	r.logger.DebugContext(ctx, "sync phase transition", "from", r.phase, "to", next)
	r.span.AddEvent("sync."+string(next), trace.WithAttributes(attribute.String("sync.from", string(r.phase))))
	r.phase = next
}

// Synchronize runs one reconciliation for the configured tournament. Lock
// contention is not an error: the result comes back with Skipped set.
func (s *MatchSyncService) Synchronize(ctx context.Context, input SyncInput) (SyncResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.Synchronize")
	defer span.End()

	started := s.now().UTC()
	result := SyncResult{
		Mode:         input.Mode,
		TournamentID: s.cfg.TournamentID,
		StartedAt:    started,
	}
	if s.provider != nil {
		result.Provider = s.provider.Name()
	}

	if err := s.validate.StructCtx(ctx, input); err != nil {
		return result, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.validateConfig(); err != nil {
		return result, err
	}

	span.SetAttributes(
		attribute.String("sync.tournament_id", s.cfg.TournamentID),
		attribute.String("sync.provider", result.Provider),
		attribute.String("sync.mode", string(input.Mode)),
	)
	run := &syncRun{
		phase: phaseIdle,
		span:  span,
		logger: s.logger.With(
			"tournament_id", s.cfg.TournamentID,
			"provider", result.Provider,
			"mode", input.Mode,
		),
	}

	lockKey := syncstate.LockKey(s.cfg.TournamentID, result.Provider)
	acquired, err := s.locks.Acquire(ctx, lockKey, s.cfg.Holder, s.cfg.LockTTL, started)
	if err != nil {
		return result, fmt.Errorf("%w: acquire sync lock %s: %w", ErrDependencyUnavailable, lockKey, err)
	}
	if !acquired {
		run.logger.InfoContext(ctx, "sync skipped, a prior run is still active", "lock_key", lockKey)
		result.Skipped = true
		result.SkipReason = SkipReasonLocked
		result.FinishedAt = s.now().UTC()
		return result, nil
	}
	run.enter(ctx, phaseLocked)
	defer s.releaseLock(ctx, run, lockKey)

	out, err := s.reconcile(ctx, run, input, result)
	if err != nil {
		run.enter(ctx, phaseFailed)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return out, err
	}
	run.enter(ctx, phaseCompleted)
	return out, nil
}

func (s *MatchSyncService) validateConfig() error {
	if s.provider == nil {
		return fmt.Errorf("%w: provider is not configured", ErrInvalidConfig)
	}
	if strings.TrimSpace(s.cfg.TournamentID) == "" {
		return fmt.Errorf("%w: tournament id is required", ErrInvalidConfig)
	}
	if err := s.provider.Validate(); err != nil {
		return fmt.Errorf("%w: provider %s: %v", ErrInvalidConfig, s.provider.Name(), err)
	}
	return nil
}

func (s *MatchSyncService) reconcile(ctx context.Context, run *syncRun, input SyncInput, result SyncResult) (SyncResult, error) {
	run.enter(ctx, phaseFetching)
	fetched := s.provider.FetchMatches(ctx, input.DateFrom, input.DateTo)
	switch fetched.Outcome {
	case upstream.OutcomeOK:
	case upstream.OutcomeRateLimited:
		s.recordFailure(ctx, run, input, syncstate.RunStatusRateLimit, fetched.Err)
		result.FinishedAt = s.now().UTC()
		return result, fmt.Errorf("%w: %w", ErrRateLimited, fetched.Err)
	case upstream.OutcomeFailed:
		s.recordFailure(ctx, run, input, syncstate.RunStatusError, fetched.Err)
		result.FinishedAt = s.now().UTC()
		return result, fmt.Errorf("%w: %w", ErrUpstreamFailed, fetched.Err)
	default:
		err := fmt.Errorf("%w: unknown fetch outcome %s", ErrUpstreamFailed, fetched.Outcome)
		s.recordFailure(ctx, run, input, syncstate.RunStatusError, err)
		result.FinishedAt = s.now().UTC()
		return result, err
	}

	run.enter(ctx, phaseReconciling)
	existing, err := s.matches.ListByTournament(ctx, s.cfg.TournamentID)
	if err != nil {
		err = fmt.Errorf("%w: list matches tournament=%s: %w", ErrDependencyUnavailable, s.cfg.TournamentID, err)
		s.recordFailure(ctx, run, input, syncstate.RunStatusError, err)
		result.FinishedAt = s.now().UTC()
		return result, err
	}

	index := match.NewIndex(existing)
	opts := match.PlanOptions{
		TournamentID:        s.cfg.TournamentID,
		AllowManualOverride: input.AllowManualOverride,
		Now:                 result.StartedAt,
	}
	writes := make([]match.Write, 0, len(fetched.Records))
	for _, raw := range fetched.Records {
		draft := s.provider.Map(raw)

		var current *match.Match
		if m, ok := index.Resolve(draft); ok {
			current = &m
		}
		write := match.Plan(draft, current, opts)
		result.count(write.Kind)

		switch write.Kind {
		case match.WriteReject:
			run.logger.DebugContext(ctx, "rejected upstream record", "reason", write.Reason, "home_team", draft.HomeTeam, "away_team", draft.AwayTeam)
			continue
		case match.WriteCreate:
			index.Put(write.Patch.Apply(match.Match{ID: write.MatchID}))
		case match.WriteUpdate, match.WriteSkipManual:
			index.Put(write.Patch.Apply(*current))
		case match.WriteSkipUnchanged:
		}
		if write.Kind.Persists() {
			writes = append(writes, write)
		}
	}

	run.enter(ctx, phaseCommitting)
	for start := 0; start < len(writes); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(writes))
		if err := s.matches.CommitBatch(ctx, s.cfg.TournamentID, writes[start:end]); err != nil {
			err = fmt.Errorf("%w: commit batch %d (%d writes): %w", ErrDependencyUnavailable, result.Batches+1, end-start, err)
			s.recordFailure(ctx, run, input, syncstate.RunStatusError, err)
			result.FinishedAt = s.now().UTC()
			return result, err
		}
		result.Batches++
	}

	result.FinishedAt = s.now().UTC()
	s.recordSuccess(ctx, run, input, result)
	run.logger.InfoContext(ctx, "sync completed",
		"created", result.Created,
		"updated", result.Updated,
		"skipped_manual", result.SkippedManual,
		"skipped_unchanged", result.SkippedUnchanged,
		"rejected", result.Rejected,
		"total", result.Total,
		"batches", result.Batches,
		"duration", result.FinishedAt.Sub(result.StartedAt),
	)
	return result, nil
}

func (s *MatchSyncService) releaseLock(ctx context.Context, run *syncRun, lockKey string) {
	if err := s.locks.Release(context.WithoutCancel(ctx), lockKey, s.cfg.Holder); err != nil {
		run.logger.ErrorContext(ctx, "release sync lock failed", "lock_key", lockKey, "error", err)
		return
	}
	run.logger.DebugContext(ctx, "sync lock released", "lock_key", lockKey, "phase", run.phase)
}

func (s *MatchSyncService) recordSuccess(ctx context.Context, run *syncRun, input SyncInput, result SyncResult) {
	patch := s.statusPatch(input, syncstate.RunStatusOK, result.FinishedAt)
	cleared := ""
	counters := result.Counters()
	patch.LastSuccessAt = &result.FinishedAt
	patch.LastError = &cleared
	patch.Counters = &counters
	s.mergeStatus(ctx, run, patch)
}

func (s *MatchSyncService) recordFailure(ctx context.Context, run *syncRun, input SyncInput, status syncstate.RunStatus, cause error) {
	run.logger.WarnContext(ctx, "sync failed", "status", status, "error", cause)
	patch := s.statusPatch(input, status, s.now().UTC())
	message := "unknown error"
	if cause != nil {
		message = cause.Error()
	}
	if len(message) > maxStatusError {
		message = message[:maxStatusError]
	}
	patch.LastError = &message
	s.mergeStatus(ctx, run, patch)
}

func (s *MatchSyncService) statusPatch(input SyncInput, status syncstate.RunStatus, at time.Time) syncstate.StatusPatch {
	provider := s.provider.Name()
	mode := string(input.Mode)
	from := input.DateFrom.UTC().Format(dateLayout)
	to := input.DateTo.UTC().Format(dateLayout)
	return syncstate.StatusPatch{
		LastRunAt: &at,
		Status:    &status,
		Provider:  &provider,
		Mode:      &mode,
		DateFrom:  &from,
		DateTo:    &to,
	}
}

// mergeStatus is best-effort: a failing status write never fails the run.
func (s *MatchSyncService) mergeStatus(ctx context.Context, run *syncRun, patch syncstate.StatusPatch) {
	if err := s.statuses.Merge(context.WithoutCancel(ctx), s.cfg.TournamentID, patch); err != nil {
		run.logger.ErrorContext(ctx, "write sync status failed", "error", err)
	}
}

// Status returns the stored status record for the tournament.
func (s *MatchSyncService) Status(ctx context.Context) (syncstate.Status, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.Status")
	defer span.End()

	status, ok, err := s.statuses.Get(ctx, s.cfg.TournamentID)
	if err != nil {
		return syncstate.Status{}, false, fmt.Errorf("%w: get sync status tournament=%s: %w", ErrDependencyUnavailable, s.cfg.TournamentID, err)
	}
	return status, ok, nil
}

// ShouldSyncLive reports whether any unfinished match kicks off between
// six hours ago and 36 hours from now.
func (s *MatchSyncService) ShouldSyncLive(ctx context.Context, now time.Time) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.ShouldSyncLive")
	defer span.End()

	now = now.UTC()
	kickoffs, err := s.matches.ListKickoffsBetween(ctx, s.cfg.TournamentID, now.Add(-liveWindowBefore), now.Add(liveWindowAfter))
	if err != nil {
		return false, fmt.Errorf("%w: list kickoffs tournament=%s: %w", ErrDependencyUnavailable, s.cfg.TournamentID, err)
	}
	return len(kickoffs) > 0, nil
}

// FixtureWindow is the daily sync range: lookbackDays back to daysAhead
// forward.
func FixtureWindow(now time.Time, lookbackDays, daysAhead int) (time.Time, time.Time) {
	now = now.UTC()
	return now.AddDate(0, 0, -lookbackDays), now.AddDate(0, 0, daysAhead)
}

// LiveWindow is the live sync range: one day back to daysAhead forward.
func LiveWindow(now time.Time, daysAhead int) (time.Time, time.Time) {
	now = now.UTC()
	return now.AddDate(0, 0, -1), now.AddDate(0, 0, daysAhead)
}
