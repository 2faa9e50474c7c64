package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/fixture-sync/external/thesportsdb"
	"github.com/riskibarqy/fixture-sync/internal/domain/match"
	"github.com/riskibarqy/fixture-sync/internal/domain/syncstate"
	"github.com/riskibarqy/fixture-sync/internal/infrastructure/repository/memory"
	matchmock "github.com/riskibarqy/fixture-sync/internal/mocks/domain/match"
	usecasemock "github.com/riskibarqy/fixture-sync/internal/mocks/usecase"
	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
	"github.com/riskibarqy/fixture-sync/internal/platform/upstream"
)

const testTournament = "FIFA2026"

var syncNow = time.Date(2026, 6, 11, 4, 0, 0, 0, time.UTC)

type fakeProvider struct {
	records []json.RawMessage
	result  *upstream.Result
	fetches int
}

func (p *fakeProvider) Name() string    { return thesportsdb.ProviderName }
func (p *fakeProvider) Validate() error { return nil }

func (p *fakeProvider) FetchMatches(_ context.Context, _, _ time.Time) upstream.Result {
	p.fetches++
	if p.result != nil {
		return *p.result
	}
	return upstream.OK(p.records)
}

func (p *fakeProvider) Map(raw json.RawMessage) match.Draft {
	return thesportsdb.MapEvent(raw)
}

func event(t *testing.T, fields map[string]any) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal event: %v", err)
	}
	return raw
}

func argentinaBrazil(t *testing.T, status string) json.RawMessage {
	fields := map[string]any{
		"idEvent":     "123",
		"strHomeTeam": "Argentina",
		"strAwayTeam": "Brazil",
		"dateEvent":   "2026-06-10",
		"strTime":     "18:00:00",
		"strStatus":   status,
		"strRound":    "Group A - Matchday 1",
		"strGroup":    "Group A",
		"intRound":    "1",
	}
	if status == "Match Finished" {
		fields["intHomeScore"] = "2"
		fields["intAwayScore"] = "1"
	}
	return event(t, fields)
}

func usaCanada(t *testing.T) json.RawMessage {
	return event(t, map[string]any{
		"idEvent":     "456",
		"strHomeTeam": "USA",
		"strAwayTeam": "Canada",
		"dateEvent":   "2026-06-12",
		"strTime":     "20:00:00",
		"strStatus":   "Not Started",
		"strRound":    "Group B - Matchday 2",
		"strGroup":    "Group B",
		"intRound":    "2",
	})
}

type syncFixture struct {
	provider *fakeProvider
	matches  *memory.MatchRepository
	locks    *memory.SyncLockRepository
	statuses *memory.SyncStatusRepository
	service  *MatchSyncService
}

func newSyncFixture(t *testing.T, seed []match.Match, records ...json.RawMessage) *syncFixture {
	t.Helper()
	f := &syncFixture{
		provider: &fakeProvider{records: records},
		matches:  memory.NewMatchRepository(seed),
		locks:    memory.NewSyncLockRepository(),
		statuses: memory.NewSyncStatusRepository(),
	}
	f.service = NewMatchSyncService(f.provider, f.matches, f.locks, f.statuses, MatchSyncConfig{
		TournamentID: testTournament,
		Holder:       "test-host/1",
	}, logging.NewNop())
	f.service.now = func() time.Time { return syncNow }
	return f
}

func fixturesInput() SyncInput {
	from, to := FixtureWindow(syncNow, 2, 200)
	return SyncInput{Mode: SyncModeFixtures, DateFrom: from, DateTo: to}
}

func finishedArgentinaBrazil(manual bool, kickoff time.Time) match.Match {
	return match.Match{
		ID:               "thesportsdb_123",
		TournamentID:     testTournament,
		HomeTeam:         "Argentina",
		AwayTeam:         "Brazil",
		KickOffTime:      &kickoff,
		Status:           match.StatusFinished,
		LegacyStatus:     match.LegacyFinished,
		HomeScore:        match.Int(2),
		AwayScore:        match.Int(1),
		Score:            &match.Score{Home: match.Int(2), Away: match.Int(1), FullTime: match.ScorePair{Home: match.Int(2), Away: match.Int(1)}},
		Stage:            match.StageGroup,
		Group:            "A",
		Matchday:         1,
		StageKey:         "GROUP-A-MD1",
		ExternalProvider: thesportsdb.ProviderName,
		ExternalMatchID:  "123",
		IsManuallyEdited: manual,
	}
}

func TestSynchronize_CreatesThenIsIdempotent(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil, argentinaBrazil(t, "Match Finished"), usaCanada(t))
	ctx := context.Background()

	first, err := f.service.Synchronize(ctx, fixturesInput())
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if first.Created != 2 || first.Total != 2 || first.Batches != 1 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	created, ok := f.matches.Get("thesportsdb_123")
	if !ok {
		t.Fatalf("expected thesportsdb_123 to be created")
	}
	if created.Status != match.StatusFinished || created.LegacyStatus != match.LegacyFinished {
		t.Fatalf("unexpected status pair: %s/%s", created.Status, created.LegacyStatus)
	}
	if created.HomeScore == nil || *created.HomeScore != 2 || created.StageKey != "GROUP-A-MD1" {
		t.Fatalf("unexpected created record: %+v", created)
	}
	upcoming, _ := f.matches.Get("thesportsdb_456")
	if upcoming.HomeScore != nil || upcoming.Score != nil || upcoming.LegacyStatus != match.LegacyUpcoming {
		t.Fatalf("scheduled match must not carry scores: %+v", upcoming)
	}
	if upcoming.SyncStatus != match.SyncStatusOK || upcoming.IsManuallyEdited {
		t.Fatalf("unexpected bookkeeping on create: %+v", upcoming)
	}

	applied := f.matches.Applied()
	second, err := f.service.Synchronize(ctx, fixturesInput())
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	if second.SkippedUnchanged != 2 || second.Created != 0 || second.Updated != 0 {
		t.Fatalf("second run should be a no-op: %+v", second)
	}
	if f.matches.Applied() != applied {
		t.Fatalf("second run wrote %d records", f.matches.Applied()-applied)
	}

	status, ok, _ := f.statuses.Get(ctx, testTournament)
	if !ok || status.Status != syncstate.RunStatusOK || status.Counters.SkippedUnchanged != 2 {
		t.Fatalf("unexpected status record: %+v", status)
	}
	if status.Provider != thesportsdb.ProviderName || status.Mode != string(SyncModeFixtures) || status.LastSuccessAt == nil {
		t.Fatalf("unexpected status metadata: %+v", status)
	}
	if status.DateFrom != "2026-06-09" {
		t.Fatalf("unexpected date_from: %q", status.DateFrom)
	}
}

func TestSynchronize_FinishedNeverRegresses(t *testing.T) {
	t.Parallel()

	storedKickoff := time.Date(2026, 6, 10, 17, 0, 0, 0, time.UTC)
	f := newSyncFixture(t, []match.Match{finishedArgentinaBrazil(false, storedKickoff)}, argentinaBrazil(t, "Not Started"))

	result, err := f.service.Synchronize(context.Background(), fixturesInput())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("expected kickoff update, got=%+v", result)
	}

	got, _ := f.matches.Get("thesportsdb_123")
	if got.Status != match.StatusFinished || got.LegacyStatus != match.LegacyFinished {
		t.Fatalf("status regressed to %s/%s", got.Status, got.LegacyStatus)
	}
	if got.HomeScore == nil || *got.HomeScore != 2 || got.Score == nil {
		t.Fatalf("scores must survive: %+v", got)
	}
	if match.FormatKickoff(got.KickOffTime) != "2026-06-10T18:00:00.000Z" {
		t.Fatalf("kickoff should follow upstream, got=%s", match.FormatKickoff(got.KickOffTime))
	}
}

func TestSynchronize_ManualEditProtected(t *testing.T) {
	t.Parallel()

	storedKickoff := time.Date(2026, 6, 10, 17, 0, 0, 0, time.UTC)
	original := finishedArgentinaBrazil(true, storedKickoff)
	f := newSyncFixture(t, []match.Match{original}, argentinaBrazil(t, "Not Started"))

	result, err := f.service.Synchronize(context.Background(), fixturesInput())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.SkippedManual != 1 || result.Updated != 0 {
		t.Fatalf("expected manual skip, got=%+v", result)
	}

	got, _ := f.matches.Get("thesportsdb_123")
	if got.Status != match.StatusFinished || *got.HomeScore != 2 || *got.AwayScore != 1 {
		t.Fatalf("manual record fields changed: %+v", got)
	}
	if got.HomeTeam != "Argentina" || !got.KickOffTime.Equal(storedKickoff) || got.StageKey != "GROUP-A-MD1" {
		t.Fatalf("manual record fields changed: %+v", got)
	}
	if got.SyncStatus != match.SyncStatusSkippedManual || got.LastSyncedAt == nil || !got.LastSyncedAt.Equal(syncNow) {
		t.Fatalf("expected bookkeeping only, got sync_status=%q last_synced_at=%v", got.SyncStatus, got.LastSyncedAt)
	}
}

func TestSynchronize_ManualRecordWithNothingToChangeIsUnchanged(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC)
	f := newSyncFixture(t, []match.Match{finishedArgentinaBrazil(true, kickoff)}, argentinaBrazil(t, "Not Started"))

	result, err := f.service.Synchronize(context.Background(), fixturesInput())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	// The regression block keeps FINISHED and drops the incoming scores, so
	// nothing comparable differs and the no-op rule wins over the manual one.
	if result.SkippedUnchanged != 1 || result.SkippedManual != 0 || result.Updated != 0 {
		t.Fatalf("expected skipped_unchanged, got=%+v", result)
	}

	got, _ := f.matches.Get("thesportsdb_123")
	if got.Status != match.StatusFinished || *got.HomeScore != 2 || !got.IsManuallyEdited {
		t.Fatalf("manual record changed: %+v", got)
	}
	if got.SyncStatus != "" || got.LastSyncedAt != nil {
		t.Fatalf("unchanged record must not get bookkeeping, got sync_status=%q last_synced_at=%v", got.SyncStatus, got.LastSyncedAt)
	}
}

func TestSynchronize_ManualOverride(t *testing.T) {
	t.Parallel()

	storedKickoff := time.Date(2026, 6, 10, 17, 0, 0, 0, time.UTC)
	f := newSyncFixture(t, []match.Match{finishedArgentinaBrazil(true, storedKickoff)}, argentinaBrazil(t, "Not Started"))

	input := fixturesInput()
	input.Mode = SyncModeManual
	input.AllowManualOverride = true
	result, err := f.service.Synchronize(context.Background(), input)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("expected override update, got=%+v", result)
	}
	got, _ := f.matches.Get("thesportsdb_123")
	if got.Status != match.StatusFinished {
		t.Fatalf("override must still not regress status, got=%s", got.Status)
	}
	if !got.KickOffTime.Equal(time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC)) {
		t.Fatalf("override should apply upstream kickoff, got=%v", got.KickOffTime)
	}
}

func TestSynchronize_AdoptsRecordByFuzzyKey(t *testing.T) {
	t.Parallel()

	kickoff := time.Date(2026, 6, 10, 18, 0, 0, 0, time.UTC)
	legacy := match.Match{
		ID:           "legacy-1",
		TournamentID: testTournament,
		HomeTeam:     "  ARGENTÍNA ",
		AwayTeam:     "Brazil",
		KickOffTime:  &kickoff,
		Status:       match.StatusScheduled,
		LegacyStatus: match.LegacyUpcoming,
	}
	f := newSyncFixture(t, []match.Match{legacy}, argentinaBrazil(t, "Match Finished"))

	result, err := f.service.Synchronize(context.Background(), fixturesInput())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Updated != 1 || result.Created != 0 {
		t.Fatalf("expected fuzzy match update, got=%+v", result)
	}
	got, _ := f.matches.Get("legacy-1")
	if got.ExternalProvider != thesportsdb.ProviderName || got.ExternalMatchID != "123" {
		t.Fatalf("provenance should be adopted: %+v", got)
	}
	if got.Status != match.StatusFinished || *got.HomeScore != 2 {
		t.Fatalf("unexpected adopted record: %+v", got)
	}
}

func TestSynchronize_RejectsRecordsWithoutExternalID(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil,
		event(t, map[string]any{"strHomeTeam": "Qatar", "strAwayTeam": "Ecuador", "dateEvent": "2026-06-13"}),
		usaCanada(t),
	)
	result, err := f.service.Synchronize(context.Background(), fixturesInput())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Rejected != 1 || result.Created != 1 || result.Total != 2 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestSynchronize_DuplicateRecordsConvergeInOneRun(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil, usaCanada(t), usaCanada(t))
	result, err := f.service.Synchronize(context.Background(), fixturesInput())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Created != 1 || result.SkippedUnchanged != 1 {
		t.Fatalf("duplicate should resolve against the pending create: %+v", result)
	}
}

func TestSynchronize_CommitsInBoundedBatches(t *testing.T) {
	t.Parallel()

	records := make([]json.RawMessage, 0, 1000)
	for i := 0; i < 1000; i++ {
		records = append(records, event(t, map[string]any{
			"idEvent":     fmt.Sprintf("%d", 10000+i),
			"strHomeTeam": fmt.Sprintf("Home %d", i),
			"strAwayTeam": fmt.Sprintf("Away %d", i),
			"dateEvent":   "2026-06-20",
			"strStatus":   "Not Started",
		}))
	}
	f := newSyncFixture(t, nil, records...)

	result, err := f.service.Synchronize(context.Background(), fixturesInput())
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.Created != 1000 || result.Batches != 3 {
		t.Fatalf("expected 1000 creates in 3 batches, got=%+v", result)
	}
	if f.matches.Applied() != 1000 {
		t.Fatalf("expected 1000 applied writes, got=%d", f.matches.Applied())
	}
}

func TestSynchronize_RateLimitRecordsStatusAndReleasesLock(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil)
	limited := upstream.RateLimited(errors.New("upstream status=429"))
	f.provider.result = &limited
	ctx := context.Background()

	_, err := f.service.Synchronize(ctx, fixturesInput())
	if !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}

	status, ok, _ := f.statuses.Get(ctx, testTournament)
	if !ok || status.Status != syncstate.RunStatusRateLimit || status.LastError == "" {
		t.Fatalf("unexpected status record: %+v", status)
	}
	if status.LastSuccessAt != nil {
		t.Fatalf("failed run must not set last_success_at")
	}

	lock, _, _ := f.locks.Get(ctx, syncstate.LockKey(testTournament, thesportsdb.ProviderName))
	if lock.Held(syncNow) {
		t.Fatalf("lock must be released after failure: %+v", lock)
	}
}

func TestSynchronize_UpstreamFailureIsGenericError(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil)
	failed := upstream.Failed(errors.New("upstream status=503"))
	f.provider.result = &failed

	_, err := f.service.Synchronize(context.Background(), fixturesInput())
	if !errors.Is(err, ErrUpstreamFailed) || errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrUpstreamFailed only, got %v", err)
	}
	status, _, _ := f.statuses.Get(context.Background(), testTournament)
	if status.Status != syncstate.RunStatusError {
		t.Fatalf("expected error status, got=%s", status.Status)
	}
}

func TestSynchronize_LockContentionIsNoop(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil, usaCanada(t))
	ctx := context.Background()
	key := syncstate.LockKey(testTournament, thesportsdb.ProviderName)
	if ok, _ := f.locks.Acquire(ctx, key, "other-host/2", time.Hour, syncNow); !ok {
		t.Fatalf("pre-acquire failed")
	}

	result, err := f.service.Synchronize(ctx, fixturesInput())
	if err != nil {
		t.Fatalf("contention must not be an error: %v", err)
	}
	if !result.Skipped || result.SkipReason != SkipReasonLocked {
		t.Fatalf("expected skipped result, got=%+v", result)
	}
	if f.provider.fetches != 0 {
		t.Fatalf("provider must not be called under contention")
	}
	lock, _, _ := f.locks.Get(ctx, key)
	if lock.LockedBy != "other-host/2" {
		t.Fatalf("foreign lock must be untouched: %+v", lock)
	}
}

func TestSynchronize_InvalidInput(t *testing.T) {
	t.Parallel()

	f := newSyncFixture(t, nil)
	input := fixturesInput()
	input.DateFrom, input.DateTo = input.DateTo, input.DateFrom

	if _, err := f.service.Synchronize(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	input = fixturesInput()
	input.Mode = "hourly"
	if _, err := f.service.Synchronize(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for unknown mode, got %v", err)
	}
}

func TestSynchronize_InvalidProviderConfigFailsBeforeLock(t *testing.T) {
	t.Parallel()

	provider := usecasemock.NewFixtureProvider(t)
	provider.On("Name").Return("football-data").Maybe()
	provider.On("Validate").Return(errors.New("football-data api key is required")).Once()

	locks := memory.NewSyncLockRepository()
	service := NewMatchSyncService(provider, memory.NewMatchRepository(nil), locks, memory.NewSyncStatusRepository(),
		MatchSyncConfig{TournamentID: testTournament}, logging.NewNop())

	_, err := service.Synchronize(context.Background(), fixturesInput())
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	if _, exists, _ := locks.Get(context.Background(), syncstate.LockKey(testTournament, "football-data")); exists {
		t.Fatalf("lock must not be touched on config error")
	}
}

func TestSynchronize_StoreFailureRecordsError(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	provider := usecasemock.NewFixtureProvider(t)
	provider.On("Name").Return("football-data").Maybe()
	provider.On("Validate").Return(nil).Once()
	provider.On("FetchMatches", mock.Anything, mock.Anything, mock.Anything).Return(upstream.OK(nil)).Once()

	matches := matchmock.NewRepository(t)
	matches.On("ListByTournament", mock.Anything, testTournament).Return(nil, errors.New("connection refused")).Once()

	statuses := memory.NewSyncStatusRepository()
	locks := memory.NewSyncLockRepository()
	service := NewMatchSyncService(provider, matches, locks, statuses, MatchSyncConfig{TournamentID: testTournament}, logging.NewNop())

	_, err := service.Synchronize(ctx, fixturesInput())
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	status, _, _ := statuses.Get(ctx, testTournament)
	if status.Status != syncstate.RunStatusError {
		t.Fatalf("expected error status, got=%+v", status)
	}
	lock, _, _ := locks.Get(ctx, syncstate.LockKey(testTournament, "football-data"))
	if lock.ExpiresAt != nil {
		t.Fatalf("lock must be released: %+v", lock)
	}
}

func TestShouldSyncLive(t *testing.T) {
	t.Parallel()

	soon := syncNow.Add(30 * time.Hour)
	later := syncNow.Add(40 * time.Hour)
	f := newSyncFixture(t, []match.Match{
		{ID: "later", TournamentID: testTournament, Status: match.StatusScheduled, KickOffTime: &later},
	})

	live, err := f.service.ShouldSyncLive(context.Background(), syncNow)
	if err != nil || live {
		t.Fatalf("expected no live window, got live=%v err=%v", live, err)
	}

	f = newSyncFixture(t, []match.Match{
		{ID: "soon", TournamentID: testTournament, Status: match.StatusScheduled, KickOffTime: &soon},
	})
	live, err = f.service.ShouldSyncLive(context.Background(), syncNow)
	if err != nil || !live {
		t.Fatalf("expected live window, got live=%v err=%v", live, err)
	}
}

func TestWindows(t *testing.T) {
	t.Parallel()

	from, to := FixtureWindow(syncNow, 2, 200)
	if !from.Equal(syncNow.AddDate(0, 0, -2)) || !to.Equal(syncNow.AddDate(0, 0, 200)) {
		t.Fatalf("unexpected fixture window: %s - %s", from, to)
	}
	from, to = LiveWindow(syncNow, 3)
	if !from.Equal(syncNow.AddDate(0, 0, -1)) || !to.Equal(syncNow.AddDate(0, 0, 3)) {
		t.Fatalf("unexpected live window: %s - %s", from, to)
	}
}
