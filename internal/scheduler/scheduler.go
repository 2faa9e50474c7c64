// Package scheduler drives the periodic fixture and live syncs.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/fixture-sync/internal/platform/logging"
	"github.com/riskibarqy/fixture-sync/internal/usecase"
)

// Syncer is the part of the sync engine the scheduler drives.
type Syncer interface {
	Synchronize(ctx context.Context, input usecase.SyncInput) (usecase.SyncResult, error)
	ShouldSyncLive(ctx context.Context, now time.Time) (bool, error)
}

type Config struct {
	DailyCron        string
	LiveCron         string
	LookbackDays     int
	FixtureDaysAhead int
	LiveDaysAhead    int
	// RunTimeout bounds one job; it should not exceed the lock TTL.
	RunTimeout time.Duration
	Location   *time.Location
}

var schedulerTracer = otel.Tracer("fixture-sync/internal/scheduler")

const (
	jobDaily = "daily"
	jobLive  = "live"
)

// Scheduler runs both jobs through a single-worker nonblocking pool, so a
// tick that fires while another job is still running is dropped.
type Scheduler struct {
	syncer Syncer
	cfg    Config
	cron   *cron.Cron
	pool   *ants.Pool
	logger *logging.Logger
	now    func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	jobs   sync.WaitGroup
}

func New(syncer Syncer, cfg Config, logger *logging.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.RunTimeout <= 0 {
		cfg.RunTimeout = 10 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}

	pool, err := ants.NewPool(1, ants.WithNonblocking(true))
	if err != nil {
		return nil, fmt.Errorf("create job pool: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		syncer: syncer,
		cfg:    cfg,
		cron:   cron.New(cron.WithLocation(cfg.Location)),
		pool:   pool,
		logger: logger.Named("scheduler"),
		now:    time.Now,
		ctx:    ctx,
		cancel: cancel,
	}

	if _, err := s.cron.AddFunc(cfg.DailyCron, func() { s.submit(jobDaily, s.runDaily) }); err != nil {
		s.close()
		return nil, fmt.Errorf("parse daily cron %q: %w", cfg.DailyCron, err)
	}
	if _, err := s.cron.AddFunc(cfg.LiveCron, func() { s.submit(jobLive, s.runLive) }); err != nil {
		s.close()
		return nil, fmt.Errorf("parse live cron %q: %w", cfg.LiveCron, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("scheduler started", "daily_cron", s.cfg.DailyCron, "live_cron", s.cfg.LiveCron)
}

// Stop halts new ticks, cancels running jobs and waits for them until ctx
// is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	<-s.cron.Stop().Done()
	s.cancel()

	done := make(chan struct{})
	go func() {
		s.jobs.Wait()
		close(done)
	}()

	var err error
	select {
	case <-done:
	case <-ctx.Done():
		err = fmt.Errorf("wait for running jobs: %w", ctx.Err())
	}
	s.pool.Release()
	s.logger.Info("scheduler stopped")
	return err
}

func (s *Scheduler) close() {
	s.cancel()
	s.pool.Release()
}

// submit hands job to the pool. It reports false when the pool is busy.
func (s *Scheduler) submit(name string, job func(ctx context.Context) error) bool {
	s.jobs.Add(1)
	err := s.pool.Submit(func() {
		defer s.jobs.Done()

		ctx, cancel := context.WithTimeout(s.ctx, s.cfg.RunTimeout)
		defer cancel()
		ctx, span := schedulerTracer.Start(ctx, "scheduler."+name)
		span.SetAttributes(attribute.String("scheduler.job", name))
		defer span.End()

		start := time.Now()
		if err := job(ctx); err != nil {
			s.logger.ErrorContext(ctx, "scheduled sync failed", "job", name, "error", err, "duration", time.Since(start))
			return
		}
		s.logger.DebugContext(ctx, "scheduled sync done", "job", name, "duration", time.Since(start))
	})
	if err == nil {
		return true
	}

	s.jobs.Done()
	if errors.Is(err, ants.ErrPoolOverload) {
		s.logger.Info("scheduled sync skipped, previous job still running", "job", name)
	} else {
		s.logger.Error("submit scheduled sync", "job", name, "error", err)
	}
	return false
}

func (s *Scheduler) runDaily(ctx context.Context) error {
	from, to := usecase.FixtureWindow(s.now(), s.cfg.LookbackDays, s.cfg.FixtureDaysAhead)
	return s.run(ctx, usecase.SyncModeFixtures, from, to)
}

func (s *Scheduler) runLive(ctx context.Context) error {
	now := s.now()
	live, err := s.syncer.ShouldSyncLive(ctx, now)
	if err != nil {
		return fmt.Errorf("live pre-check: %w", err)
	}
	if !live {
		s.logger.DebugContext(ctx, "live sync skipped, no match near kickoff")
		return nil
	}
	from, to := usecase.LiveWindow(now, s.cfg.LiveDaysAhead)
	return s.run(ctx, usecase.SyncModeLive, from, to)
}

func (s *Scheduler) run(ctx context.Context, mode usecase.SyncMode, from, to time.Time) error {
	result, err := s.syncer.Synchronize(ctx, usecase.SyncInput{
		Mode:     mode,
		DateFrom: from,
		DateTo:   to,
	})
	if err != nil {
		return err
	}
	if result.Skipped {
		s.logger.InfoContext(ctx, "scheduled sync skipped", "mode", mode, "reason", result.SkipReason)
	}
	return nil
}
