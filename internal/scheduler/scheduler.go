package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"github.com/i474232898/gridwatch/internal/grid"
)

// Ingester runs one ingestion pass.
type Ingester interface {
	Ingest(ctx context.Context) (grid.IngestResult, error)
}

// Scheduler periodically ingests grid data.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	ingester   Ingester
	interval   time.Duration
	runTimeout time.Duration
	runOnStart bool
	logger     *zap.Logger
}

// New creates a new Scheduler. runTimeout bounds a single pass.
func New(ingester Ingester, interval, runTimeout time.Duration, runOnStart bool, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler:  gocron.NewScheduler(time.UTC),
		ingester:   ingester,
		interval:   interval,
		runTimeout: runTimeout,
		runOnStart: runOnStart,
		logger:     logger.Named("scheduler"),
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = time.Hour
	}

	job := s.scheduler.Every(interval).SingletonMode()
	if !s.runOnStart {
		job = job.WaitForSchedule()
	}

	if _, err := job.Do(s.run); err != nil {
		return err
	}

	s.scheduler.StartAsync()
	s.logger.Info("scheduler started", zap.Duration("interval", interval), zap.Bool("run_on_start", s.runOnStart))
	return nil
}

func (s *Scheduler) run() {
	s.logger.Debug("running grid ingestion job")

	timeout := s.runTimeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	res, err := s.ingester.Ingest(ctx)
	if err != nil {
		s.logger.Warn("grid ingestion failed", zap.String("run_id", res.RunID), zap.Error(err))
		return
	}
	s.logger.Debug("completed grid ingestion job", zap.String("run_id", res.RunID), zap.Int("inserted", res.Inserted))
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
