package grid

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// HistoryWindow is the trailing window covered by History.
const HistoryWindow = 24 * time.Hour

// Service orchestrates fetching from the upstream provider and persisting readings.
type Service struct {
	store    Store
	provider Provider
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService creates a new Service.
func NewService(store Store, provider Provider, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:    store,
		provider: provider,
		logger:   logger,
		now:      time.Now,
		locks:    make(map[string]*sync.Mutex),
	}
}

// WithClock overrides the time source used for windowed queries.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// respondentLock returns the mutex guarding ingestion for one respondent.
func (s *Service) respondentLock(respondent string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[respondent]
	if !ok {
		l = &sync.Mutex{}
		s.locks[respondent] = l
	}
	return l
}

// Ingest fetches the most recent readings and stores the ones not seen before.
// Runs for the same respondent are serialized. On upstream failure the store
// is not touched and the error is returned as *UpstreamError.
func (s *Service) Ingest(ctx context.Context) (IngestResult, error) {
	if s.provider == nil {
		return IngestResult{}, fmt.Errorf("no grid provider configured")
	}

	lock := s.respondentLock(s.provider.Respondent())
	lock.Lock()
	defer lock.Unlock()

	result := IngestResult{RunID: uuid.NewString()}
	log := s.logger.With(
		zap.String("run_id", result.RunID),
		zap.String("provider", s.provider.Name()),
		zap.String("respondent", s.provider.Respondent()),
	)

	fetched, err := s.provider.Fetch(ctx)
	if err != nil {
		var upstreamErr *UpstreamError
		if errors.As(err, &upstreamErr) {
			log.Warn("upstream fetch failed", zap.Int("status", upstreamErr.Status), zap.Error(err))
		} else {
			log.Error("fetch failed", zap.Error(err))
		}
		return result, err
	}

	result.Fetched = len(fetched.Readings) + fetched.Skipped
	result.Skipped = fetched.Skipped

	inserted, err := s.store.InsertReadings(ctx, fetched.Readings)
	if err != nil {
		log.Error("failed to store readings", zap.Error(err))
		return result, fmt.Errorf("store readings: %w", err)
	}
	result.Inserted = inserted

	log.Info("ingestion completed",
		zap.Int("fetched", result.Fetched),
		zap.Int("inserted", result.Inserted),
		zap.Int("skipped", result.Skipped),
	)
	return result, nil
}

// Current returns the classified status of the latest reading, or ErrNoData.
func (s *Service) Current(ctx context.Context) (CurrentStatus, error) {
	latest, err := s.store.LatestReading(ctx)
	if err != nil {
		return CurrentStatus{}, err
	}
	return statusFor(latest), nil
}

// History returns readings from the trailing HistoryWindow, oldest first.
// An empty store yields an empty, non-nil slice.
func (s *Service) History(ctx context.Context) ([]HistoryPoint, error) {
	from := s.now().UTC().Add(-HistoryWindow)

	readings, err := s.store.ReadingsSince(ctx, from)
	if err != nil {
		return nil, err
	}

	points := make([]HistoryPoint, 0, len(readings))
	for _, r := range readings {
		points = append(points, HistoryPoint{Period: r.Period, Value: r.Value})
	}
	return points, nil
}
