package battery

import (
	"context"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// Store persists battery readings.
type Store interface {
	SaveBattery(ctx context.Context, r *Reading) error
	CountBattery(ctx context.Context) (int64, error)
}

// Service handles battery telemetry. Save and Report are independent:
// Report never touches the store.
type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Save persists level verbatim and returns the stored row.
func (s *Service) Save(ctx context.Context, level float64) (Reading, error) {
	r := Reading{Battery: level}
	if err := s.store.SaveBattery(ctx, &r); err != nil {
		return Reading{}, fmt.Errorf("save battery reading: %w", err)
	}
	s.logger.Debug("battery reading stored", zap.Uint("id", r.ID), zap.Float64("battery", r.Battery))
	return r, nil
}

// Report renders level as a whole percentage, rounding halves to even, and logs it.
func (s *Service) Report(level float64) string {
	percent := int(math.RoundToEven(level * 100))
	s.logger.Info(fmt.Sprintf("Received battery level: %d%%", percent))
	return fmt.Sprintf("Battery level: %d%%", percent)
}

// Count returns the number of stored readings.
func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.store.CountBattery(ctx)
}
