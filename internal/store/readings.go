package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/i474232898/gridwatch/internal/grid"
)

var (
	// ErrNotFound is returned when no reading is stored yet.
	ErrNotFound = fmt.Errorf("no readings stored: %w", grid.ErrNoData)
)

// InsertReadings stores every reading whose (period, type) is not present yet.
// The whole batch commits in one transaction. The unique index on
// (period, type) backs the lookup, so concurrent writers cannot create duplicates.
func (s *SQLiteStore) InsertReadings(ctx context.Context, readings []grid.Reading) (int, error) {
	if len(readings) == 0 {
		return 0, nil
	}

	inserted := 0
	seen := make(map[string]struct{}, len(readings))

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, r := range readings {
			if _, dup := seen[r.Key()]; dup {
				continue
			}
			seen[r.Key()] = struct{}{}

			var existing int64
			if err := tx.Model(&grid.Reading{}).
				Where("period = ? AND type = ?", r.Period, r.Type).
				Count(&existing).Error; err != nil {
				return fmt.Errorf("lookup %s: %w", r.Key(), err)
			}
			if existing > 0 {
				continue
			}

			row := r
			row.ID = 0
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
			if res.Error != nil {
				return fmt.Errorf("insert %s: %w", r.Key(), res.Error)
			}
			inserted += int(res.RowsAffected)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.logger.Debug("readings committed", zap.Int("batch", len(readings)), zap.Int("inserted", inserted))
	return inserted, nil
}

// LatestReading returns the reading with the greatest period. When several
// series share that period the alphabetically first type wins, which puts
// demand ("D") ahead of forecast and generation series.
func (s *SQLiteStore) LatestReading(ctx context.Context) (grid.Reading, error) {
	var r grid.Reading
	err := s.db.WithContext(ctx).
		Order("period_at DESC").
		Order("type ASC").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return grid.Reading{}, ErrNotFound
	}
	if err != nil {
		return grid.Reading{}, err
	}
	return r, nil
}

// ReadingsSince returns readings with PeriodAt >= from, oldest first.
func (s *SQLiteStore) ReadingsSince(ctx context.Context, from time.Time) ([]grid.Reading, error) {
	readings := make([]grid.Reading, 0)
	err := s.db.WithContext(ctx).
		Where("period_at >= ?", from.UTC()).
		Order("period_at ASC").
		Order("type ASC").
		Find(&readings).Error
	if err != nil {
		return nil, err
	}
	return readings, nil
}

// CountReadings returns the number of stored grid readings.
func (s *SQLiteStore) CountReadings(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&grid.Reading{}).Count(&n).Error
	return n, err
}
