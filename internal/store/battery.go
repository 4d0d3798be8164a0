package store

import (
	"context"

	"github.com/i474232898/gridwatch/internal/battery"
)

func (s *SQLiteStore) SaveBattery(ctx context.Context, r *battery.Reading) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *SQLiteStore) CountBattery(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&battery.Reading{}).Count(&n).Error
	return n, err
}
