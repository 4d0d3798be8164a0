package grid

import (
	"time"
)

// Band represents a coarse classification of current grid load.
type Band string

const (
	BandLow    Band = "low"
	BandMedium Band = "medium"
	BandHigh   Band = "high"
)

// Band thresholds in the upstream value units. Lower bounds are inclusive.
const (
	LowUpperBound    = 80000.0
	MediumUpperBound = 120000.0
)

// MaxGridLoad is the reference load used to express a reading as a percentage.
const MaxGridLoad = 160000.0

// Reading is one grid data point as stored locally.
// (Period, Type) is unique across the table.
type Reading struct {
	ID         uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Period     string    `gorm:"uniqueIndex:idx_readings_period_type;not null;size:32" json:"period"`
	PeriodAt   time.Time `gorm:"index;not null" json:"-"`
	Type       string    `gorm:"uniqueIndex:idx_readings_period_type;not null;size:16" json:"type"`
	Value      float64   `gorm:"not null" json:"value"`
	ValueUnits string    `gorm:"column:value_units;not null;size:64" json:"value_units"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"-"`
}

// TableName pins the table name regardless of gorm's naming strategy.
func (Reading) TableName() string {
	return "readings"
}

// Key returns the dedup key of the reading.
func (r Reading) Key() string {
	return r.Period + "|" + r.Type
}

// CurrentStatus is the derived view over the latest reading.
type CurrentStatus struct {
	Period      string  `json:"period"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
	Unit        string  `json:"unit"`
	Status      Band    `json:"status"`
	LoadPercent float64 `json:"load_percent"`
	Advice      string  `json:"advice"`
}

// HistoryPoint is one entry of the trailing-window history.
type HistoryPoint struct {
	Period string  `json:"period"`
	Value  float64 `json:"value"`
}

// IngestResult summarizes one ingestion run.
// Inserted counts rows actually written, not rows fetched.
type IngestResult struct {
	RunID    string `json:"run_id"`
	Fetched  int    `json:"fetched"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}
