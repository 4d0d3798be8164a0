package battery

import "time"

// Reading is one persisted battery-level submission.
type Reading struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Battery   float64   `gorm:"not null" json:"battery"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"-"`
}

func (Reading) TableName() string {
	return "battery_readings"
}

// Submission is the request body accepted by both telemetry endpoints.
type Submission struct {
	BatteryLevel *float64 `json:"battery_level" validate:"required"`
}
