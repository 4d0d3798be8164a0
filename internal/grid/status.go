package grid

import "math"

// Classify maps a load value to its band.
func Classify(v float64) Band {
	switch {
	case v < LowUpperBound:
		return BandLow
	case v < MediumUpperBound:
		return BandMedium
	default:
		return BandHigh
	}
}

// LoadPercent expresses v as a percentage of MaxGridLoad, rounded to one decimal.
func LoadPercent(v float64) float64 {
	return math.Round(v/MaxGridLoad*1000) / 10
}

// Advice returns a charging recommendation for the given load percentage.
func Advice(pct float64) string {
	switch {
	case pct < 40:
		return "Great time to charge - grid is low and green!"
	case pct < 70:
		return "Charging is okay, but grid is moderately loaded."
	default:
		return "High grid demand - consider delaying charging"
	}
}

// statusFor builds the status view of r. Advice uses the unrounded share of
// MaxGridLoad; LoadPercent is rounded for display only.
func statusFor(r Reading) CurrentStatus {
	return CurrentStatus{
		Period:      r.Period,
		Type:        r.Type,
		Value:       r.Value,
		Unit:        r.ValueUnits,
		Status:      Classify(r.Value),
		LoadPercent: LoadPercent(r.Value),
		Advice:      Advice(r.Value / MaxGridLoad * 100),
	}
}
