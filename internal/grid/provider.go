package grid

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoData is returned by the query layer when nothing has been ingested yet.
	ErrNoData = errors.New("no data")

	// ErrMissingAPIKey is returned when the upstream credential is not configured.
	ErrMissingAPIKey = errors.New("eia api key is not configured")
)

// UpstreamError reports an unavailable or failing upstream.
// Status carries the upstream HTTP status, or a gateway status for transport failures.
type UpstreamError struct {
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream unavailable (status %d): %v", e.Status, e.Err)
}

// Message returns the underlying failure text, falling back to the status
// when no cause is attached.
func (e *UpstreamError) Message() string {
	if e.Err == nil {
		return fmt.Sprintf("upstream returned status %d", e.Status)
	}
	return e.Err.Error()
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Provider abstracts the grid statistics source (EIA).
type Provider interface {
	Name() string
	Respondent() string
	Fetch(ctx context.Context) (FetchResult, error)
}

// FetchResult is the parsed outcome of one upstream call.
type FetchResult struct {
	Readings []Reading
	// Skipped counts upstream records that were dropped as malformed.
	Skipped int
}

// Store is the contract the persistent reading store must satisfy.
type Store interface {
	// InsertReadings commits every reading whose (period, type) is not stored yet,
	// in one transaction, and returns how many rows were written.
	InsertReadings(ctx context.Context, readings []Reading) (int, error)
	LatestReading(ctx context.Context) (Reading, error)
	ReadingsSince(ctx context.Context, from time.Time) ([]Reading, error)
}
