// Package location supplies device position samples to visit transitions.
//
// A sample is pulled once, at the instant a transition is requested, rather
// than tracked continuously; the gate's input is always an explicit value.
package location

import (
	"context"
	"errors"
	"time"

	"github.com/ecinar/route-tracker/internal/geo"
)

// Failure modes for acquiring a position sample. These mirror the three
// geolocation error classes devices report.
var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnavailable      = errors.New("position unavailable")
	ErrTimeout          = errors.New("timed out acquiring position")
)

// Sample is a transient device position. It is consumed by the proximity
// check at the moment of a transition request and never persisted.
type Sample struct {
	Coordinate     geo.Coordinate `json:"coordinate"`
	AccuracyMeters float64        `json:"accuracy_meters"`
	CapturedAt     time.Time      `json:"captured_at"`
}

// Options control how a position is acquired.
type Options struct {
	Timeout      time.Duration
	MaxAge       time.Duration
	HighAccuracy bool
}

// Provider yields the caller's current position on demand.
type Provider interface {
	GetCurrentLocation(ctx context.Context, opts Options) (*Sample, error)
}

// Fixed is a Provider that always returns the same sample or error.
// Used by tests and by CLI flows where coordinates arrive as flags.
type Fixed struct {
	Sample *Sample
	Err    error
}

// GetCurrentLocation returns the configured sample, stamping CapturedAt if
// the caller left it zero. A sample older than Options.MaxAge is not a
// current position and reads as unavailable.
func (f Fixed) GetCurrentLocation(ctx context.Context, opts Options) (*Sample, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	if f.Sample == nil {
		return nil, ErrUnavailable
	}

	s := *f.Sample
	if s.CapturedAt.IsZero() {
		s.CapturedAt = time.Now()
	}
	if opts.MaxAge > 0 && time.Since(s.CapturedAt) > opts.MaxAge {
		return nil, ErrUnavailable
	}
	return &s, nil
}
