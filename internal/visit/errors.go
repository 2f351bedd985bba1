package visit

import (
	"errors"
	"fmt"
)

// Expected, recoverable failure kinds. They are returned as values and mapped
// to transport responses at the API boundary; none of them crash anything.
var (
	ErrNotFound            = errors.New("visit not found")
	ErrForbidden           = errors.New("visit belongs to another salesperson")
	ErrConflict            = errors.New("visit was modified concurrently")
	ErrLocationUnavailable = errors.New("no location sample available")
	ErrLocationTimeout     = errors.New("timed out acquiring location")
	ErrStoreTimeout        = errors.New("timed out reaching the visit store")
	ErrInvalidTarget       = errors.New("visit target coordinates are out of range")
)

// InvalidTransitionError reports an operation the current status does not
// permit. Illegal transitions never silently no-op.
type InvalidTransitionError struct {
	From      Status
	Attempted string // operation name: start, complete, cancel
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot %s a %s visit", e.Attempted, e.From)
}

// TooFarError reports a valid position outside the allowed radius. It carries
// the unrounded measured distance so callers can show it.
type TooFarError struct {
	DistanceMeters  float64
	ThresholdMeters float64
}

func (e *TooFarError) Error() string {
	return fmt.Sprintf("%.0f m from the customer (allowed %.0f m)", e.DistanceMeters, e.ThresholdMeters)
}

// InvalidOrderLineError reports a bad order line by position.
type InvalidOrderLineError struct {
	Index  int
	Reason string
}

func (e *InvalidOrderLineError) Error() string {
	return fmt.Sprintf("order line %d: %s", e.Index+1, e.Reason)
}
