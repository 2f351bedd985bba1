package visit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ecinar/route-tracker/internal/geo"
	"github.com/ecinar/route-tracker/internal/location"
)

// CustomerDirectory is the slice of the customer layer the service needs:
// rollup bookkeeping after a completed visit.
type CustomerDirectory interface {
	RecordVisit(ctx context.Context, customerID string, at time.Time, orderAmount float64) error
}

// Service runs the visit state machine. Transitions that move a visit to
// in-progress or completed are gated on proximity to the visit's target.
type Service struct {
	store           Store
	customers       CustomerDirectory
	gate            geo.Gate
	provider        location.Provider
	locationTimeout time.Duration
	locationMaxAge  time.Duration
	storeTimeout    time.Duration
	now             func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithCustomers wires customer rollups, updated after completion.
func WithCustomers(d CustomerDirectory) Option {
	return func(s *Service) { s.customers = d }
}

// WithProvider sets the fallback location source used when a transition is
// called without an explicit sample.
func WithProvider(p location.Provider) Option {
	return func(s *Service) { s.provider = p }
}

// WithLocationTimeout bounds how long a provider lookup may take.
func WithLocationTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.locationTimeout = d
		}
	}
}

// WithLocationMaxAge sets how old a cached provider position may be before
// it no longer counts as the current location.
func WithLocationMaxAge(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.locationMaxAge = d
		}
	}
}

// WithStoreTimeout bounds each store round trip.
func WithStoreTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.storeTimeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a visit service around a store and a proximity gate.
func NewService(store Store, gate geo.Gate, opts ...Option) *Service {
	s := &Service{
		store:           store,
		gate:            gate,
		locationTimeout: 10 * time.Second,
		locationMaxAge:  time.Minute,
		storeTimeout:    5 * time.Second,
		now:             time.Now,
	}
	if s.gate.ThresholdMeters <= 0 {
		s.gate = geo.NewGate(0)
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// PlanParams describes a new visit.
type PlanParams struct {
	OwnerID     string
	Customer    CustomerRef
	Target      geo.Coordinate
	PlannedDate time.Time
	Notes       string
	Orders      []OrderLine // pre-planned lines, optional
}

// Plan creates a visit in the planned state.
func (s *Service) Plan(ctx context.Context, p PlanParams) (*Visit, error) {
	if p.Customer.Name == "" {
		return nil, fmt.Errorf("customer name is required")
	}
	if p.Customer.Address == "" {
		return nil, fmt.Errorf("customer address is required")
	}
	if !p.Target.Valid() {
		return nil, ErrInvalidTarget
	}
	if p.PlannedDate.IsZero() {
		return nil, fmt.Errorf("planned date is required")
	}
	if err := ValidateOrderLines(p.Orders); err != nil {
		return nil, err
	}

	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	v, err := s.store.Create(ctx, &Visit{
		OwnerID:     p.OwnerID,
		Customer:    p.Customer,
		Target:      p.Target,
		PlannedDate: p.PlannedDate,
		Status:      StatusPlanned,
		Notes:       p.Notes,
		Orders:      p.Orders,
	})
	return v, s.storeErr(err)
}

// Get returns a visit if it exists and belongs to ownerID.
func (s *Service) Get(ctx context.Context, ownerID, id string) (*Visit, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()
	return s.owned(ctx, ownerID, id)
}

// List returns the owner's visits.
func (s *Service) List(ctx context.Context, ownerID string, opts ListOptions) ([]*Visit, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	visits, err := s.store.List(ctx, ownerID, opts)
	return visits, s.storeErr(err)
}

// Today returns the owner's visits planned for the current local day.
func (s *Service) Today(ctx context.Context, ownerID string) ([]*Visit, error) {
	now := s.now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.Add(24 * time.Hour)
	return s.List(ctx, ownerID, ListOptions{From: &from, To: &to})
}

// UpdateParams holds the planning fields that may change before a visit runs.
type UpdateParams struct {
	Customer    CustomerRef
	PlannedDate time.Time
	Notes       string
}

// Update edits a planned visit. Started visits cannot be rescheduled.
func (s *Service) Update(ctx context.Context, ownerID, id string, p UpdateParams) (*Visit, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	v, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusPlanned {
		return nil, &InvalidTransitionError{From: v.Status, Attempted: "reschedule"}
	}

	if p.Customer.Name != "" {
		v.Customer.Name = p.Customer.Name
	}
	if p.Customer.Address != "" {
		v.Customer.Address = p.Customer.Address
	}
	if p.Customer.Phone != "" {
		v.Customer.Phone = p.Customer.Phone
	}
	if !p.PlannedDate.IsZero() {
		v.PlannedDate = p.PlannedDate
	}
	v.Notes = p.Notes

	out, err := s.store.Update(ctx, v)
	return out, s.storeErr(err)
}

// Delete removes a visit that has not produced any record worth keeping.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	v, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return err
	}
	if v.Status == StatusCompleted {
		return &InvalidTransitionError{From: v.Status, Attempted: "delete"}
	}
	return s.storeErr(s.store.Delete(ctx, ownerID, id))
}

// Start moves a planned visit to in-progress. The caller must be within the
// gate's radius of the visit target; sample may be nil, in which case the
// configured provider is consulted.
func (s *Service) Start(ctx context.Context, ownerID, id string, sample *location.Sample) (*Visit, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	v, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusPlanned {
		return nil, &InvalidTransitionError{From: v.Status, Attempted: "start"}
	}
	if err := s.checkProximity(ctx, v, sample); err != nil {
		return nil, err
	}

	// Only the status moves here; actualDate is stamped on completion.
	out, err := s.store.CompareAndSwapStatus(ctx, id, StatusPlanned, Patch{
		Status: StatusInProgress,
	})
	return out, s.storeErr(err)
}

// CompleteParams carries what is recorded when a visit finishes.
type CompleteParams struct {
	Sample    *location.Sample // nil = ask the provider
	Orders    []OrderLine      // replaces any pre-planned lines; may be empty
	Notes     *string
	Signature string // base64, optional
}

// Complete moves an in-progress visit to completed, attaching orders and a
// confirmation. Status, actual date, orders, and confirmation land together
// or not at all.
func (s *Service) Complete(ctx context.Context, ownerID, id string, p CompleteParams) (*Visit, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	v, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if v.Status != StatusInProgress {
		return nil, &InvalidTransitionError{From: v.Status, Attempted: "complete"}
	}
	if err := ValidateOrderLines(p.Orders); err != nil {
		return nil, err
	}
	if err := s.checkProximity(ctx, v, p.Sample); err != nil {
		return nil, err
	}

	now := s.now()
	patch := Patch{
		Status:     StatusCompleted,
		ActualDate: &now,
		Notes:      p.Notes,
		Confirmation: &Confirmation{
			Confirmed:   true,
			ConfirmedAt: &now,
			Signature:   p.Signature,
		},
	}
	// Orders replace the planned lines only when the caller sent some. A nil
	// slice means "not provided" and leaves existing lines and total alone;
	// an explicit empty slice clears them.
	if p.Orders != nil {
		total := TotalOf(p.Orders)
		patch.Orders = p.Orders
		patch.TotalOrderAmount = &total
	}
	out, err := s.store.CompareAndSwapStatus(ctx, id, StatusInProgress, patch)
	if err != nil {
		return nil, s.storeErr(err)
	}

	// Rollups are bookkeeping, not part of the transition. A failure here
	// must not undo a completed visit.
	if s.customers != nil && out.Customer.ID != "" {
		if err := s.customers.RecordVisit(ctx, out.Customer.ID, now, out.TotalOrderAmount); err != nil {
			slog.Warn("customer rollup failed",
				"visit_id", out.ID, "customer_id", out.Customer.ID, "error", err)
		}
	}
	return out, nil
}

// Cancel abandons a planned or in-progress visit. No proximity check; a
// salesperson can cancel from anywhere.
func (s *Service) Cancel(ctx context.Context, ownerID, id string, reason string) (*Visit, error) {
	ctx, cancel := s.storeCtx(ctx)
	defer cancel()

	v, err := s.owned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if v.Status.Terminal() {
		return nil, &InvalidTransitionError{From: v.Status, Attempted: "cancel"}
	}

	patch := Patch{Status: StatusCancelled}
	if reason != "" {
		notes := v.Notes
		if notes != "" {
			notes += "\n"
		}
		notes += "Cancelled: " + reason
		patch.Notes = &notes
	}
	out, err := s.store.CompareAndSwapStatus(ctx, id, v.Status, patch)
	return out, s.storeErr(err)
}

// owned loads a visit and enforces ownership. A foreign visit reads as
// forbidden, not missing, so the caller knows the id was real.
func (s *Service) owned(ctx context.Context, ownerID, id string) (*Visit, error) {
	v, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeErr(err)
	}
	if v.OwnerID != ownerID {
		return nil, ErrForbidden
	}
	return v, nil
}

// checkProximity resolves a location sample and evaluates it against the
// visit target. The distance comparison uses the unrounded value.
func (s *Service) checkProximity(ctx context.Context, v *Visit, sample *location.Sample) error {
	if sample == nil {
		if s.provider == nil {
			return ErrLocationUnavailable
		}
		lctx, cancel := context.WithTimeout(ctx, s.locationTimeout)
		defer cancel()

		got, err := s.provider.GetCurrentLocation(lctx, location.Options{
			Timeout:      s.locationTimeout,
			MaxAge:       s.locationMaxAge,
			HighAccuracy: true,
		})
		switch {
		case errors.Is(err, location.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
			return ErrLocationTimeout
		case err != nil:
			return ErrLocationUnavailable
		}
		sample = got
	}
	if !sample.Coordinate.Valid() {
		return ErrLocationUnavailable
	}
	if !v.Target.Valid() {
		return ErrInvalidTarget
	}

	distance, nearby := s.gate.Evaluate(sample.Coordinate, v.Target)
	if !nearby {
		return &TooFarError{
			DistanceMeters:  distance,
			ThresholdMeters: s.gate.ThresholdMeters,
		}
	}
	return nil
}

func (s *Service) storeCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}

// storeErr maps store-level context expiry onto the timeout sentinel.
func (s *Service) storeErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrStoreTimeout
	}
	return err
}
