package visit

import (
	"context"
	"time"
)

// Patch is the set of fields a status transition may change alongside the
// status itself. Nil fields are left untouched; a non-nil Orders slice
// replaces the full order list (and TotalOrderAmount must be set with it).
type Patch struct {
	Status           Status
	ActualDate       *time.Time
	Notes            *string
	Orders           []OrderLine
	TotalOrderAmount *float64
	Confirmation     *Confirmation
}

// ListOptions controls filtering for Store.List.
type ListOptions struct {
	From   *time.Time // planned date window start (inclusive)
	To     *time.Time // planned date window end (exclusive)
	Status Status     // empty = all
}

// Store persists visits. It is the only durable shared resource the state
// machine touches and may be reached from several process instances at once,
// so CompareAndSwapStatus must apply its patch only while the stored status
// still equals expected. Racing transitions must not both succeed.
type Store interface {
	Create(ctx context.Context, v *Visit) (*Visit, error)
	GetByID(ctx context.Context, id string) (*Visit, error)
	List(ctx context.Context, ownerID string, opts ListOptions) ([]*Visit, error)
	Update(ctx context.Context, v *Visit) (*Visit, error)
	Delete(ctx context.Context, ownerID, id string) error
	CompareAndSwapStatus(ctx context.Context, id string, expected Status, patch Patch) (*Visit, error)
}
