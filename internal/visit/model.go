// Package visit owns the visit lifecycle: the domain model, the store
// contract, and the proximity-gated state machine that moves a visit
// through planned → in-progress → completed.
package visit

import (
	"time"

	"github.com/ecinar/route-tracker/internal/geo"
)

// Status represents where a visit is in its lifecycle.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusPlanned, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are possible.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CustomerRef snapshots the customer being visited, so the visit stays
// meaningful even if the customer record changes later.
type CustomerRef struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone,omitempty"`
}

// OrderLine is one product line attached when confirming a visit.
type OrderLine struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`
	TotalPrice  float64 `json:"total_price"`
}

// Confirmation records that a completed visit was confirmed on site.
type Confirmation struct {
	Confirmed   bool       `json:"confirmed"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
	Signature   string     `json:"signature,omitempty"` // base64 payload
}

// Visit represents one planned or executed customer call. Target is set at
// creation and never changes; status moves only through Service transitions.
type Visit struct {
	ID               string         `json:"id"`
	OwnerID          string         `json:"owner_id"`
	Customer         CustomerRef    `json:"customer"`
	Target           geo.Coordinate `json:"target_location"`
	PlannedDate      time.Time      `json:"planned_date"`
	ActualDate       *time.Time     `json:"actual_date,omitempty"`
	Status           Status         `json:"status"`
	Notes            string         `json:"notes,omitempty"`
	Confirmation     Confirmation   `json:"confirmation"`
	Orders           []OrderLine    `json:"orders,omitempty"`
	TotalOrderAmount float64        `json:"total_order_amount"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// TotalOf returns the sum of quantity × unit price over all lines.
func TotalOf(lines []OrderLine) float64 {
	var total float64
	for _, l := range lines {
		total += float64(l.Quantity) * l.UnitPrice
	}
	return total
}

// ValidateOrderLines rejects bad line items before any mutation happens.
func ValidateOrderLines(lines []OrderLine) error {
	for i, l := range lines {
		if l.ProductName == "" {
			return &InvalidOrderLineError{Index: i, Reason: "product name is required"}
		}
		if l.Quantity < 1 {
			return &InvalidOrderLineError{Index: i, Reason: "quantity must be at least 1"}
		}
		if l.UnitPrice < 0 {
			return &InvalidOrderLineError{Index: i, Reason: "unit price cannot be negative"}
		}
	}
	return nil
}
