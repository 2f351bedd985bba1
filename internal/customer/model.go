// Package customer provides the customer domain model and data access.
package customer

import (
	"errors"
	"time"

	"github.com/ecinar/route-tracker/internal/geo"
)

// Category classifies a customer's business.
type Category string

const (
	CategoryRetail    Category = "retail"
	CategoryCorporate Category = "corporate"
	CategoryWholesale Category = "wholesale"
	CategoryOther     Category = "other"
)

// IsValid checks if a category is recognized.
func (c Category) IsValid() bool {
	switch c {
	case CategoryRetail, CategoryCorporate, CategoryWholesale, CategoryOther:
		return true
	}
	return false
}

// Status represents whether a customer can be visited.
type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusBlocked  Status = "blocked"
)

// IsValid checks if a status is recognized.
func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusBlocked:
		return true
	}
	return false
}

// Customer represents one business a salesperson calls on. Each record
// belongs to the salesperson who created it.
type Customer struct {
	ID            string         `json:"id"`
	OwnerID       string         `json:"owner_id"`
	Name          string         `json:"name"`
	Email         string         `json:"email,omitempty"`
	Phone         string         `json:"phone"`
	Address       string         `json:"address"`
	Location      geo.Coordinate `json:"location"`
	Company       string         `json:"company,omitempty"`
	TaxNumber     string         `json:"tax_number,omitempty"`
	Category      Category       `json:"category"`
	Status        Status         `json:"status"`
	Notes         string         `json:"notes,omitempty"`
	LastVisitDate *time.Time     `json:"last_visit_date,omitempty"`
	TotalOrders   int64          `json:"total_orders"`
	TotalSpent    float64        `json:"total_spent"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// ErrNotFound means no customer matches the lookup for that owner.
var ErrNotFound = errors.New("customer not found")
