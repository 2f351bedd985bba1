// Package user provides salesperson accounts and credential checks.
package user

import (
	"errors"
	"time"
)

// Role controls what an account may manage.
type Role string

const (
	RoleSalesPerson Role = "sales_person"
	RoleManager     Role = "manager"
)

// IsValid checks if a role is recognized.
func (r Role) IsValid() bool {
	return r == RoleSalesPerson || r == RoleManager
}

// User is a salesperson or manager account. The password hash never leaves
// this package.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Phone     string    `json:"phone,omitempty"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrEmailTaken means the email is already registered.
	ErrEmailTaken = errors.New("email already registered")
	// ErrNotFound means no account matches the lookup.
	ErrNotFound = errors.New("user not found")
	// ErrInvalidCredentials covers both unknown email and wrong password,
	// so login responses don't reveal which one failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
)
