package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 12

// Repository manages user accounts in SQLite.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a user repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Create registers a new account with a bcrypt-hashed password.
func (r *Repository) Create(ctx context.Context, name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}
	if role == "" {
		role = RoleSalesPerson
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid role: %q", role)
	}

	var count int
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email = ?", email,
	).Scan(&count); err != nil {
		return nil, fmt.Errorf("checking email: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	id := uuid.NewString()
	if _, err := r.db.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role) VALUES (?, ?, ?, ?, ?)",
		id, name, email, string(hash), role,
	); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}

	return r.GetByID(ctx, id)
}

// Authenticate checks an email/password pair and returns the account.
// Unknown emails and wrong passwords both return ErrInvalidCredentials.
func (r *Repository) Authenticate(ctx context.Context, email, password string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var u User
	var hash string
	var active int
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, password_hash, role, phone, is_active, created_at FROM users WHERE email = ?",
		email,
	).Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Role, &u.Phone, &active, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	if active == 0 {
		return nil, ErrInvalidCredentials
	}

	u.IsActive = true
	return &u, nil
}

// GetByID returns an account by its ID.
func (r *Repository) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	var active int
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, email, role, phone, is_active, created_at FROM users WHERE id = ?", id,
	).Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Phone, &active, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	u.IsActive = active != 0
	return &u, nil
}
