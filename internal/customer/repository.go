package customer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository provides CRUD operations for customers, scoped by owner.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a customer repository.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const selectColumns = `id, owner_id, name, email, phone, address, lat, lng, company,
	tax_number, category, status, notes, last_visit_date, total_orders, total_spent,
	created_at, updated_at`

// Create adds a new customer for the given owner.
func (r *Repository) Create(ctx context.Context, c *Customer) (*Customer, error) {
	if err := validate(c); err != nil {
		return nil, err
	}

	c.ID = uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO customers
			(id, owner_id, name, email, phone, address, lat, lng, company, tax_number, category, status, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.OwnerID, c.Name, c.Email, c.Phone, c.Address,
		c.Location.Lat, c.Location.Lng, c.Company, c.TaxNumber,
		c.Category, c.Status, c.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("inserting customer: %w", err)
	}

	return r.GetByID(ctx, c.OwnerID, c.ID)
}

// GetByID returns a customer owned by ownerID.
func (r *Repository) GetByID(ctx context.Context, ownerID, id string) (*Customer, error) {
	query := fmt.Sprintf("SELECT %s FROM customers WHERE id = ? AND owner_id = ?", selectColumns)
	c, err := scanCustomer(r.db.QueryRowContext(ctx, query, id, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying customer %s: %w", id, err)
	}
	return c, nil
}

// ListOptions controls filtering and pagination for List.
type ListOptions struct {
	Search   string
	Category Category // empty = all
	Status   Status   // empty = all
	Page     int      // 1-based; defaults to 1
	Limit    int      // defaults to 20
}

// List returns the owner's customers sorted by name, plus the total count
// before pagination.
func (r *Repository) List(ctx context.Context, ownerID string, opts ListOptions) ([]*Customer, int, error) {
	conditions := []string{"owner_id = ?"}
	args := []interface{}{ownerID}

	if opts.Search != "" {
		like := "%" + opts.Search + "%"
		conditions = append(conditions,
			"(name LIKE ? OR email LIKE ? OR phone LIKE ? OR address LIKE ? OR company LIKE ?)")
		args = append(args, like, like, like, like, like)
	}
	if opts.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, string(opts.Category))
	}
	if opts.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(opts.Status))
	}

	where := strings.Join(conditions, " AND ")

	var total int
	countQuery := "SELECT COUNT(*) FROM customers WHERE " + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting customers: %w", err)
	}

	page := opts.Page
	if page < 1 {
		page = 1
	}
	limit := opts.Limit
	if limit < 1 {
		limit = 20
	}

	query := fmt.Sprintf(
		"SELECT %s FROM customers WHERE %s ORDER BY name LIMIT ? OFFSET ?",
		selectColumns, where,
	)
	args = append(args, limit, (page-1)*limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing customers: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var customers []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning customer: %w", err)
		}
		customers = append(customers, c)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterating customers: %w", err)
	}

	return customers, total, nil
}

// Update overwrites a customer's editable fields.
func (r *Repository) Update(ctx context.Context, c *Customer) (*Customer, error) {
	if err := validate(c); err != nil {
		return nil, err
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE customers SET
			name = ?, email = ?, phone = ?, address = ?, lat = ?, lng = ?,
			company = ?, tax_number = ?, category = ?, status = ?, notes = ?,
			updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND owner_id = ?`,
		c.Name, c.Email, c.Phone, c.Address, c.Location.Lat, c.Location.Lng,
		c.Company, c.TaxNumber, c.Category, c.Status, c.Notes,
		c.ID, c.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating customer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, c.OwnerID, c.ID)
}

// Delete removes a customer owned by ownerID.
func (r *Repository) Delete(ctx context.Context, ownerID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM customers WHERE id = ? AND owner_id = ?", id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting customer: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordVisit bumps the visit rollups after a completed visit: last visit
// date, order count, and amount spent.
func (r *Repository) RecordVisit(ctx context.Context, customerID string, at time.Time, orderAmount float64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE customers SET
			last_visit_date = ?,
			total_orders = total_orders + 1,
			total_spent = total_spent + ?,
			updated_at = CURRENT_TIMESTAMP
			WHERE id = ?`,
		at, orderAmount, customerID,
	)
	if err != nil {
		return fmt.Errorf("recording visit for customer %s: %w", customerID, err)
	}
	return nil
}

func validate(c *Customer) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.TrimSpace(c.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	if strings.TrimSpace(c.Address) == "" {
		return fmt.Errorf("address is required")
	}
	if !c.Location.Valid() {
		return fmt.Errorf("location out of range: %v", c.Location)
	}
	if c.Category == "" {
		c.Category = CategoryRetail
	}
	if !c.Category.IsValid() {
		return fmt.Errorf("invalid category: %q", c.Category)
	}
	if c.Status == "" {
		c.Status = StatusActive
	}
	if !c.Status.IsValid() {
		return fmt.Errorf("invalid status: %q", c.Status)
	}
	return nil
}

// scanCustomer scans a customer from a database row.
func scanCustomer(row interface{ Scan(...interface{}) error }) (*Customer, error) {
	var c Customer
	var lastVisit sql.NullTime
	err := row.Scan(
		&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Address,
		&c.Location.Lat, &c.Location.Lng, &c.Company, &c.TaxNumber,
		&c.Category, &c.Status, &c.Notes, &lastVisit,
		&c.TotalOrders, &c.TotalSpent, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastVisit.Valid {
		c.LastVisitDate = &lastVisit.Time
	}
	return &c, nil
}
