package visit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// SQLiteStore is the durable Store backed by the shared sqlite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a visit store on an open database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const visitColumns = `id, owner_id, customer_id, customer_name, customer_address, customer_phone,
	target_lat, target_lng, planned_date, actual_date, status, notes,
	confirmed, confirmed_at, signature, total_order_amount, created_at, updated_at`

// Create inserts a visit and its order lines, if any.
func (s *SQLiteStore) Create(ctx context.Context, v *Visit) (*Visit, error) {
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if v.Status == "" {
		v.Status = StatusPlanned
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO visits
			(id, owner_id, customer_id, customer_name, customer_address, customer_phone,
			target_lat, target_lng, planned_date, status, notes, total_order_amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.OwnerID, nullString(v.Customer.ID), v.Customer.Name, v.Customer.Address,
		v.Customer.Phone, v.Target.Lat, v.Target.Lng, v.PlannedDate,
		v.Status, v.Notes, TotalOf(v.Orders),
	)
	if err != nil {
		return nil, fmt.Errorf("inserting visit: %w", err)
	}

	if err := insertOrders(ctx, tx, v.ID, v.Orders); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing visit: %w", err)
	}

	return s.GetByID(ctx, v.ID)
}

// GetByID returns a visit with its order lines. Ownership is the caller's
// concern; the store returns whatever matches the id.
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (*Visit, error) {
	query := fmt.Sprintf("SELECT %s FROM visits WHERE id = ?", visitColumns)
	v, err := scanVisit(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying visit %s: %w", id, err)
	}

	v.Orders, err = s.loadOrders(ctx, id)
	if err != nil {
		return nil, err
	}
	return v, nil
}

// List returns the owner's visits sorted by planned date.
func (s *SQLiteStore) List(ctx context.Context, ownerID string, opts ListOptions) ([]*Visit, error) {
	query := fmt.Sprintf("SELECT %s FROM visits WHERE owner_id = ?", visitColumns)
	args := []interface{}{ownerID}

	if opts.From != nil {
		query += " AND planned_date >= ?"
		args = append(args, *opts.From)
	}
	if opts.To != nil {
		query += " AND planned_date < ?"
		args = append(args, *opts.To)
	}
	if opts.Status != "" {
		query += " AND status = ?"
		args = append(args, string(opts.Status))
	}
	query += " ORDER BY planned_date, created_at"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing visits: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning visit: %w", err)
		}
		visits = append(visits, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating visits: %w", err)
	}

	for _, v := range visits {
		if v.Orders, err = s.loadOrders(ctx, v.ID); err != nil {
			return nil, err
		}
	}
	return visits, nil
}

// Update overwrites a visit's editable planning fields. Status is not
// touched here; transitions go through CompareAndSwapStatus.
func (s *SQLiteStore) Update(ctx context.Context, v *Visit) (*Visit, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE visits SET
			customer_name = ?, customer_address = ?, customer_phone = ?,
			planned_date = ?, notes = ?, updated_at = CURRENT_TIMESTAMP
			WHERE id = ? AND owner_id = ?`,
		v.Customer.Name, v.Customer.Address, v.Customer.Phone,
		v.PlannedDate, v.Notes, v.ID, v.OwnerID,
	)
	if err != nil {
		return nil, fmt.Errorf("updating visit: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		return nil, ErrNotFound
	}
	return s.GetByID(ctx, v.ID)
}

// Delete removes a visit owned by ownerID. Order lines cascade.
func (s *SQLiteStore) Delete(ctx context.Context, ownerID, id string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM visits WHERE id = ? AND owner_id = ?", id, ownerID,
	)
	if err != nil {
		return fmt.Errorf("deleting visit: %w", err)
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

// CompareAndSwapStatus applies the patch only if the stored status still
// equals expected. The status check and the write happen in one UPDATE, so
// two racing transitions cannot both win.
func (s *SQLiteStore) CompareAndSwapStatus(ctx context.Context, id string, expected Status, patch Patch) (*Visit, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	set := "status = ?, updated_at = CURRENT_TIMESTAMP"
	args := []interface{}{string(patch.Status)}

	if patch.ActualDate != nil {
		set += ", actual_date = ?"
		args = append(args, *patch.ActualDate)
	}
	if patch.Notes != nil {
		set += ", notes = ?"
		args = append(args, *patch.Notes)
	}
	if patch.TotalOrderAmount != nil {
		set += ", total_order_amount = ?"
		args = append(args, *patch.TotalOrderAmount)
	}
	if patch.Confirmation != nil {
		set += ", confirmed = ?, confirmed_at = ?, signature = ?"
		args = append(args, patch.Confirmation.Confirmed, patch.Confirmation.ConfirmedAt, patch.Confirmation.Signature)
	}
	args = append(args, id, string(expected))

	res, err := tx.ExecContext(ctx,
		fmt.Sprintf("UPDATE visits SET %s WHERE id = ? AND status = ?", set), args...,
	)
	if err != nil {
		return nil, fmt.Errorf("updating visit status: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("checking rows affected: %w", err)
	}
	if rows == 0 {
		// Either the visit is gone or someone else moved it first.
		var exists int
		if err := tx.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM visits WHERE id = ?", id,
		).Scan(&exists); err != nil {
			return nil, fmt.Errorf("checking visit existence: %w", err)
		}
		if exists == 0 {
			return nil, ErrNotFound
		}
		return nil, ErrConflict
	}

	if patch.Orders != nil {
		if _, err := tx.ExecContext(ctx, "DELETE FROM visit_orders WHERE visit_id = ?", id); err != nil {
			return nil, fmt.Errorf("clearing order lines: %w", err)
		}
		if err := insertOrders(ctx, tx, id, patch.Orders); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing status change: %w", err)
	}
	return s.GetByID(ctx, id)
}

func (s *SQLiteStore) loadOrders(ctx context.Context, visitID string) ([]OrderLine, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT product_name, quantity, unit_price, total_price
			FROM visit_orders WHERE visit_id = ? ORDER BY position`,
		visitID,
	)
	if err != nil {
		return nil, fmt.Errorf("loading order lines: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = fmt.Errorf("closing rows: %w", closeErr)
		}
	}()

	var lines []OrderLine
	for rows.Next() {
		var l OrderLine
		if err := rows.Scan(&l.ProductName, &l.Quantity, &l.UnitPrice, &l.TotalPrice); err != nil {
			return nil, fmt.Errorf("scanning order line: %w", err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating order lines: %w", err)
	}
	return lines, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func insertOrders(ctx context.Context, tx execer, visitID string, lines []OrderLine) error {
	for i, l := range lines {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO visit_orders (visit_id, position, product_name, quantity, unit_price, total_price)
				VALUES (?, ?, ?, ?, ?, ?)`,
			visitID, i, l.ProductName, l.Quantity, l.UnitPrice,
			float64(l.Quantity)*l.UnitPrice,
		)
		if err != nil {
			return fmt.Errorf("inserting order line %d: %w", i, err)
		}
	}
	return nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanVisit scans a visit row without its order lines.
func scanVisit(row interface{ Scan(...interface{}) error }) (*Visit, error) {
	var v Visit
	var customerID sql.NullString
	var actualDate, confirmedAt sql.NullTime
	err := row.Scan(
		&v.ID, &v.OwnerID, &customerID, &v.Customer.Name, &v.Customer.Address,
		&v.Customer.Phone, &v.Target.Lat, &v.Target.Lng, &v.PlannedDate,
		&actualDate, &v.Status, &v.Notes, &v.Confirmation.Confirmed,
		&confirmedAt, &v.Confirmation.Signature, &v.TotalOrderAmount,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	v.Customer.ID = customerID.String
	if actualDate.Valid {
		v.ActualDate = &actualDate.Time
	}
	if confirmedAt.Valid {
		v.Confirmation.ConfirmedAt = &confirmedAt.Time
	}
	return &v, nil
}
