package db

import (
	"database/sql"
	"fmt"
)

// migrations is an ordered list of SQL statements to run.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            TEXT    PRIMARY KEY,
		name          TEXT    NOT NULL,
		email         TEXT    NOT NULL UNIQUE,
		password_hash TEXT    NOT NULL,
		role          TEXT    NOT NULL DEFAULT 'sales_person',
		phone         TEXT    NOT NULL DEFAULT '',
		is_active     INTEGER NOT NULL DEFAULT 1,
		created_at    DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS customers (
		id              TEXT    PRIMARY KEY,
		owner_id        TEXT    NOT NULL REFERENCES users(id),
		name            TEXT    NOT NULL,
		email           TEXT    NOT NULL DEFAULT '',
		phone           TEXT    NOT NULL DEFAULT '',
		address         TEXT    NOT NULL,
		lat             REAL    NOT NULL,
		lng             REAL    NOT NULL,
		company         TEXT    NOT NULL DEFAULT '',
		tax_number      TEXT    NOT NULL DEFAULT '',
		category        TEXT    NOT NULL DEFAULT 'retail',
		status          TEXT    NOT NULL DEFAULT 'active',
		notes           TEXT    NOT NULL DEFAULT '',
		last_visit_date DATETIME,
		total_orders    INTEGER NOT NULL DEFAULT 0,
		total_spent     REAL    NOT NULL DEFAULT 0,
		created_at      DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at      DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customers_owner_status ON customers(owner_id, status)`,
	`CREATE TABLE IF NOT EXISTS visits (
		id                 TEXT PRIMARY KEY,
		owner_id           TEXT NOT NULL REFERENCES users(id),
		customer_id        TEXT REFERENCES customers(id),
		customer_name      TEXT NOT NULL,
		customer_address   TEXT NOT NULL,
		customer_phone     TEXT NOT NULL DEFAULT '',
		target_lat         REAL NOT NULL,
		target_lng         REAL NOT NULL,
		planned_date       DATETIME NOT NULL,
		actual_date        DATETIME,
		status             TEXT NOT NULL DEFAULT 'planned',
		notes              TEXT NOT NULL DEFAULT '',
		confirmed          INTEGER NOT NULL DEFAULT 0,
		confirmed_at       DATETIME,
		signature          TEXT NOT NULL DEFAULT '',
		total_order_amount REAL NOT NULL DEFAULT 0,
		created_at         DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at         DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_owner_planned ON visits(owner_id, planned_date)`,
	`CREATE INDEX IF NOT EXISTS idx_visits_status ON visits(status)`,
	`CREATE TABLE IF NOT EXISTS visit_orders (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		visit_id     TEXT    NOT NULL REFERENCES visits(id) ON DELETE CASCADE,
		position     INTEGER NOT NULL,
		product_name TEXT    NOT NULL,
		quantity     INTEGER NOT NULL CHECK (quantity >= 1),
		unit_price   REAL    NOT NULL CHECK (unit_price >= 0),
		total_price  REAL    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_visit_orders_visit ON visit_orders(visit_id)`,
}

// migrate runs all migrations in order.
func migrate(db *sql.DB) error {
	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
