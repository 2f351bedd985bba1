package visit

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ecinar/route-tracker/internal/db"
	"github.com/ecinar/route-tracker/internal/geo"
)

func sqliteSetup(t *testing.T) (*SQLiteStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	d, err := db.Open(path)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("close db: %v", err)
		}
	})

	ownerID := insertOwner(t, d)
	return NewSQLiteStore(d), ownerID
}

func insertOwner(t *testing.T, d *sql.DB) string {
	t.Helper()
	const id = "owner-1"
	if _, err := d.Exec(
		"INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)",
		id, "Test User", "owner@example.com", "x",
	); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func storedVisit(ownerID string) *Visit {
	return &Visit{
		OwnerID: ownerID,
		Customer: CustomerRef{
			Name:    "Kadıköy Market",
			Address: "Moda Cd. 15, Kadıköy",
			Phone:   "+90 555 111 2233",
		},
		Target:      geo.Coordinate{Lat: 41.0082, Lng: 28.9784},
		PlannedDate: time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		Status:      StatusPlanned,
	}
}

func TestSQLiteCreateAndGet(t *testing.T) {
	store, ownerID := sqliteSetup(t)
	ctx := context.Background()

	v, err := store.Create(ctx, storedVisit(ownerID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.ID == "" {
		t.Error("expected generated id")
	}
	if v.Status != StatusPlanned {
		t.Errorf("status = %q", v.Status)
	}
	if v.Customer.Name != "Kadıköy Market" {
		t.Errorf("customer = %q", v.Customer.Name)
	}
	if v.Target.Lat != 41.0082 {
		t.Errorf("target lat = %v", v.Target.Lat)
	}
}

func TestSQLiteGetMissing(t *testing.T) {
	store, _ := sqliteSetup(t)

	_, err := store.GetByID(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSQLiteListWindow(t *testing.T) {
	store, ownerID := sqliteSetup(t)
	ctx := context.Background()

	dates := []time.Time{
		time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 2, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 3, 10, 0, 0, 0, time.UTC),
	}
	for _, d := range dates {
		v := storedVisit(ownerID)
		v.PlannedDate = d
		if _, err := store.Create(ctx, v); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	from := time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	visits, err := store.List(ctx, ownerID, ListOptions{From: &from, To: &to})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visits) != 1 {
		t.Fatalf("got %d visits in window, want 1", len(visits))
	}
	if !visits[0].PlannedDate.Equal(dates[1]) {
		t.Errorf("planned = %v", visits[0].PlannedDate)
	}

	all, err := store.List(ctx, ownerID, ListOptions{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("got %d visits, want 3", len(all))
	}
	if !all[0].PlannedDate.Equal(dates[0]) {
		t.Error("expected visits sorted by planned date")
	}
}

func TestSQLiteCASApplies(t *testing.T) {
	store, ownerID := sqliteSetup(t)
	ctx := context.Background()

	v, err := store.Create(ctx, storedVisit(ownerID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	started, err := store.CompareAndSwapStatus(ctx, v.ID, StatusPlanned, Patch{
		Status: StatusInProgress,
	})
	if err != nil {
		t.Fatalf("cas: %v", err)
	}
	if started.Status != StatusInProgress {
		t.Errorf("status = %q", started.Status)
	}
	if started.ActualDate != nil {
		t.Error("patch without actual date must leave it unset")
	}
}

func TestSQLiteCASConflict(t *testing.T) {
	store, ownerID := sqliteSetup(t)
	ctx := context.Background()

	v, err := store.Create(ctx, storedVisit(ownerID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CompareAndSwapStatus(ctx, v.ID, StatusPlanned, Patch{Status: StatusInProgress}); err != nil {
		t.Fatalf("first cas: %v", err)
	}

	_, err = store.CompareAndSwapStatus(ctx, v.ID, StatusPlanned, Patch{Status: StatusInProgress})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("second cas = %v, want ErrConflict", err)
	}

	_, err = store.CompareAndSwapStatus(ctx, "nope", StatusPlanned, Patch{Status: StatusInProgress})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("missing cas = %v, want ErrNotFound", err)
	}
}

func TestSQLiteCASReplacesOrders(t *testing.T) {
	store, ownerID := sqliteSetup(t)
	ctx := context.Background()

	planned := storedVisit(ownerID)
	planned.Orders = []OrderLine{{ProductName: "Eski", Quantity: 1, UnitPrice: 5}}
	v, err := store.Create(ctx, planned)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if v.TotalOrderAmount != 5 {
		t.Fatalf("initial total = %v, want 5", v.TotalOrderAmount)
	}

	if _, err := store.CompareAndSwapStatus(ctx, v.ID, StatusPlanned, Patch{Status: StatusInProgress}); err != nil {
		t.Fatalf("start cas: %v", err)
	}

	now := time.Now().UTC()
	total := 125.0
	done, err := store.CompareAndSwapStatus(ctx, v.ID, StatusInProgress, Patch{
		Status:           StatusCompleted,
		ActualDate:       &now,
		Orders:           []OrderLine{{ProductName: "Çay", Quantity: 2, UnitPrice: 50}, {ProductName: "Şeker", Quantity: 1, UnitPrice: 25}},
		TotalOrderAmount: &total,
		Confirmation:     &Confirmation{Confirmed: true, ConfirmedAt: &now, Signature: "c2ln"},
	})
	if err != nil {
		t.Fatalf("complete cas: %v", err)
	}
	if len(done.Orders) != 2 {
		t.Fatalf("got %d order lines, want 2", len(done.Orders))
	}
	if done.Orders[0].TotalPrice != 100 {
		t.Errorf("line total = %v, want 100", done.Orders[0].TotalPrice)
	}
	if done.TotalOrderAmount != 125 {
		t.Errorf("total = %v, want 125", done.TotalOrderAmount)
	}
	if !done.Confirmation.Confirmed || done.Confirmation.Signature != "c2ln" {
		t.Errorf("confirmation = %+v", done.Confirmation)
	}
}

func TestSQLiteDeleteCascadesOrders(t *testing.T) {
	store, ownerID := sqliteSetup(t)
	ctx := context.Background()

	planned := storedVisit(ownerID)
	planned.Orders = []OrderLine{{ProductName: "Çay", Quantity: 1, UnitPrice: 30}}
	v, err := store.Create(ctx, planned)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := store.Delete(ctx, ownerID, v.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.GetByID(ctx, v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "other", v.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("foreign delete = %v, want ErrNotFound", err)
	}
}
