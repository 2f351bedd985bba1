package customer

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

func testSetup(t *testing.T) (*Repository, string) {
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

	ownerID := insertUser(t, d, "owner@example.com")
	return NewRepository(d), ownerID
}

func insertUser(t *testing.T, d *sql.DB, email string) string {
	t.Helper()
	id := "user-" + email
	if _, err := d.Exec(
		"INSERT INTO users (id, name, email, password_hash) VALUES (?, ?, ?, ?)",
		id, "Test User", email, "x",
	); err != nil {
		t.Fatalf("insert user: %v", err)
	}
	return id
}

func sample(ownerID string) *Customer {
	return &Customer{
		OwnerID:  ownerID,
		Name:     "Kadıköy Market",
		Email:    "market@example.com",
		Phone:    "+90 555 111 2233",
		Address:  "Moda Cd. 15, Kadıköy",
		Location: geo.Coordinate{Lat: 40.9819, Lng: 29.0254},
		Category: CategoryRetail,
	}
}

func TestCreateAndGet(t *testing.T) {
	repo, ownerID := testSetup(t)
	ctx := context.Background()

	c, err := repo.Create(ctx, sample(ownerID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c.ID == "" {
		t.Error("expected non-empty ID")
	}
	if c.Status != StatusActive {
		t.Errorf("status = %q, want default active", c.Status)
	}
	if c.Location.Lat != 40.9819 {
		t.Errorf("lat = %v, want 40.9819", c.Location.Lat)
	}

	got, err := repo.GetByID(ctx, ownerID, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Name != "Kadıköy Market" {
		t.Errorf("name = %q", got.Name)
	}
}

func TestGetScopedByOwner(t *testing.T) {
	repo, ownerID := testSetup(t)
	ctx := context.Background()

	c, err := repo.Create(ctx, sample(ownerID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	_, err = repo.GetByID(ctx, "someone-else", c.ID)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound for foreign owner", err)
	}
}

func TestCreateValidation(t *testing.T) {
	repo, ownerID := testSetup(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*Customer)
	}{
		{"missing name", func(c *Customer) { c.Name = "  " }},
		{"missing phone", func(c *Customer) { c.Phone = "" }},
		{"missing address", func(c *Customer) { c.Address = "" }},
		{"latitude out of range", func(c *Customer) { c.Location = geo.Coordinate{Lat: 91, Lng: 29} }},
		{"bad category", func(c *Customer) { c.Category = "vip" }},
		{"bad status", func(c *Customer) { c.Status = "paused" }},
	}
	for _, tt := range tests {
		c := sample(ownerID)
		tt.mutate(c)
		if _, err := repo.Create(ctx, c); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestListFilters(t *testing.T) {
	repo, ownerID := testSetup(t)
	ctx := context.Background()

	a := sample(ownerID)
	a.Name = "Anadolu Gıda"
	a.Category = CategoryWholesale
	if _, err := repo.Create(ctx, a); err != nil {
		t.Fatalf("create a: %v", err)
	}

	b := sample(ownerID)
	b.Name = "Beyoğlu Bakkal"
	b.Status = StatusBlocked
	if _, err := repo.Create(ctx, b); err != nil {
		t.Fatalf("create b: %v", err)
	}

	all, total, err := repo.List(ctx, ownerID, ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(all) != 2 {
		t.Fatalf("got %d/%d customers, want 2/2", len(all), total)
	}
	if all[0].Name != "Anadolu Gıda" {
		t.Errorf("first = %q, want sorted by name", all[0].Name)
	}

	wholesale, _, err := repo.List(ctx, ownerID, ListOptions{Category: CategoryWholesale})
	if err != nil {
		t.Fatalf("list wholesale: %v", err)
	}
	if len(wholesale) != 1 || wholesale[0].Name != "Anadolu Gıda" {
		t.Errorf("category filter returned %d rows", len(wholesale))
	}

	blocked, _, err := repo.List(ctx, ownerID, ListOptions{Status: StatusBlocked})
	if err != nil {
		t.Fatalf("list blocked: %v", err)
	}
	if len(blocked) != 1 || blocked[0].Name != "Beyoğlu Bakkal" {
		t.Errorf("status filter returned %d rows", len(blocked))
	}

	found, _, err := repo.List(ctx, ownerID, ListOptions{Search: "bakkal"})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(found) != 1 || found[0].Name != "Beyoğlu Bakkal" {
		t.Errorf("search returned %d rows", len(found))
	}
}

func TestListPagination(t *testing.T) {
	repo, ownerID := testSetup(t)
	ctx := context.Background()

	names := []string{"A Market", "B Market", "C Market"}
	for _, n := range names {
		c := sample(ownerID)
		c.Name = n
		if _, err := repo.Create(ctx, c); err != nil {
			t.Fatalf("create %s: %v", n, err)
		}
	}

	page1, total, err := repo.List(ctx, ownerID, ListOptions{Page: 1, Limit: 2})
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if total != 3 {
		t.Errorf("total = %d, want 3", total)
	}
	if len(page1) != 2 {
		t.Fatalf("page 1 has %d rows, want 2", len(page1))
	}

	page2, _, err := repo.List(ctx, ownerID, ListOptions{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(page2) != 1 || page2[0].Name != "C Market" {
		t.Errorf("page 2 = %v", page2)
	}
}

func TestUpdate(t *testing.T) {
	repo, ownerID := testSetup(t)
	ctx := context.Background()

	c, err := repo.Create(ctx, sample(ownerID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	c.Name = "Kadıköy Süpermarket"
	c.Status = StatusInactive
	got, err := repo.Update(ctx, c)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Name != "Kadıköy Süpermarket" || got.Status != StatusInactive {
		t.Errorf("update not applied: %+v", got)
	}
}

func TestDelete(t *testing.T) {
	repo, ownerID := testSetup(t)
	ctx := context.Background()

	c, err := repo.Create(ctx, sample(ownerID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := repo.Delete(ctx, ownerID, c.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetByID(ctx, ownerID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("get after delete = %v, want ErrNotFound", err)
	}

	if err := repo.Delete(ctx, ownerID, c.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete = %v, want ErrNotFound", err)
	}
}

func TestRecordVisit(t *testing.T) {
	repo, ownerID := testSetup(t)
	ctx := context.Background()

	c, err := repo.Create(ctx, sample(ownerID))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	at := time.Date(2026, 4, 2, 14, 30, 0, 0, time.UTC)
	if err := repo.RecordVisit(ctx, c.ID, at, 125); err != nil {
		t.Fatalf("record visit: %v", err)
	}
	if err := repo.RecordVisit(ctx, c.ID, at.Add(24*time.Hour), 30); err != nil {
		t.Fatalf("record second visit: %v", err)
	}

	got, err := repo.GetByID(ctx, ownerID, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.TotalOrders != 2 {
		t.Errorf("total_orders = %d, want 2", got.TotalOrders)
	}
	if got.TotalSpent != 155 {
		t.Errorf("total_spent = %v, want 155", got.TotalSpent)
	}
	if got.LastVisitDate == nil {
		t.Fatal("expected last_visit_date to be set")
	}
}
