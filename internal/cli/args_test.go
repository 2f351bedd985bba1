package cli

import (
	"testing"
)

func TestParseOrderSpecs(t *testing.T) {
	orders, err := parseOrderSpecs([]string{"Çay:2:50", "Şeker:1:25.5"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}
	if orders[0].ProductName != "Çay" || orders[0].Quantity != 2 || orders[0].UnitPrice != 50 {
		t.Errorf("first = %+v", orders[0])
	}
	if orders[1].UnitPrice != 25.5 {
		t.Errorf("second price = %v", orders[1].UnitPrice)
	}
}

func TestParseOrderSpecsColonInName(t *testing.T) {
	orders, err := parseOrderSpecs([]string{"Kahve: Filtre:3:80"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if orders[0].ProductName != "Kahve: Filtre" {
		t.Errorf("product = %q", orders[0].ProductName)
	}
	if orders[0].Quantity != 3 || orders[0].UnitPrice != 80 {
		t.Errorf("line = %+v", orders[0])
	}
}

func TestParseOrderSpecsInvalid(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{"too few fields", "Çay:2"},
		{"empty product", ":2:50"},
		{"zero quantity", "Çay:0:50"},
		{"negative quantity", "Çay:-1:50"},
		{"bad quantity", "Çay:iki:50"},
		{"negative price", "Çay:2:-5"},
		{"bad price", "Çay:2:elli"},
	}
	for _, tt := range tests {
		if _, err := parseOrderSpecs([]string{tt.spec}); err == nil {
			t.Errorf("%s: expected error for %q", tt.name, tt.spec)
		}
	}
}

func TestParseOrderSpecsEmpty(t *testing.T) {
	orders, err := parseOrderSpecs(nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if orders != nil {
		t.Errorf("orders = %v, want nil", orders)
	}
}
