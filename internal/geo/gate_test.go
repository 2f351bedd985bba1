package geo

import (
	"math"
	"testing"
)

// offsetNorth returns a coordinate the given number of meters due north of c.
// For a pure latitude offset the haversine distance is exact.
func offsetNorth(c Coordinate, meters float64) Coordinate {
	return Coordinate{
		Lat: c.Lat + meters/(EarthRadiusMeters*math.Pi/180),
		Lng: c.Lng,
	}
}

func TestGateBoundary(t *testing.T) {
	target := Coordinate{Lat: 41.0082, Lng: 28.9784}
	gate := NewGate(500)

	tests := []struct {
		name    string
		current Coordinate
		nearby  bool
	}{
		{"at target", target, true},
		{"well inside", offsetNorth(target, 100), true},
		{"exactly on threshold", offsetNorth(target, 500), true},
		{"just outside", offsetNorth(target, 500.001), false},
		{"far outside", offsetNorth(target, 5000), false},
	}
	for _, tt := range tests {
		d, nearby := gate.Evaluate(tt.current, target)
		if nearby != tt.nearby {
			t.Errorf("%s: nearby = %v (distance %v), want %v", tt.name, nearby, d, tt.nearby)
		}
		if got := gate.IsNearby(tt.current, target); got != tt.nearby {
			t.Errorf("%s: IsNearby = %v, want %v", tt.name, got, tt.nearby)
		}
	}
}

func TestGateEvaluateReportsDistance(t *testing.T) {
	target := Coordinate{Lat: 41.0082, Lng: 28.9784}
	current := offsetNorth(target, 501)

	d, nearby := NewGate(500).Evaluate(current, target)
	if nearby {
		t.Error("501 m away reported as nearby with a 500 m threshold")
	}
	if math.Abs(d-501) > 0.001 {
		t.Errorf("distance = %v, want 501 within floating rounding", d)
	}
}

func TestGateDistanceMatchesCalculator(t *testing.T) {
	a := Coordinate{Lat: 41.0082, Lng: 28.9784}
	b := Coordinate{Lat: 41.04, Lng: 29.0}

	d, _ := NewGate(500).Evaluate(a, b)
	if want := DistanceMeters(a, b); d != want {
		t.Errorf("gate distance = %v, DistanceMeters = %v", d, want)
	}
}

func TestNewGateDefault(t *testing.T) {
	if g := NewGate(0); g.ThresholdMeters != DefaultThresholdMeters {
		t.Errorf("NewGate(0).ThresholdMeters = %v, want %v", g.ThresholdMeters, DefaultThresholdMeters)
	}
	if g := NewGate(-10); g.ThresholdMeters != DefaultThresholdMeters {
		t.Errorf("NewGate(-10).ThresholdMeters = %v, want %v", g.ThresholdMeters, DefaultThresholdMeters)
	}
	if g := NewGate(250); g.ThresholdMeters != 250 {
		t.Errorf("NewGate(250).ThresholdMeters = %v, want 250", g.ThresholdMeters)
	}
}
