package geo

import (
	"math"
	"testing"
)

func TestDistanceReflexive(t *testing.T) {
	points := []Coordinate{
		{Lat: 0, Lng: 0},
		{Lat: 41.0082, Lng: 28.9784},
		{Lat: -33.8688, Lng: 151.2093},
		{Lat: 90, Lng: 0},
	}
	for _, p := range points {
		if d := DistanceMeters(p, p); d != 0 {
			t.Errorf("DistanceMeters(%v, %v) = %v, want 0", p, p, d)
		}
	}
}

func TestDistanceSymmetric(t *testing.T) {
	a := Coordinate{Lat: 41.0082, Lng: 28.9784}
	b := Coordinate{Lat: 39.9334, Lng: 32.8597}

	ab := DistanceMeters(a, b)
	ba := DistanceMeters(b, a)
	if ab != ba {
		t.Errorf("DistanceMeters(a,b) = %v, DistanceMeters(b,a) = %v", ab, ba)
	}
	if ab <= 0 {
		t.Errorf("distance between distinct points = %v, want > 0", ab)
	}
}

func TestDistanceKnownValues(t *testing.T) {
	// One degree of latitude along a meridian is R * pi/180 meters.
	wantDegree := EarthRadiusMeters * math.Pi / 180

	tests := []struct {
		name string
		a, b Coordinate
		want float64
	}{
		{"one degree latitude at equator", Coordinate{0, 0}, Coordinate{1, 0}, wantDegree},
		{"one degree latitude at istanbul", Coordinate{41, 29}, Coordinate{42, 29}, wantDegree},
		{"one degree longitude at equator", Coordinate{0, 0}, Coordinate{0, 1}, wantDegree},
	}
	for _, tt := range tests {
		got := DistanceMeters(tt.a, tt.b)
		if math.Abs(got-tt.want) > 0.01 {
			t.Errorf("%s: got %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestDistanceNaNPropagates(t *testing.T) {
	a := Coordinate{Lat: math.NaN(), Lng: 0}
	b := Coordinate{Lat: 0, Lng: 0}
	if d := DistanceMeters(a, b); !math.IsNaN(d) {
		t.Errorf("DistanceMeters with NaN input = %v, want NaN", d)
	}
}

func TestCoordinateValid(t *testing.T) {
	tests := []struct {
		c    Coordinate
		want bool
	}{
		{Coordinate{0, 0}, true},
		{Coordinate{41.0082, 28.9784}, true},
		{Coordinate{90, 180}, true},
		{Coordinate{-90, -180}, true},
		{Coordinate{90.0001, 0}, false},
		{Coordinate{-90.0001, 0}, false},
		{Coordinate{0, 180.0001}, false},
		{Coordinate{0, -180.0001}, false},
		{Coordinate{math.NaN(), 0}, false},
		{Coordinate{0, math.NaN()}, false},
	}
	for _, tt := range tests {
		if got := tt.c.Valid(); got != tt.want {
			t.Errorf("Coordinate%v.Valid() = %v, want %v", tt.c, got, tt.want)
		}
	}
}
