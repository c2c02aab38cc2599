package geo

import (
	"math"
	"testing"
)

func TestDistanceZeroForSamePoint(t *testing.T) {
	if d := Distance(39.74, -8.80, 39.74, -8.80); d != 0 {
		t.Fatalf("expected 0, got %f", d)
	}
}

func TestDistanceKnownCities(t *testing.T) {
	// Lisbon -> Porto, roughly 274 km great-circle
	d := Distance(38.7223, -9.1393, 41.1579, -8.6291)
	if math.Abs(d-274) > 10 {
		t.Fatalf("expected ~274km, got %f", d)
	}
}

func TestDistanceOrdersNearestFirst(t *testing.T) {
	// From Torres Vedras, Leiria is closer than Porto
	fromLat, fromLng := 39.0917, -9.2589
	leiria := Distance(fromLat, fromLng, 39.7495, -8.8077)
	porto := Distance(fromLat, fromLng, 41.1579, -8.6291)
	if leiria >= porto {
		t.Fatalf("expected Leiria (%f) closer than Porto (%f)", leiria, porto)
	}
}

func TestDistanceSymmetry(t *testing.T) {
	a := Distance(10, 20, 30, 40)
	b := Distance(30, 40, 10, 20)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("distance not symmetric: %f vs %f", a, b)
	}
}
