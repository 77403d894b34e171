package domain

import (
	"math"
	"testing"
	"time"
)

func TestCentroid(t *testing.T) {
	if _, ok := Centroid(nil); ok {
		t.Fatal("centroid of no points must report false")
	}

	c, ok := Centroid([]Coordinates{{Lon: 0, Lat: 0}, {Lon: 2, Lat: 4}, {Lon: 4, Lat: 2}})
	if !ok {
		t.Fatal("expected centroid")
	}
	if c.Lon != 2 || c.Lat != 2 {
		t.Fatalf("centroid = %+v, want {2 2}", c)
	}
}

func TestCoordinatesValid(t *testing.T) {
	cases := []struct {
		c    Coordinates
		want bool
	}{
		{Coordinates{Lon: -64.2, Lat: -23.2}, true},
		{Coordinates{Lon: 180, Lat: -90}, true},
		{Coordinates{Lon: 181, Lat: 0}, false},
		{Coordinates{Lon: 0, Lat: 91}, false},
		{Coordinates{Lon: math.NaN(), Lat: 0}, false},
		{Coordinates{Lon: 0, Lat: math.Inf(1)}, false},
	}
	for _, tc := range cases {
		if got := tc.c.Valid(); got != tc.want {
			t.Fatalf("Valid(%+v) = %v, want %v", tc.c, got, tc.want)
		}
	}
}

func TestEuclidean(t *testing.T) {
	d := Coordinates{Lon: 0, Lat: 0}.Euclidean(Coordinates{Lon: 3, Lat: 4})
	if d != 5 {
		t.Fatalf("distance = %v, want 5", d)
	}
}

func TestNewHistoryRecordSkipsFailedRoutes(t *testing.T) {
	plan := &DispatchPlan{
		CreatedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		RequestedLots: []string{"A", "B", "C"},
		Routes: [FleetSize]RouteResult{
			{AssignedLots: []string{"A"}, Tour: Tour{Order: []string{"A"}, DistanceKm: 4.5}},
			{AssignedLots: []string{"B", "C"}, Failure: &RouteFailure{Kind: FailureUnreachable}},
		},
	}

	rec := NewHistoryRecord("h1", plan)
	if rec.ID != "h1" || !rec.CreatedAt.Equal(plan.CreatedAt) {
		t.Fatalf("unexpected identity: %+v", rec)
	}
	if len(rec.LotsA) != 1 || len(rec.LotsB) != 0 {
		t.Fatalf("lots A=%v B=%v, want [A] and none", rec.LotsA, rec.LotsB)
	}
	if rec.KmA != 4.5 || rec.KmB != 0 || rec.KmTotal != 4.5 {
		t.Fatalf("km = %v/%v/%v, want 4.5/0/4.5", rec.KmA, rec.KmB, rec.KmTotal)
	}
	if plan.TotalDistanceKm() != 4.5 {
		t.Fatalf("plan total = %v, want 4.5", plan.TotalDistanceKm())
	}
}
