package domain

import "time"

// FailureKind classifies why a vehicle could not be sequenced.
type FailureKind string

const (
	FailureNoRoute     FailureKind = "no_route"
	FailureUnreachable FailureKind = "unreachable"
	FailureMalformed   FailureKind = "malformed"
)

// RouteFailure is the structured per-vehicle failure indicator.
type RouteFailure struct {
	Kind    FailureKind
	Message string
}

// Represents the visiting order for one vehicle.
// The depot is implicit at both ends and never appears in Order.
// Path is the travelled polyline reported by the routing service, if any.
type Tour struct {
	Order      []string
	DistanceKm float64
	Path       []Coordinates
}

// Represents the outcome for a single vehicle: its cluster and, unless Failure is set, its tour.
type RouteResult struct {
	Vehicle      Vehicle
	AssignedLots []string
	Tour         Tour
	Failure      *RouteFailure
}

// Failed reports whether sequencing failed for this vehicle.
func (r RouteResult) Failed() bool { return r.Failure != nil }

// Represents the result of one dispatch request for both vehicles.
// A DispatchPlan has no identity beyond the request that produced it;
// ID exists only to correlate logs and history rows.
type DispatchPlan struct {
	ID            string
	CreatedAt     time.Time
	Depot         Coordinates
	RequestedLots []string
	Routes        [FleetSize]RouteResult
}

// TotalDistanceKm sums distances of the routes that did not fail.
func (p *DispatchPlan) TotalDistanceKm() float64 {
	total := 0.0
	for _, r := range p.Routes {
		if !r.Failed() {
			total += r.Tour.DistanceKm
		}
	}
	return total
}
