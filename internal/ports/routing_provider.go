package ports

import (
	"context"
	"errors"
	"lot-dispatch-service/internal/domain"
)

var (
	// The service answered but found no route through the given points.
	ErrRouteNotFound = errors.New("route not found")
	// The service could not be reached or kept failing after retries.
	ErrRoutingUnavailable = errors.New("routing service unavailable")
	// The service answered with a payload that cannot be interpreted.
	ErrMalformedResponse = errors.New("malformed routing response")
)

// Optimized closed path over an ordered list of points.
// PointsOrder is a permutation of input indices, including both depot positions.
type RouteResponse struct {
	DistanceMeters float64
	PointsOrder    []int
	Path           []domain.Coordinates
}

// Contract for a road-routing service able to reorder points to minimize travel.
type RoutingProvider interface {
	// Return the optimized visiting order and path distance for points.
	// The first and last points are kept fixed by the service.
	OptimizeRoute(ctx context.Context, points []domain.Coordinates) (RouteResponse, error)
}
