package services

import (
	"context"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/ports"
	"math"
)

// SequenceTour asks the routing provider for the best closed tour depot -> lots -> depot.
//
// The request lists the depot first and last. The provider's index permutation is mapped
// back onto lot identifiers with both depot entries stripped, and its distance is reported
// in kilometres. An empty lot list yields an empty tour without calling the provider.
func SequenceTour(
	ctx context.Context,
	provider ports.RoutingProvider,
	depot domain.Coordinates,
	lots []domain.Lot,
) (_ domain.Tour, err error) {
	if len(lots) == 0 {
		return domain.Tour{Order: []string{}}, nil
	}

	if provider == nil {
		return domain.Tour{}, errors.New("sequence tour: provider must be non-nil")
	}

	defer obs.Time(ctx, "services.SequenceTour")(&err)

	points := make([]domain.Coordinates, 0, len(lots)+2)
	points = append(points, depot)
	for _, l := range lots {
		points = append(points, l.Coords)
	}
	points = append(points, depot)

	resp, err := provider.OptimizeRoute(ctx, points)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("sequence tour: optimize %d lots: %w", len(lots), err)
	}

	order, err := lotOrder(resp.PointsOrder, lots)
	if err != nil {
		return domain.Tour{}, fmt.Errorf("sequence tour: %w", err)
	}

	if math.IsNaN(resp.DistanceMeters) || math.IsInf(resp.DistanceMeters, 0) || resp.DistanceMeters < 0 {
		return domain.Tour{}, fmt.Errorf("sequence tour: %w: distance %v", ports.ErrMalformedResponse, resp.DistanceMeters)
	}

	return domain.Tour{
		Order:      order,
		DistanceKm: MetersToKm(resp.DistanceMeters),
		Path:       resp.Path,
	}, nil
}

// lotOrder strips the depot entries from a points permutation and resolves
// the remaining indices to lot identifiers.
func lotOrder(pointsOrder []int, lots []domain.Lot) ([]string, error) {
	n := len(lots)
	last := n + 1

	if len(pointsOrder) != n+2 {
		return nil, fmt.Errorf("%w: points_order has %d entries, want %d", ports.ErrMalformedResponse, len(pointsOrder), n+2)
	}

	isDepot := func(i int) bool { return i == 0 || i == last }
	if !isDepot(pointsOrder[0]) || !isDepot(pointsOrder[last]) {
		return nil, fmt.Errorf(
			"%w: points_order must start and end at the depot, got %d and %d",
			ports.ErrMalformedResponse, pointsOrder[0], pointsOrder[last],
		)
	}

	seen := make([]bool, n)
	order := make([]string, 0, n)
	for _, idx := range pointsOrder[1:last] {
		if idx < 1 || idx > n {
			return nil, fmt.Errorf("%w: points_order index %d out of range", ports.ErrMalformedResponse, idx)
		}
		if seen[idx-1] {
			return nil, fmt.Errorf("%w: points_order repeats index %d", ports.ErrMalformedResponse, idx)
		}
		seen[idx-1] = true
		order = append(order, lots[idx-1].ID)
	}

	return order, nil
}

// MetersToKm converts meters to kilometres rounded to two decimals.
func MetersToKm(m float64) float64 {
	return math.Round(m/10) / 100
}
