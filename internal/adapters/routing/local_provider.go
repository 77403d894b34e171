package routing

import (
	"context"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/metrics"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/ports"
	"math"
	"time"
)

const providerLocal = "local"

// LocalProvider orders points offline using great-circle distances.
//
// A greedy nearest-neighbor pass from the first point builds the initial order,
// then 2-opt moves shorten it. Both endpoints stay fixed, matching the remote
// optimizer's contract. Distances ignore the road network, so results are
// only a fallback for when no API key is configured.
type LocalProvider struct {
	// Max 2-opt sweeps; each sweep stops early when nothing improves.
	Iterations int
}

func NewLocalProvider() *LocalProvider {
	return &LocalProvider{Iterations: 50}
}

func (p *LocalProvider) OptimizeRoute(
	ctx context.Context,
	points []domain.Coordinates,
) (_ ports.RouteResponse, err error) {
	defer obs.Time(ctx, "local.OptimizeRoute")(&err)

	start := time.Now()
	defer func() {
		metrics.RoutingLatency.WithLabelValues(providerLocal).Observe(time.Since(start).Seconds())
		outcome := "ok"
		if err != nil {
			outcome = outcomeOf(err)
		}
		metrics.RoutingRequests.WithLabelValues(providerLocal, outcome).Inc()
	}()

	if err := ctx.Err(); err != nil {
		return ports.RouteResponse{}, fmt.Errorf("local route: %w: %w", ports.ErrRoutingUnavailable, err)
	}
	if len(points) < 2 {
		return ports.RouteResponse{}, errors.New("local route: at least two points are required")
	}
	for i, pt := range points {
		if !pt.Valid() {
			return ports.RouteResponse{}, fmt.Errorf("local route: %w: point %d out of range", ports.ErrRouteNotFound, i)
		}
	}

	order := nearestNeighborOrder(points)
	order = improveOrder2Opt(points, order, p.Iterations)

	path := make([]domain.Coordinates, 0, len(order))
	for _, idx := range order {
		path = append(path, points[idx])
	}

	return ports.RouteResponse{
		DistanceMeters: pathDistance(points, order),
		PointsOrder:    order,
		Path:           path,
	}, nil
}

// nearestNeighborOrder visits intermediate points greedily from points[0]
// and finishes at the last point.
func nearestNeighborOrder(points []domain.Coordinates) []int {
	last := len(points) - 1

	remaining := make(map[int]struct{}, last)
	for i := 1; i < last; i++ {
		remaining[i] = struct{}{}
	}

	order := make([]int, 0, len(points))
	order = append(order, 0)
	current := 0

	for len(remaining) > 0 {
		best := -1
		minDist := math.MaxFloat64

		for idx := range remaining {
			d := haversineMeters(points[current], points[idx])
			// Tie-breaker keeps the order deterministic despite map iteration.
			if d < minDist || (d == minDist && idx < best) {
				minDist = d
				best = idx
			}
		}

		order = append(order, best)
		delete(remaining, best)
		current = best
	}

	return append(order, last)
}

// improveOrder2Opt reverses interior segments while that shortens the path.
// order[0] and order[len-1] never move.
func improveOrder2Opt(points []domain.Coordinates, order []int, iterations int) []int {
	if iterations <= 0 {
		iterations = 1
	}
	best := append([]int(nil), order...)
	bestDist := pathDistance(points, best)
	n := len(order)

	for it := 0; it < iterations; it++ {
		improved := false
		for i := 1; i < n-2; i++ {
			for k := i + 1; k < n-1; k++ {
				candidate := twoOptSwap(best, i, k)
				d := pathDistance(points, candidate)
				if d+1e-3 < bestDist {
					best = candidate
					bestDist = d
					improved = true
				}
			}
		}
		if !improved {
			break
		}
	}
	return best
}

func twoOptSwap(ord []int, i, k int) []int {
	out := make([]int, len(ord))
	copy(out, ord[:i])
	pos := i
	for j := k; j >= i; j-- {
		out[pos] = ord[j]
		pos++
	}
	copy(out[pos:], ord[k+1:])
	return out
}

func pathDistance(points []domain.Coordinates, order []int) float64 {
	total := 0.0
	for i := 0; i < len(order)-1; i++ {
		total += haversineMeters(points[order[i]], points[order[i+1]])
	}
	return total
}

func haversineMeters(a, b domain.Coordinates) float64 {
	const earthRadius = 6371000.0
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}
