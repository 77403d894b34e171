package routing

import (
	"context"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/ports"
	"sync"
)

// MockRoutingProvider returns canned responses in call order and records the
// points it was asked about. Once Responses runs out it echoes the input order
// with DefaultMeters.
type MockRoutingProvider struct {
	mu            sync.Mutex
	Responses     []MockRoute
	DefaultMeters float64
	Calls         [][]domain.Coordinates
}

type MockRoute struct {
	Resp ports.RouteResponse
	Err  error
}

func NewMockRoutingProvider(routes ...MockRoute) *MockRoutingProvider {
	return &MockRoutingProvider{Responses: routes}
}

func (p *MockRoutingProvider) OptimizeRoute(ctx context.Context, points []domain.Coordinates) (ports.RouteResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.Calls = append(p.Calls, append([]domain.Coordinates(nil), points...))

	if len(p.Responses) > 0 {
		r := p.Responses[0]
		p.Responses = p.Responses[1:]
		return r.Resp, r.Err
	}

	order := make([]int, len(points))
	for i := range order {
		order[i] = i
	}
	return ports.RouteResponse{
		DistanceMeters: p.DefaultMeters,
		PointsOrder:    order,
		Path:           append([]domain.Coordinates(nil), points...),
	}, nil
}

func (p *MockRoutingProvider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.Calls)
}
