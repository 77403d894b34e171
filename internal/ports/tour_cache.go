package ports

import "context"

// Cache of routing responses keyed by the exact point list sent to the service.
type TourCache interface {
	Get(ctx context.Context, key string) (RouteResponse, bool, error)
	Put(ctx context.Context, key string, resp RouteResponse) error
}
