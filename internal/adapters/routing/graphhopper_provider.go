package routing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/metrics"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/ports"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const providerGraphHopper = "graphhopper"

// GraphHopperProvider implements RoutingProvider using the GraphHopper Routing API
// with optimize=true, which reorders intermediate points while keeping both ends fixed.
//
// It coordinates:
//   - Request pacing (one call per MinInterval)
//   - Optional tour caching keyed by the exact point list
//   - External API calls with retry/backoff, each attempt paced
//
// The provider is safe for concurrent use.
type GraphHopperProvider struct {
	session      *http.Client
	apiKey       string
	baseURL      string
	profile      string
	locale       string
	limiter      *rate.Limiter
	cache        ports.TourCache
	retryBackoff time.Duration
}

type GraphHopperOptions struct {
	APIKey  string
	BaseURL string
	Profile string
	Locale  string
	Timeout time.Duration
	// Minimum spacing between requests; zero disables pacing.
	MinInterval time.Duration
	Cache       ports.TourCache
	HTTPClient  *http.Client
}

func NewGraphHopperProvider(opts GraphHopperOptions) (*GraphHopperProvider, error) {
	if strings.TrimSpace(opts.APIKey) == "" {
		return nil, errors.New("GraphHopper api key is empty")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://graphhopper.com/api/1"
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("GraphHopper base url %q: %w", baseURL, err)
	}

	profile := opts.Profile
	if profile == "" {
		profile = "car"
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	session := opts.HTTPClient
	if session == nil {
		session = &http.Client{Timeout: timeout}
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &GraphHopperProvider{
		session:      session,
		apiKey:       opts.APIKey,
		baseURL:      baseURL,
		profile:      profile,
		locale:       opts.Locale,
		limiter:      rate.NewLimiter(limit, 1),
		cache:        opts.Cache,
		retryBackoff: 200 * time.Millisecond,
	}, nil
}

type routeRequest struct {
	Points        [][]float64 `json:"points"`
	Profile       string      `json:"profile"`
	Locale        string      `json:"locale,omitempty"`
	Instructions  bool        `json:"instructions"`
	PointsEncoded bool        `json:"points_encoded"`
	Optimize      string      `json:"optimize"`
}

type routeResponse struct {
	Paths []struct {
		Distance    float64 `json:"distance"`
		Time        int64   `json:"time"`
		PointsOrder []int   `json:"points_order"`
		Points      struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"points"`
	} `json:"paths"`
	Message string `json:"message"`
}

// OptimizeRoute asks GraphHopper for the shortest closed path over points.
func (g *GraphHopperProvider) OptimizeRoute(
	ctx context.Context,
	points []domain.Coordinates,
) (_ ports.RouteResponse, err error) {
	defer obs.Time(ctx, "graphhopper.OptimizeRoute")(&err)

	if len(points) < 2 {
		return ports.RouteResponse{}, errors.New("graphhopper route: at least two points are required")
	}

	key := TourCacheKey(g.profile, points)

	// Check the tour cache before spending rate-limited API calls.
	if g.cache != nil {
		cached, ok, err := g.cache.Get(ctx, key)
		if err != nil {
			obs.Logger(ctx).Warn().Err(err).Msg("tour cache read failed")
		} else if ok {
			metrics.TourCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		}
		metrics.TourCacheLookups.WithLabelValues("miss").Inc()
	}

	resp, err := g.fetchRoute(ctx, points)
	if err != nil {
		metrics.RoutingRequests.WithLabelValues(providerGraphHopper, outcomeOf(err)).Inc()
		return ports.RouteResponse{}, err
	}
	metrics.RoutingRequests.WithLabelValues(providerGraphHopper, "ok").Inc()

	if g.cache != nil {
		if err := g.cache.Put(ctx, key, resp); err != nil {
			obs.Logger(ctx).Warn().Err(err).Msg("tour cache write failed")
		}
	}

	return resp, nil
}

func (g *GraphHopperProvider) fetchRoute(ctx context.Context, points []domain.Coordinates) (ports.RouteResponse, error) {
	endpoint := g.baseURL + "/route"

	list := make([][]float64, 0, len(points))
	for _, p := range points {
		list = append(list, p.CoordsToList())
	}

	payload, err := json.Marshal(routeRequest{
		Points:        list,
		Profile:       g.profile,
		Locale:        g.locale,
		Instructions:  false,
		PointsEncoded: false,
		Optimize:      "true",
	})
	if err != nil {
		return ports.RouteResponse{}, fmt.Errorf("graphhopper route: marshal request: %w", err)
	}

	q := url.Values{}
	q.Set("key", g.apiKey)
	// Points off the road network (field lots) fail under contraction hierarchies.
	q.Set("ch.disable", "true")

	resp, err := g.post(ctx, endpoint+"?"+q.Encode(), payload)
	if err != nil {
		return ports.RouteResponse{}, classify(err)
	}
	defer resp.Body.Close()

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.RouteResponse{}, fmt.Errorf("graphhopper route: %w: decode: %w", ports.ErrMalformedResponse, err)
	}

	if len(decoded.Paths) == 0 {
		return ports.RouteResponse{}, fmt.Errorf("graphhopper route: %w: empty paths %s", ports.ErrRouteNotFound, decoded.Message)
	}

	path := decoded.Paths[0]
	if len(path.PointsOrder) == 0 {
		return ports.RouteResponse{}, fmt.Errorf("graphhopper route: %w: missing points_order", ports.ErrMalformedResponse)
	}

	coords := make([]domain.Coordinates, 0, len(path.Points.Coordinates))
	for _, c := range path.Points.Coordinates {
		if len(c) < 2 {
			return ports.RouteResponse{}, fmt.Errorf("graphhopper route: %w: invalid path coordinate", ports.ErrMalformedResponse)
		}
		coords = append(coords, domain.Coordinates{Lon: c[0], Lat: c[1]})
	}

	return ports.RouteResponse{
		DistanceMeters: path.Distance,
		PointsOrder:    path.PointsOrder,
		Path:           coords,
	}, nil
}

// classify wraps transport errors with the matching port sentinel.
func classify(err error) error {
	var ae *apiError
	switch {
	case errors.Is(err, ports.ErrRoutingUnavailable):
		return fmt.Errorf("graphhopper route: %w", err)
	case errors.As(err, &ae) && ae.noRoute():
		return fmt.Errorf("graphhopper route: %w: %w", ports.ErrRouteNotFound, err)
	default:
		return fmt.Errorf("graphhopper route: %w: %w", ports.ErrRoutingUnavailable, err)
	}
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, ports.ErrRouteNotFound):
		return "no_route"
	case errors.Is(err, ports.ErrMalformedResponse):
		return "malformed"
	default:
		return "unreachable"
	}
}
