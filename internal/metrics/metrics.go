package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the service
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path"},
	)

	// RoutingRequests counts calls to the road-routing service by outcome
	RoutingRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "routing_requests_total", Help: "Road-routing service calls by outcome."},
		[]string{"provider", "outcome"},
	)
	RoutingLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "routing_request_duration_seconds", Help: "Road-routing service latency in seconds.", Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30}},
		[]string{"provider"},
	)
	TourCacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "tour_cache_lookups_total", Help: "Tour cache lookups by result."},
		[]string{"result"},
	)

	// RouteSequencing counts per-vehicle sequencing outcomes (ok, no_route, unreachable, malformed)
	RouteSequencing = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "route_sequencing_total", Help: "Per-vehicle sequencing outcomes."},
		[]string{"outcome"},
	)
)

var regOnce sync.Once

// RegisterDefault registers collectors on Registry. Safe to call more than once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(RoutingRequests)
		Registry.MustRegister(RoutingLatency)
		Registry.MustRegister(TourCacheLookups)
		Registry.MustRegister(RouteSequencing)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
