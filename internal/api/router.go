package api

import (
	"lot-dispatch-service/internal/api/handlers"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/metrics"
	"lot-dispatch-service/internal/ports"
	"lot-dispatch-service/internal/services"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps carries what the HTTP layer needs; handlers stay unaware of concrete adapters.
type Deps struct {
	Catalog  *services.LotCatalog
	Provider ports.RoutingProvider
	Depot    domain.Coordinates
	Vehicles [domain.FleetSize]domain.Vehicle
	// History is read from; every repository in HistorySinks is written to.
	History      ports.HistoryRepository
	HistorySinks []ports.HistoryRepository
	Location     *time.Location
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root.
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	sinks := d.HistorySinks
	if len(sinks) == 0 && d.History != nil {
		sinks = []ports.HistoryRepository{d.History}
	}

	lotHandler := &handlers.LotHandler{Catalog: d.Catalog}
	planHandler := &handlers.PlanHandler{
		Resolver: d.Catalog,
		Provider: d.Provider,
		Depot:    d.Depot,
		Vehicles: d.Vehicles,
		History:  sinks,
	}
	historyHandler := &handlers.HistoryHandler{Repo: d.History, Location: d.Location}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/lots", lotHandler.List)
	mux.HandleFunc("/lots/refresh", lotHandler.Refresh)
	mux.HandleFunc("/lots/{id}", lotHandler.Get)
	mux.HandleFunc("/plans", planHandler.Plan)
	mux.HandleFunc("/history", historyHandler.List)
	mux.HandleFunc("/history/stats", historyHandler.Stats)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}
