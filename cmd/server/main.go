package main

import (
	"context"
	"errors"
	"lot-dispatch-service/internal/adapters/repositories"
	"lot-dispatch-service/internal/api"
	"lot-dispatch-service/internal/app"
	"lot-dispatch-service/internal/config"
	"lot-dispatch-service/internal/metrics"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (SQL store, routing provider, caches) behind ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	settings := app.LoadSettings()
	obs.Configure(settings.LogLevel, settings.LogFormat, os.Stderr)
	if envErr != nil {
		log.Info().Msg("No .env file found (using environment variables)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fleet, err := config.LoadFleet(settings.FleetPath)
	if err != nil {
		log.Fatal().Err(err).Msg("fleet config")
	}

	conn, err := app.OpenStore(ctx, settings)
	if err != nil {
		log.Fatal().Err(err).Msg("database")
	}
	defer conn.Close()

	// Seed the reference lot table on first start.
	if err := app.SeedIfEmpty(ctx, conn, settings); err != nil {
		log.Fatal().Err(err).Msg("seed lots")
	}

	tours, closeTours, err := app.TourCache(ctx, conn, settings)
	if err != nil {
		log.Fatal().Err(err).Msg("tour cache")
	}
	defer closeTours()

	provider, err := app.RoutingProvider(settings, fleet, tours)
	if err != nil {
		log.Fatal().Err(err).Msg("routing provider")
	}

	history, sinks := app.HistorySinks(conn, settings)
	metrics.RegisterDefault()

	router := api.NewRouter(api.Deps{
		Catalog:      services.NewLotCatalog(repositories.NewSQLLotRepository(conn)),
		Provider:     provider,
		Depot:        fleet.DepotCoords(),
		Vehicles:     fleet.FleetVehicles(),
		History:      history,
		HistorySinks: sinks,
		Location:     settings.Location(),
	})

	// Write timeout covers two paced routing calls with retries.
	srv := &http.Server{
		Addr:              ":" + settings.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      settings.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), settings.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("addr", srv.Addr).Msg("Server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server")
	}
}
