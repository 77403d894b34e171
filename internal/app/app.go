// Package app builds the concrete adapters shared by the server and the CLI.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/adapters/cache"
	"lot-dispatch-service/internal/adapters/repositories"
	"lot-dispatch-service/internal/adapters/routing"
	"lot-dispatch-service/internal/config"
	"lot-dispatch-service/internal/platform/db"
	"lot-dispatch-service/internal/ports"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	ProviderGraphHopper = "graphhopper"
	ProviderLocal       = "local"
)

// Settings is the environment-derived configuration.
type Settings struct {
	Port            string
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	DBDriver        string
	DBPath          string
	DatabaseURL     string
	FleetPath       string
	LotsSeedPath    string
	GraphHopperKey  string
	RoutingProvider string
	RedisURL        string
	TourCacheTTL    time.Duration
	HistoryXLSXPath string
	HistoryTZ       string
	LogLevel        string
	LogFormat       string
}

// LoadSettings reads Settings from the environment. Call godotenv.Load first if needed.
func LoadSettings() Settings {
	return Settings{
		Port:            config.Get("PORT", "8080"),
		WriteTimeout:    time.Duration(config.GetInt("HTTP_WRITE_TIMEOUT_SECONDS", 120)) * time.Second,
		ShutdownTimeout: time.Duration(config.GetInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		DBDriver:        config.Get("DB_DRIVER", db.DriverSQLite),
		DBPath:          config.Get("DB_PATH", "data/app.db"),
		DatabaseURL:     config.Get("DATABASE_URL", ""),
		FleetPath:       config.Get("FLEET_PATH", "config/fleet.yaml"),
		LotsSeedPath:    config.Get("LOTS_SEED_PATH", "data/seeds/lots.json"),
		GraphHopperKey:  config.Get("GRAPHHOPPER_API_KEY", ""),
		RoutingProvider: strings.ToLower(config.Get("ROUTING_PROVIDER", "")),
		RedisURL:        config.Get("REDIS_URL", ""),
		TourCacheTTL:    config.GetDuration("TOUR_CACHE_TTL", 24*time.Hour),
		HistoryXLSXPath: config.Get("HISTORY_XLSX_PATH", ""),
		HistoryTZ:       config.Get("HISTORY_TZ", "America/Argentina/Buenos_Aires"),
		LogLevel:        config.Get("LOG_LEVEL", "info"),
		LogFormat:       config.Get("LOG_FORMAT", "console"),
	}
}

// DSN returns the data source name for the configured driver.
func (s Settings) DSN() (string, error) {
	switch s.DBDriver {
	case db.DriverSQLite:
		return s.DBPath, nil
	case db.DriverPostgres:
		if strings.TrimSpace(s.DatabaseURL) == "" {
			return "", errors.New("DATABASE_URL is required when DB_DRIVER=pgx")
		}
		return s.DatabaseURL, nil
	default:
		return "", fmt.Errorf("unsupported DB_DRIVER %q", s.DBDriver)
	}
}

// Location loads HistoryTZ, falling back to UTC.
func (s Settings) Location() *time.Location {
	loc, err := time.LoadLocation(s.HistoryTZ)
	if err != nil {
		log.Warn().Str("tz", s.HistoryTZ).Err(err).Msg("unknown history timezone, using UTC")
		return time.UTC
	}
	return loc
}

// OpenStore opens the database and makes sure the schema exists.
func OpenStore(ctx context.Context, s Settings) (*sql.DB, error) {
	dsn, err := s.DSN()
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	conn, err := db.Open(s.DBDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	if err := repositories.InitSchema(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open store: %w", err)
	}

	return conn, nil
}

// SeedIfEmpty loads the lot table from the seed file when the lots table is empty.
func SeedIfEmpty(ctx context.Context, conn *sql.DB, s Settings) error {
	var n int
	if err := conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM lots`).Scan(&n); err != nil {
		return fmt.Errorf("seed if empty: count lots: %w", err)
	}
	if n > 0 {
		return nil
	}

	written, err := repositories.SeedLotsFromJSON(ctx, conn, s.DBDriver, s.LotsSeedPath)
	if err != nil {
		return fmt.Errorf("seed if empty: %w", err)
	}
	log.Info().Int("lots", written).Str("path", s.LotsSeedPath).Msg("lot table seeded")
	return nil
}

// TourCache picks Redis when REDIS_URL is set and the SQL table otherwise.
// The returned close function is never nil.
func TourCache(ctx context.Context, conn *sql.DB, s Settings) (ports.TourCache, func() error, error) {
	if s.RedisURL != "" {
		c, err := cache.NewRedisTourCache(ctx, s.RedisURL, s.TourCacheTTL)
		if err != nil {
			return nil, func() error { return nil }, err
		}
		return c, c.Close, nil
	}
	return cache.NewSQLTourCache(conn, s.DBDriver, s.TourCacheTTL), func() error { return nil }, nil
}

// RoutingProvider builds the configured provider. Without an explicit choice,
// GraphHopper is used when an API key is present and the offline heuristic otherwise.
func RoutingProvider(s Settings, fleet config.Fleet, tours ports.TourCache) (ports.RoutingProvider, error) {
	choice := s.RoutingProvider
	if choice == "" {
		choice = ProviderLocal
		if s.GraphHopperKey != "" {
			choice = ProviderGraphHopper
		}
	}

	switch choice {
	case ProviderGraphHopper:
		return routing.NewGraphHopperProvider(routing.GraphHopperOptions{
			APIKey:      s.GraphHopperKey,
			BaseURL:     fleet.Routing.BaseURL,
			Profile:     fleet.Routing.Profile,
			Locale:      fleet.Routing.Locale,
			Timeout:     fleet.Routing.Timeout,
			MinInterval: fleet.Routing.MinInterval,
			Cache:       tours,
		})
	case ProviderLocal:
		log.Warn().Msg("using offline routing heuristic; distances are straight-line estimates")
		return routing.NewLocalProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported ROUTING_PROVIDER %q", s.RoutingProvider)
	}
}

// HistorySinks returns the primary SQL history store and every repository to write to.
func HistorySinks(conn *sql.DB, s Settings) (ports.HistoryRepository, []ports.HistoryRepository) {
	primary := repositories.NewSQLHistoryRepository(conn, s.DBDriver)
	sinks := []ports.HistoryRepository{primary}
	if s.HistoryXLSXPath != "" {
		sinks = append(sinks, repositories.NewXLSXHistoryRepository(s.HistoryXLSXPath, s.Location()))
	}
	return primary, sinks
}
