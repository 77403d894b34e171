package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/platform/db"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/ports"
	"strings"
	"time"
)

// SQLTourCache is a SQL-backed cache for optimized tours.
// It works on both Postgres and SQLite; Driver selects the placeholder style.
type SQLTourCache struct {
	DB     *sql.DB
	Driver string
	// Entries older than TTL are treated as misses. Zero keeps entries forever.
	TTL time.Duration
}

func NewSQLTourCache(conn *sql.DB, driver string, ttl time.Duration) *SQLTourCache {
	return &SQLTourCache{DB: conn, Driver: driver, TTL: ttl}
}

type storedPath struct {
	Order []int       `json:"order"`
	Path  [][]float64 `json:"path"`
}

// Fetch a cached tour by key.
func (s *SQLTourCache) Get(ctx context.Context, key string) (_ ports.RouteResponse, _ bool, err error) {
	defer obs.Time(ctx, "tour.cache.sql.Get")(&err)

	if s.DB == nil {
		return ports.RouteResponse{}, false, errors.New("tour cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return ports.RouteResponse{}, false, errors.New("get tour cache: key must not be empty")
	}

	q := db.Rebind(s.Driver, `
	SELECT distance_meters, payload, created_at
	FROM tour_cache
	WHERE cache_key = ?;
	`)

	var meters float64
	var payload string
	var createdAt int64
	err = s.DB.QueryRowContext(ctx, q, key).Scan(&meters, &payload, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ports.RouteResponse{}, false, nil
	}
	if err != nil {
		return ports.RouteResponse{}, false, fmt.Errorf("get tour cache: query tour_cache table: %w", err)
	}

	if s.TTL > 0 && time.Since(time.Unix(createdAt, 0)) > s.TTL {
		return ports.RouteResponse{}, false, nil
	}

	var sp storedPath
	if err := json.Unmarshal([]byte(payload), &sp); err != nil {
		return ports.RouteResponse{}, false, fmt.Errorf("get tour cache: decode payload: %w", err)
	}

	return toRouteResponse(meters, sp), true, nil
}

// Store or replace a cached tour.
func (s *SQLTourCache) Put(ctx context.Context, key string, resp ports.RouteResponse) error {
	if s.DB == nil {
		return errors.New("tour cache: db is nil")
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("insert tour cache: key must not be empty")
	}

	payload, err := json.Marshal(fromRouteResponse(resp))
	if err != nil {
		return fmt.Errorf("insert tour cache: encode payload: %w", err)
	}

	q := db.Rebind(s.Driver, `
	INSERT INTO tour_cache (cache_key, distance_meters, payload, created_at)
	VALUES (?, ?, ?, ?)
	ON CONFLICT (cache_key) DO UPDATE
	SET distance_meters = EXCLUDED.distance_meters,
		payload = EXCLUDED.payload,
		created_at = EXCLUDED.created_at;
	`)

	if _, err := s.DB.ExecContext(ctx, q, key, resp.DistanceMeters, string(payload), time.Now().Unix()); err != nil {
		return fmt.Errorf("insert tour cache key=%q: %w", key, err)
	}

	return nil
}

func fromRouteResponse(resp ports.RouteResponse) storedPath {
	path := make([][]float64, 0, len(resp.Path))
	for _, c := range resp.Path {
		path = append(path, c.CoordsToList())
	}
	return storedPath{Order: resp.PointsOrder, Path: path}
}

func toRouteResponse(meters float64, sp storedPath) ports.RouteResponse {
	path := make([]domain.Coordinates, 0, len(sp.Path))
	for _, c := range sp.Path {
		if len(c) < 2 {
			continue
		}
		path = append(path, domain.Coordinates{Lon: c[0], Lat: c[1]})
	}
	return ports.RouteResponse{
		DistanceMeters: meters,
		PointsOrder:    sp.Order,
		Path:           path,
	}
}
