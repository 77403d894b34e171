package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/platform/db"
	"os"
	"strings"
)

// Initialize the database schema. The DDL is valid on both Postgres and SQLite.
func InitSchema(ctx context.Context, conn *sql.DB) error {
	if conn == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createLotsQuery := `
	CREATE TABLE IF NOT EXISTS lots (
		lot_id TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	createHistoryQuery := `
	CREATE TABLE IF NOT EXISTS dispatch_history (
		id TEXT PRIMARY KEY,
		created_at BIGINT NOT NULL,
		requested_lots TEXT NOT NULL,
		lots_a TEXT NOT NULL,
		lots_b TEXT NOT NULL,
		km_a DOUBLE PRECISION NOT NULL,
		km_b DOUBLE PRECISION NOT NULL,
		km_total DOUBLE PRECISION NOT NULL
	);
	`

	createTourCacheQuery := `
	CREATE TABLE IF NOT EXISTS tour_cache (
		cache_key TEXT PRIMARY KEY,
		distance_meters DOUBLE PRECISION NOT NULL,
		payload TEXT NOT NULL,
		created_at BIGINT NOT NULL
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_dispatch_history_created_at
	ON dispatch_history(created_at);
	`

	statements := []string{
		createLotsQuery,
		createHistoryQuery,
		createTourCacheQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type LotSeed struct {
	ID  string  `json:"id"`
	Lon float64 `json:"lon"`
	Lat float64 `json:"lat"`
}

// Populate the lots table from a JSON file. Existing lots are updated in place.
// Returns the number of lots written.
func SeedLotsFromJSON(ctx context.Context, conn *sql.DB, driver, jsonPath string) (int, error) {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return 0, fmt.Errorf("seed lots: read %q: %w", jsonPath, err)
	}

	var data []LotSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return 0, fmt.Errorf("seed lots: parse json: %w", err)
	}

	seen := make(map[string]struct{}, len(data))
	rows := make([]LotSeed, 0, len(data))
	for i, item := range data {
		id := strings.ToUpper(strings.TrimSpace(item.ID))
		if id == "" {
			return 0, fmt.Errorf("seed lots: item at index %d: id cannot be empty", i+1)
		}
		if _, dup := seen[id]; dup {
			return 0, fmt.Errorf("seed lots: duplicate id %q at index %d", id, i+1)
		}
		seen[id] = struct{}{}

		if !(domain.Coordinates{Lon: item.Lon, Lat: item.Lat}).Valid() {
			return 0, fmt.Errorf("seed lots: lot %q has invalid coordinates", id)
		}
		rows = append(rows, LotSeed{ID: id, Lon: item.Lon, Lat: item.Lat})
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("seed lots: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := db.Rebind(driver, `
	INSERT INTO lots (lot_id, lon, lat)
	VALUES (?, ?, ?)
	ON CONFLICT (lot_id) DO UPDATE
	SET lon = EXCLUDED.lon,
		lat = EXCLUDED.lat;
	`)
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("seed lots: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, l := range rows {
		if _, err := stmt.ExecContext(ctx, l.ID, l.Lon, l.Lat); err != nil {
			return 0, fmt.Errorf("seed lots: insert lot_id=%q: %w", l.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("seed lots: commit tx: %w", err)
	}

	return len(rows), nil
}
