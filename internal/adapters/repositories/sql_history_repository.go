package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/platform/db"
	"strings"
	"time"
)

// SQL-backed implementation of the HistoryRepository port.
// Lot lists are stored as comma-joined text; lot ids never contain commas.
type SQLHistoryRepository struct {
	DB     *sql.DB
	Driver string
}

func NewSQLHistoryRepository(conn *sql.DB, driver string) *SQLHistoryRepository {
	return &SQLHistoryRepository{DB: conn, Driver: driver}
}

func (s *SQLHistoryRepository) AppendRecord(ctx context.Context, rec domain.HistoryRecord) error {
	if s.DB == nil {
		return errors.New("sql history repository: DB is nil")
	}
	if rec.ID == "" {
		return errors.New("append history: record id must not be empty")
	}

	query := db.Rebind(s.Driver, `
	INSERT INTO dispatch_history (
		id, created_at, requested_lots, lots_a, lots_b, km_a, km_b, km_total
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?);
	`)

	_, err := s.DB.ExecContext(ctx, query,
		rec.ID,
		rec.CreatedAt.UTC().UnixMilli(),
		joinLots(rec.RequestedLots),
		joinLots(rec.LotsA),
		joinLots(rec.LotsB),
		rec.KmA,
		rec.KmB,
		rec.KmTotal,
	)
	if err != nil {
		return fmt.Errorf("append history id=%q: %w", rec.ID, err)
	}

	return nil
}

func (s *SQLHistoryRepository) ListRecords(ctx context.Context) ([]domain.HistoryRecord, error) {
	if s.DB == nil {
		return nil, errors.New("sql history repository: DB is nil")
	}

	query := `
	SELECT id, created_at, requested_lots, lots_a, lots_b, km_a, km_b, km_total
	FROM dispatch_history
	ORDER BY created_at, id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list history: query dispatch_history table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.HistoryRecord, 0, 64)
	for rows.Next() {
		var rec domain.HistoryRecord
		var createdAt int64
		var requested, lotsA, lotsB string
		if err := rows.Scan(&rec.ID, &createdAt, &requested, &lotsA, &lotsB, &rec.KmA, &rec.KmB, &rec.KmTotal); err != nil {
			return nil, fmt.Errorf("list history: scan row: %w", err)
		}
		rec.CreatedAt = time.UnixMilli(createdAt).UTC()
		rec.RequestedLots = splitLots(requested)
		rec.LotsA = splitLots(lotsA)
		rec.LotsB = splitLots(lotsB)
		out = append(out, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list history: row iteration: %w", err)
	}

	return out, nil
}

func joinLots(ids []string) string { return strings.Join(ids, ",") }

func splitLots(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}
