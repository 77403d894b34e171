package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
)

// SQL-backed implementation of the LotRepository port.
type SQLLotRepository struct{ DB *sql.DB }

func NewSQLLotRepository(conn *sql.DB) *SQLLotRepository {
	return &SQLLotRepository{DB: conn}
}

// Return all lots stored in the database.
func (s *SQLLotRepository) ListLots(ctx context.Context) ([]domain.Lot, error) {
	if s.DB == nil {
		return nil, errors.New("sql lot repository: DB is nil")
	}

	query := `
	SELECT
		lot_id,
		lon,
		lat
	FROM lots
	ORDER BY lot_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list lots: query lots table: %w", err)
	}
	defer rows.Close()

	lots := make([]domain.Lot, 0, 128)
	for rows.Next() {
		var id string
		var lon, lat float64
		if err := rows.Scan(&id, &lon, &lat); err != nil {
			return nil, fmt.Errorf("list lots: scan row: %w", err)
		}
		lots = append(lots, domain.Lot{ID: id, Coords: domain.Coordinates{Lon: lon, Lat: lat}})
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list lots: row iteration: %w", err)
	}

	return lots, nil
}
