package ports

import (
	"context"
	"lot-dispatch-service/internal/domain"
)

// Port: a boundary for retrieving the lot reference table.
type LotRepository interface {
	// Retrieve every known lot.
	ListLots(ctx context.Context) ([]domain.Lot, error)
}
