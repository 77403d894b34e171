package ports

import (
	"context"
	"lot-dispatch-service/internal/domain"
)

// Port: append-only dispatch history.
type HistoryRepository interface {
	AppendRecord(ctx context.Context, rec domain.HistoryRecord) error
	// Return records ordered by creation time, oldest first.
	ListRecords(ctx context.Context) ([]domain.HistoryRecord, error)
}
