package services

import (
	"context"
	"errors"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/ports"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memHistory struct {
	recs []domain.HistoryRecord
	err  error
}

func (m *memHistory) AppendRecord(ctx context.Context, rec domain.HistoryRecord) error {
	if m.err != nil {
		return m.err
	}
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memHistory) ListRecords(ctx context.Context) ([]domain.HistoryRecord, error) {
	return m.recs, m.err
}

func samplePlan() *domain.DispatchPlan {
	return &domain.DispatchPlan{
		ID:            "p1",
		CreatedAt:     time.Date(2025, 3, 2, 2, 30, 0, 0, time.UTC),
		RequestedLots: []string{"A05", "B05", "B06"},
		Routes: [domain.FleetSize]domain.RouteResult{
			{Vehicle: testVehicles[0], AssignedLots: []string{"A05"}, Tour: domain.Tour{Order: []string{"A05"}, DistanceKm: 3}},
			{
				Vehicle:      testVehicles[1],
				AssignedLots: []string{"B05", "B06"},
				Failure:      &domain.RouteFailure{Kind: domain.FailureNoRoute, Message: "x"},
			},
		},
	}
}

func TestRecordHistory_WritesAllRepositories(t *testing.T) {
	ok := &memHistory{}
	broken := &memHistory{err: errors.New("disk full")}
	other := &memHistory{}

	err := RecordHistory(context.Background(), samplePlan(), ok, nil, broken, other)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")

	require.Len(t, ok.recs, 1)
	require.Len(t, other.recs, 1)
	rec := ok.recs[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, ok.recs[0].ID, other.recs[0].ID)
	assert.Equal(t, []string{"A05"}, rec.LotsA)
	assert.Empty(t, rec.LotsB, "failed route contributes no lots")
	assert.Equal(t, 3.0, rec.KmTotal)
}

func TestRecordHistory_NilPlan(t *testing.T) {
	assert.Error(t, RecordHistory(context.Background(), nil, &memHistory{}))
}

func TestSummarizeHistory(t *testing.T) {
	loc, err := time.LoadLocation("America/Argentina/Buenos_Aires")
	require.NoError(t, err)

	recs := []domain.HistoryRecord{
		// 02:30 UTC is still the previous day in Buenos Aires.
		{CreatedAt: time.Date(2025, 3, 2, 2, 30, 0, 0, time.UTC), LotsA: []string{"A"}, LotsB: []string{"B", "C"}, KmTotal: 10.111},
		{CreatedAt: time.Date(2025, 3, 1, 15, 0, 0, 0, time.UTC), LotsA: []string{"A"}, KmTotal: 5.222},
		{CreatedAt: time.Date(2025, 3, 2, 15, 0, 0, 0, time.UTC), LotsB: []string{"D"}, KmTotal: 1},
		{CreatedAt: time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC), LotsA: []string{"E"}, KmTotal: 2},
		{KmTotal: 99},
	}

	daily, monthly := SummarizeHistory(recs, loc)

	assert.Equal(t, []domain.PeriodStats{
		{Period: "2025-03-01", Operations: 2, LotsAssigned: 4, TotalKm: 15.33},
		{Period: "2025-03-02", Operations: 1, LotsAssigned: 1, TotalKm: 1},
		{Period: "2025-04-01", Operations: 1, LotsAssigned: 1, TotalKm: 2},
	}, daily)
	assert.Equal(t, []domain.PeriodStats{
		{Period: "2025-03", Operations: 3, LotsAssigned: 5, TotalKm: 16.33},
		{Period: "2025-04", Operations: 1, LotsAssigned: 1, TotalKm: 2},
	}, monthly)
}

func TestSummarizeHistory_Empty(t *testing.T) {
	daily, monthly := SummarizeHistory(nil, nil)
	assert.Empty(t, daily)
	assert.Empty(t, monthly)
}

var _ ports.HistoryRepository = (*memHistory)(nil)
