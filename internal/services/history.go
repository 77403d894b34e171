package services

import (
	"context"
	"errors"
	"fmt"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/ports"
	"math"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
)

// RecordHistory appends a history row for plan to every repository.
// All repositories are attempted; their errors are combined.
func RecordHistory(ctx context.Context, plan *domain.DispatchPlan, repos ...ports.HistoryRepository) error {
	if plan == nil {
		return errors.New("record history: plan must be non-nil")
	}

	rec := domain.NewHistoryRecord(uuid.NewString(), plan)

	var errs *multierror.Error
	for _, r := range repos {
		if r == nil {
			continue
		}
		if err := r.AppendRecord(ctx, rec); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("record history: %w", err))
		}
	}

	return errs.ErrorOrNil()
}

// SummarizeHistory aggregates records per local day ("2006-01-02") and per month ("2006-01").
// Both results are sorted by period.
func SummarizeHistory(records []domain.HistoryRecord, loc *time.Location) (daily, monthly []domain.PeriodStats) {
	if loc == nil {
		loc = time.UTC
	}

	days := map[string]*domain.PeriodStats{}
	months := map[string]*domain.PeriodStats{}

	add := func(m map[string]*domain.PeriodStats, key string, rec domain.HistoryRecord) {
		s, ok := m[key]
		if !ok {
			s = &domain.PeriodStats{Period: key}
			m[key] = s
		}
		s.Operations++
		s.LotsAssigned += len(rec.LotsA) + len(rec.LotsB)
		s.TotalKm += rec.KmTotal
	}

	for _, rec := range records {
		if rec.CreatedAt.IsZero() {
			continue
		}
		t := rec.CreatedAt.In(loc)
		add(days, t.Format("2006-01-02"), rec)
		add(months, t.Format("2006-01"), rec)
	}

	return flattenStats(days), flattenStats(months)
}

func flattenStats(m map[string]*domain.PeriodStats) []domain.PeriodStats {
	out := make([]domain.PeriodStats, 0, len(m))
	for _, s := range m {
		s.TotalKm = math.Round(s.TotalKm*100) / 100
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b domain.PeriodStats) int {
		if a.Period < b.Period {
			return -1
		}
		if a.Period > b.Period {
			return 1
		}
		return 0
	})
	return out
}
