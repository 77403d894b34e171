package domain

import "time"

// One row of dispatch history, written after a plan that produced at least one route.
type HistoryRecord struct {
	ID            string
	CreatedAt     time.Time
	RequestedLots []string
	LotsA         []string
	LotsB         []string
	KmA           float64
	KmB           float64
	KmTotal       float64
}

// NewHistoryRecord snapshots a plan. Failed routes contribute no lots and zero distance.
func NewHistoryRecord(id string, plan *DispatchPlan) HistoryRecord {
	rec := HistoryRecord{
		ID:            id,
		CreatedAt:     plan.CreatedAt,
		RequestedLots: append([]string(nil), plan.RequestedLots...),
	}

	a, b := plan.Routes[0], plan.Routes[1]
	if !a.Failed() {
		rec.LotsA = append([]string(nil), a.AssignedLots...)
		rec.KmA = a.Tour.DistanceKm
	}
	if !b.Failed() {
		rec.LotsB = append([]string(nil), b.AssignedLots...)
		rec.KmB = b.Tour.DistanceKm
	}
	rec.KmTotal = rec.KmA + rec.KmB

	return rec
}

// Aggregated history for one day or month.
type PeriodStats struct {
	Period       string
	Operations   int
	LotsAssigned int
	TotalKm      float64
}
