package dto

import "time"

type HistoryRecordResponse struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	RequestedLots []string  `json:"requested_lots"`
	LotsA         []string  `json:"lots_a"`
	LotsB         []string  `json:"lots_b"`
	KmA           float64   `json:"km_a"`
	KmB           float64   `json:"km_b"`
	KmTotal       float64   `json:"km_total"`
}

type ListHistoryResponse struct {
	Records []HistoryRecordResponse `json:"records"`
}

type PeriodStatsResponse struct {
	Period       string  `json:"period"`
	Operations   int     `json:"operations"`
	LotsAssigned int     `json:"lots_assigned"`
	TotalKm      float64 `json:"total_km"`
}

type HistoryStatsResponse struct {
	Timezone string                `json:"timezone"`
	Daily    []PeriodStatsResponse `json:"daily"`
	Monthly  []PeriodStatsResponse `json:"monthly"`
}
