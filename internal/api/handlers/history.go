package handlers

import (
	"lot-dispatch-service/internal/api/dto"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/ports"
	"lot-dispatch-service/internal/services"
	"net/http"
	"time"
)

// HistoryHandler serves past dispatches and their daily/monthly aggregates.
type HistoryHandler struct {
	Repo     ports.HistoryRepository
	Location *time.Location
}

func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	recs, err := h.Repo.ListRecords(r.Context())
	if err != nil {
		obs.Logger(r.Context()).Error().Err(err).Msg("list history failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListHistoryResponse{Records: make([]dto.HistoryRecordResponse, 0, len(recs))}
	for _, rec := range recs {
		res.Records = append(res.Records, dto.HistoryRecordResponse{
			ID:            rec.ID,
			CreatedAt:     rec.CreatedAt,
			RequestedLots: rec.RequestedLots,
			LotsA:         rec.LotsA,
			LotsB:         rec.LotsB,
			KmA:           rec.KmA,
			KmB:           rec.KmB,
			KmTotal:       rec.KmTotal,
		})
	}

	writeJSON(w, r, http.StatusOK, res)
}

func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	recs, err := h.Repo.ListRecords(r.Context())
	if err != nil {
		obs.Logger(r.Context()).Error().Err(err).Msg("list history failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	loc := h.Location
	if loc == nil {
		loc = time.UTC
	}
	daily, monthly := services.SummarizeHistory(recs, loc)

	res := dto.HistoryStatsResponse{
		Timezone: loc.String(),
		Daily:    make([]dto.PeriodStatsResponse, 0, len(daily)),
		Monthly:  make([]dto.PeriodStatsResponse, 0, len(monthly)),
	}
	for _, s := range daily {
		res.Daily = append(res.Daily, dto.PeriodStatsResponse(s))
	}
	for _, s := range monthly {
		res.Monthly = append(res.Monthly, dto.PeriodStatsResponse(s))
	}

	writeJSON(w, r, http.StatusOK, res)
}
