package handlers

import (
	"lot-dispatch-service/internal/api/dto"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/services"
	"net/http"
	"strings"
)

// LotHandler exposes the reference lot table.
type LotHandler struct {
	Catalog *services.LotCatalog
}

func (h *LotHandler) List(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	lots, err := h.Catalog.All(r.Context())
	if err != nil {
		obs.Logger(r.Context()).Error().Err(err).Msg("list lots failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	res := dto.ListLotsResponse{Lots: make([]dto.LotResponse, 0, len(lots))}
	for _, l := range lots {
		res.Lots = append(res.Lots, dto.LotResponse{ID: l.ID, Lon: l.Coords.Lon, Lat: l.Coords.Lat})
	}

	writeJSON(w, r, http.StatusOK, res)
}

// Get returns one lot by id; ids are matched case-insensitively.
func (h *LotHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	id := strings.ToUpper(strings.TrimSpace(r.PathValue("id")))
	l, ok, err := h.Catalog.Lookup(r.Context(), id)
	if err != nil {
		obs.Logger(r.Context()).Error().Err(err).Str("lot", id).Msg("lookup lot failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if !ok {
		writeError(w, r, http.StatusNotFound, "unknown lot "+id)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.LotResponse{ID: l.ID, Lon: l.Coords.Lon, Lat: l.Coords.Lat})
}

// Refresh drops the cached lot table; the next request reloads it from the repository.
func (h *LotHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	h.Catalog.Invalidate()
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "invalidated"})
}
