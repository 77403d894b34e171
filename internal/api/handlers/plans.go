package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"lot-dispatch-service/internal/api/dto"
	"lot-dispatch-service/internal/domain"
	"lot-dispatch-service/internal/platform/obs"
	"lot-dispatch-service/internal/ports"
	"lot-dispatch-service/internal/services"
	"net/http"
	"strings"
)

type PlanHandler struct {
	Resolver services.LotResolver
	Provider ports.RoutingProvider
	Depot    domain.Coordinates
	Vehicles [domain.FleetSize]domain.Vehicle
	History  []ports.HistoryRepository
}

// Plan normalizes the requested lot codes, drops unknown ones and dispatches the rest.
// Unknown codes are reported back alongside the plan.
func (h *PlanHandler) Plan(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.PlanRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	ctx := r.Context()
	logger := obs.Logger(ctx)

	input := req.Lots
	if len(req.LotIDs) > 0 {
		input = strings.Join(append([]string{req.Lots}, req.LotIDs...), ",")
	}
	codes, _ := services.ParseLotCodes(input, nil)
	if len(codes) == 0 {
		writeError(w, r, http.StatusBadRequest, "at least one lot is required")
		return
	}

	lots, unknown, err := h.Resolver.Resolve(ctx, codes)
	if err != nil {
		logger.Error().Err(err).Msg("resolve lots failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}
	if len(lots) == 0 {
		writeJSON(w, r, http.StatusBadRequest, dto.PlanErrorResponse{
			Error:       "no valid lots",
			UnknownLots: unknown,
		})
		return
	}
	if len(unknown) > 0 {
		logger.Info().Strs("unknown", unknown).Msg("ignoring unknown lots")
	}

	plan, err := services.PlanDispatch(ctx, services.PlanDispatchRequest{
		LotIDs:   domain.LotIDs(lots),
		Depot:    h.Depot,
		Vehicles: h.Vehicles,
		Parallel: req.Parallel,
	}, h.Resolver, h.Provider)

	switch {
	case errors.Is(err, services.ErrAllRoutesFailed) && plan != nil:
		logger.Error().Err(err).Msg("no vehicle could be routed")
		writeJSON(w, r, http.StatusBadGateway, toPlanResponse(plan, unknown))
		return
	case errors.Is(err, services.ErrNoLots), errors.Is(err, services.ErrUnknownLot):
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		logger.Error().Err(err).Msg("plan dispatch failed")
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := services.RecordHistory(ctx, plan, h.History...); err != nil {
		logger.Error().Err(err).Str("plan_id", plan.ID).Msg("history write failed")
	}

	writeJSON(w, r, http.StatusOK, toPlanResponse(plan, unknown))
}

func toPlanResponse(plan *domain.DispatchPlan, unknown []string) dto.PlanResponse {
	if unknown == nil {
		unknown = []string{}
	}

	res := dto.PlanResponse{
		ID:              plan.ID,
		CreatedAt:       plan.CreatedAt,
		Depot:           plan.Depot.CoordsToList(),
		RequestedLots:   plan.RequestedLots,
		UnknownLots:     unknown,
		Routes:          make([]dto.RouteResponse, 0, len(plan.Routes)),
		TotalDistanceKm: plan.TotalDistanceKm(),
	}

	for _, rr := range plan.Routes {
		route := dto.RouteResponse{
			Vehicle:      dto.VehicleResponse{ID: rr.Vehicle.ID, Name: rr.Vehicle.Name},
			AssignedLots: rr.AssignedLots,
			Order:        rr.Tour.Order,
			DistanceKm:   rr.Tour.DistanceKm,
		}
		if route.Order == nil {
			route.Order = []string{}
		}
		for _, c := range rr.Tour.Path {
			route.Path = append(route.Path, c.CoordsToList())
		}
		if rr.Failure != nil {
			route.Failure = &dto.FailureResponse{Kind: string(rr.Failure.Kind), Message: rr.Failure.Message}
		}
		res.Routes = append(res.Routes, route)
	}

	return res
}
