package dto

import "time"

// PlanRequest accepts either free text ("A05, b10") or an explicit id list.
// Both may be given; ids are merged in that order.
type PlanRequest struct {
	Lots     string   `json:"lots"`
	LotIDs   []string `json:"lot_ids"`
	Parallel bool     `json:"parallel"`
}

type VehicleResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type FailureResponse struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

type RouteResponse struct {
	Vehicle      VehicleResponse  `json:"vehicle"`
	AssignedLots []string         `json:"assigned_lots"`
	Order        []string         `json:"order"`
	DistanceKm   float64          `json:"distance_km"`
	Path         [][]float64      `json:"path,omitempty"`
	Failure      *FailureResponse `json:"failure,omitempty"`
}

type PlanResponse struct {
	ID              string          `json:"id"`
	CreatedAt       time.Time       `json:"created_at"`
	Depot           []float64       `json:"depot"`
	RequestedLots   []string        `json:"requested_lots"`
	UnknownLots     []string        `json:"unknown_lots"`
	Routes          []RouteResponse `json:"routes"`
	TotalDistanceKm float64         `json:"total_distance_km"`
}

type PlanErrorResponse struct {
	Error       string   `json:"error"`
	UnknownLots []string `json:"unknown_lots,omitempty"`
}
