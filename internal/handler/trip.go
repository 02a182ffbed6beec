package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	tripService *service.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(tripService *service.TripService) *TripHandler {
	return &TripHandler{tripService: tripService}
}

// SegmentResponse is the HTTP representation of one route leg.
type SegmentResponse struct {
	Seq             int     `json:"seq"`
	FromLat         float64 `json:"from_lat"`
	FromLng         float64 `json:"from_lng"`
	ToLat           float64 `json:"to_lat"`
	ToLng           float64 `json:"to_lng"`
	ToType          string  `json:"to_type"`
	DistanceKm      float64 `json:"distance_km"`
	DurationMinutes float64 `json:"duration_minutes"`
	FuelCost        float64 `json:"fuel_cost_vnd"`
	TollCost        float64 `json:"toll_cost_vnd"`
}

// TripResponse is the HTTP representation of a trip.
type TripResponse struct {
	ID              string              `json:"id"`
	VehicleID       string              `json:"vehicle_id"`
	OrderIDs        []string            `json:"order_ids"`
	Segments        []SegmentResponse   `json:"segments"`
	TotalDistanceKm float64             `json:"total_distance_km"`
	TotalFuelLiters float64             `json:"total_fuel_liters"`
	TotalFuelCost   float64             `json:"total_fuel_cost_vnd"`
	TotalTollCost   float64             `json:"total_toll_cost_vnd"`
	TotalCost       float64             `json:"total_cost_vnd"`
	CO2Kg           float64             `json:"co2_kg"`
	Violations      []ViolationResponse `json:"violations"`
	Warnings        []string            `json:"warnings"`
	Blocked         bool                `json:"blocked"`
	Status          string              `json:"status"`
	EfficiencyScore float64             `json:"efficiency_score"`
	PlannedDepartAt string              `json:"planned_depart_at"`
	CompletedAt     string              `json:"completed_at,omitempty"`
}

func tripResponse(t *domain.Trip) TripResponse {
	segments := make([]SegmentResponse, 0, len(t.Segments))
	for _, seg := range t.Segments {
		segments = append(segments, SegmentResponse{
			Seq:             seg.Seq,
			FromLat:         seg.From.Lat,
			FromLng:         seg.From.Lng,
			ToLat:           seg.To.Lat,
			ToLng:           seg.To.Lng,
			ToType:          string(seg.To.Type),
			DistanceKm:      seg.DistanceKm,
			DurationMinutes: seg.Duration.Minutes(),
			FuelCost:        seg.FuelCost,
			TollCost:        seg.TollCost,
		})
	}

	response := TripResponse{
		ID:              t.ID,
		VehicleID:       t.VehicleID,
		OrderIDs:        t.OrderIDs,
		Segments:        segments,
		TotalDistanceKm: t.TotalDistanceKm,
		TotalFuelLiters: t.TotalFuelLiters,
		TotalFuelCost:   t.TotalFuelCost,
		TotalTollCost:   t.TotalTollCost,
		TotalCost:       t.TotalCost,
		CO2Kg:           t.CO2Kg,
		Violations:      violationResponses(t.Violations),
		Warnings:        t.Warnings,
		Blocked:         t.HasBlockingViolation(),
		Status:          string(t.Status),
		EfficiencyScore: t.EfficiencyScore,
		PlannedDepartAt: t.PlannedDepartAt.Format(time.RFC3339),
	}
	if !t.CompletedAt.IsZero() {
		response.CompletedAt = t.CompletedAt.Format(time.RFC3339)
	}
	return response
}

// GetTrip handles GET /v1/trips/:id
func (h *TripHandler) GetTrip(c *gin.Context) {
	trip, err := h.tripService.GetTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// GetAll handles GET /v1/trips
func (h *TripHandler) GetAll(c *gin.Context) {
	trips, err := h.tripService.GetAllTrips(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]TripResponse, 0, len(trips))
	for _, t := range trips {
		response = append(response, tripResponse(t))
	}
	respondJSON(c, http.StatusOK, response)
}

// StartTrip handles POST /v1/trips/:id/start
func (h *TripHandler) StartTrip(c *gin.Context) {
	trip, err := h.tripService.StartTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripResponse(trip))
}

// CompleteTrip handles POST /v1/trips/:id/complete
func (h *TripHandler) CompleteTrip(c *gin.Context) {
	trip, err := h.tripService.CompleteTrip(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, tripResponse(trip))
}
