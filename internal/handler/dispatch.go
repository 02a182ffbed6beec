package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// DispatchHandler handles HTTP requests for order consolidation and route
// evaluation.
type DispatchHandler struct {
	consolidationService *service.ConsolidationService
	routeService         *service.RouteService
}

// NewDispatchHandler creates a new DispatchHandler.
func NewDispatchHandler(consolidationService *service.ConsolidationService, routeService *service.RouteService) *DispatchHandler {
	return &DispatchHandler{
		consolidationService: consolidationService,
		routeService:         routeService,
	}
}

// ConsolidateRequest is the HTTP request body for a consolidation pass.
type ConsolidateRequest struct {
	DepartAt string `json:"depart_at,omitempty"` // RFC 3339; defaults to now.
}

// ConsolidateResponse is the HTTP response for a consolidation pass.
type ConsolidateResponse struct {
	Trips            []TripResponse  `json:"trips"`
	UnassignedOrders []OrderResponse `json:"unassigned_orders"`
	EfficiencyScore  float64         `json:"efficiency_score"`
	CostSavings      float64         `json:"cost_savings_vnd"`
	Recommendations  []string        `json:"recommendations"`
}

// Consolidate handles POST /v1/dispatch/consolidate
func (h *DispatchHandler) Consolidate(c *gin.Context) {
	var req ConsolidateRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	departAt := time.Now()
	if req.DepartAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.DepartAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "depart_at must be RFC 3339"})
			return
		}
		departAt = parsed
	}

	result, err := h.consolidationService.ConsolidatePending(c.Request.Context(), departAt)
	if err != nil {
		respondError(c, err)
		return
	}

	response := ConsolidateResponse{
		Trips:            make([]TripResponse, 0, len(result.Trips)),
		UnassignedOrders: make([]OrderResponse, 0, len(result.UnassignedOrders)),
		EfficiencyScore:  result.EfficiencyScore,
		CostSavings:      result.CostSavings,
		Recommendations:  result.Recommendations,
	}
	for _, trip := range result.Trips {
		response.Trips = append(response.Trips, tripResponse(trip))
	}
	for _, order := range result.UnassignedOrders {
		response.UnassignedOrders = append(response.UnassignedOrders, orderResponse(order))
	}

	respondJSON(c, http.StatusOK, response)
}

// CalculateRouteRequest is the HTTP request body for route evaluation.
type CalculateRouteRequest struct {
	OriginLat      float64 `json:"origin_lat"`
	OriginLng      float64 `json:"origin_lng"`
	DestinationLat float64 `json:"destination_lat"`
	DestinationLng float64 `json:"destination_lng"`
	DepartAt       string  `json:"depart_at,omitempty"` // RFC 3339; defaults to now.
	WeightKg       float64 `json:"weight_kg"`
}

// CalculateRouteResponse is the HTTP response for route evaluation.
type CalculateRouteResponse struct {
	DistanceKm       float64             `json:"distance_km"`
	DurationMinutes  float64             `json:"duration_minutes"`
	Approximate      bool                `json:"approximate"`
	FuelLiters       float64             `json:"fuel_liters"`
	FuelCost         float64             `json:"fuel_cost_vnd"`
	TollCost         float64             `json:"toll_cost_vnd"`
	TotalCost        float64             `json:"total_cost_vnd"`
	CO2Kg            float64             `json:"co2_kg"`
	Blocked          bool                `json:"blocked"`
	Violations       []ViolationResponse `json:"violations"`
	Warnings         []string            `json:"warnings"`
	AlternativeTimes []string            `json:"alternative_times,omitempty"`
	TrafficLevel     string              `json:"traffic_level"`
	TrafficFactor    float64             `json:"traffic_factor"`
	AdjustedMinutes  float64             `json:"adjusted_duration_minutes"`
}

// ViolationResponse is the HTTP representation of a restriction violation.
type ViolationResponse struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	City        string `json:"city"`
	Zone        string `json:"zone,omitempty"`
	Description string `json:"description"`
	SuggestedAt string `json:"suggested_at,omitempty"`
}

func violationResponses(violations []domain.Violation) []ViolationResponse {
	out := make([]ViolationResponse, 0, len(violations))
	for _, v := range violations {
		resp := ViolationResponse{
			Type:        string(v.Type),
			Severity:    string(v.Severity),
			City:        v.City,
			Zone:        v.Zone,
			Description: v.Description,
		}
		if !v.SuggestedAt.IsZero() {
			resp.SuggestedAt = v.SuggestedAt.Format(time.RFC3339)
		}
		out = append(out, resp)
	}
	return out
}

// CalculateRoute handles POST /v1/dispatch/routes
func (h *DispatchHandler) CalculateRoute(c *gin.Context) {
	var req CalculateRouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	departAt := time.Now()
	if req.DepartAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.DepartAt)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "depart_at must be RFC 3339"})
			return
		}
		departAt = parsed
	}

	result, err := h.routeService.CalculateRoute(c.Request.Context(), service.RouteRequest{
		Origin:      domain.Location{Lat: req.OriginLat, Lng: req.OriginLng},
		Destination: domain.Location{Lat: req.DestinationLat, Lng: req.DestinationLng},
		DepartAt:    departAt,
		WeightKg:    req.WeightKg,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	response := CalculateRouteResponse{
		DistanceKm:      result.DistanceKm,
		DurationMinutes: result.Duration.Minutes(),
		Approximate:     result.Approximate,
		FuelLiters:      result.Cost.FuelLiters,
		FuelCost:        result.Cost.FuelCost,
		TollCost:        result.Cost.TollCost,
		TotalCost:       result.Cost.TotalCost,
		CO2Kg:           result.Cost.CO2Kg,
		Blocked:         result.Restrictions.Blocked(),
		Violations:      violationResponses(result.Restrictions.Violations),
		Warnings:        result.Restrictions.Warnings,
		TrafficLevel:    result.Traffic.Level,
		TrafficFactor:   result.Traffic.Factor,
		AdjustedMinutes: result.Traffic.AdjustedDuration.Minutes(),
	}
	for _, t := range result.Restrictions.AlternativeTimes {
		response.AlternativeTimes = append(response.AlternativeTimes, t.Format(time.RFC3339))
	}

	respondJSON(c, http.StatusOK, response)
}
