package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// TrackingHandler handles HTTP requests for the real-time tracking engine.
type TrackingHandler struct {
	trackingService *service.TrackingService
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(trackingService *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{trackingService: trackingService}
}

// IngestPointRequest is the HTTP request body for a GPS sample.
type IngestPointRequest struct {
	VehicleID    string  `json:"vehicle_id"`
	Timestamp    string  `json:"timestamp,omitempty"` // RFC 3339; defaults to now.
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	AccuracyM    float64 `json:"accuracy_m,omitempty"`
	Heading      float64 `json:"heading,omitempty"`
	SpeedKmh     float64 `json:"speed_kmh"`
	FuelLevelPct float64 `json:"fuel_level_pct,omitempty"`
	OdometerKm   float64 `json:"odometer_km,omitempty"`
}

// TrackingPointResponse is the HTTP representation of a tracking point.
type TrackingPointResponse struct {
	VehicleID    string  `json:"vehicle_id"`
	Timestamp    string  `json:"timestamp"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	SpeedKmh     float64 `json:"speed_kmh"`
	Movement     string  `json:"movement"`
	FuelLevelPct float64 `json:"fuel_level_pct,omitempty"`
}

// IngestPointResponse is the HTTP response for a point ingestion.
type IngestPointResponse struct {
	Accepted bool            `json:"accepted"`
	Alerts   []AlertResponse `json:"alerts"`
}

func trackingPointResponse(p domain.TrackingPoint) TrackingPointResponse {
	return TrackingPointResponse{
		VehicleID:    p.VehicleID,
		Timestamp:    p.Timestamp.Format(time.RFC3339),
		Lat:          p.Lat,
		Lng:          p.Lng,
		SpeedKmh:     p.SpeedKmh,
		Movement:     string(p.Movement),
		FuelLevelPct: p.FuelLevelPct,
	}
}

// IngestPoint handles POST /v1/tracking/points
func (h *TrackingHandler) IngestPoint(c *gin.Context) {
	var req IngestPointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	point := domain.TrackingPoint{
		VehicleID:    req.VehicleID,
		Lat:          req.Lat,
		Lng:          req.Lng,
		AccuracyM:    req.AccuracyM,
		Heading:      req.Heading,
		SpeedKmh:     req.SpeedKmh,
		FuelLevelPct: req.FuelLevelPct,
		OdometerKm:   req.OdometerKm,
	}
	if req.Timestamp != "" {
		parsed, err := time.Parse(time.RFC3339, req.Timestamp)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "timestamp must be RFC 3339"})
			return
		}
		point.Timestamp = parsed
	}

	alerts, err := h.trackingService.AddTrackingPoint(c.Request.Context(), point)
	if err != nil {
		respondError(c, err)
		return
	}

	response := IngestPointResponse{Accepted: true, Alerts: make([]AlertResponse, 0, len(alerts))}
	for _, a := range alerts {
		response.Alerts = append(response.Alerts, alertResponse(a))
	}
	respondJSON(c, http.StatusCreated, response)
}

// GetActiveVehicles handles GET /v1/tracking/vehicles
func (h *TrackingHandler) GetActiveVehicles(c *gin.Context) {
	active := h.trackingService.GetActiveVehicles()

	response := make([]TrackingPointResponse, 0, len(active))
	for _, p := range active {
		response = append(response, trackingPointResponse(p))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetHistory handles GET /v1/tracking/vehicles/:id/history?limit=..
func (h *TrackingHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	history := h.trackingService.GetVehicleHistory(c.Param("id"), limit)
	response := make([]TrackingPointResponse, 0, len(history))
	for _, p := range history {
		response = append(response, trackingPointResponse(p))
	}
	respondJSON(c, http.StatusOK, response)
}

// VehicleStatisticsResponse is the HTTP representation of tracking
// statistics.
type VehicleStatisticsResponse struct {
	VehicleID       string  `json:"vehicle_id"`
	PointCount      int     `json:"point_count"`
	TotalDistanceKm float64 `json:"total_distance_km"`
	AvgSpeedKmh     float64 `json:"avg_speed_kmh"`
	MaxSpeedKmh     float64 `json:"max_speed_kmh"`
	StoppedCount    int     `json:"stopped_count"`
	FirstSeen       string  `json:"first_seen"`
	LastSeen        string  `json:"last_seen"`
}

// FleetStatisticsResponse is the HTTP representation of fleet-wide
// tracking statistics.
type FleetStatisticsResponse struct {
	VehicleCount         int            `json:"vehicle_count"`
	ActiveVehicles       int            `json:"active_vehicles"`
	AvgSpeedKmh          float64        `json:"avg_speed_kmh"`
	AvgFuelLevelPct      float64        `json:"avg_fuel_level_pct"`
	AlertCount           int            `json:"alert_count"`
	UnacknowledgedAlerts int            `json:"unacknowledged_alerts"`
	AlertsBySeverity     map[string]int `json:"alerts_by_severity"`
}

// GetFleetStatistics handles GET /v1/tracking/stats
func (h *TrackingHandler) GetFleetStatistics(c *gin.Context) {
	stats := h.trackingService.GetFleetStatistics()

	bySeverity := make(map[string]int, len(stats.AlertsBySeverity))
	for severity, count := range stats.AlertsBySeverity {
		bySeverity[string(severity)] = count
	}

	respondJSON(c, http.StatusOK, FleetStatisticsResponse{
		VehicleCount:         stats.VehicleCount,
		ActiveVehicles:       stats.ActiveVehicles,
		AvgSpeedKmh:          stats.AvgSpeedKmh,
		AvgFuelLevelPct:      stats.AvgFuelLevelPct,
		AlertCount:           stats.AlertCount,
		UnacknowledgedAlerts: stats.UnacknowledgedAlerts,
		AlertsBySeverity:     bySeverity,
	})
}

// GetStatistics handles GET /v1/tracking/vehicles/:id/statistics
func (h *TrackingHandler) GetStatistics(c *gin.Context) {
	stats := h.trackingService.GetStatistics(c.Param("id"))
	if stats == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "no tracking data for vehicle"})
		return
	}

	respondJSON(c, http.StatusOK, VehicleStatisticsResponse{
		VehicleID:       stats.VehicleID,
		PointCount:      stats.PointCount,
		TotalDistanceKm: stats.TotalDistanceKm,
		AvgSpeedKmh:     stats.AvgSpeedKmh,
		MaxSpeedKmh:     stats.MaxSpeedKmh,
		StoppedCount:    stats.StoppedCount,
		FirstSeen:       stats.FirstSeen.Format(time.RFC3339),
		LastSeen:        stats.LastSeen.Format(time.RFC3339),
	})
}
