package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// AlertHandler handles HTTP requests for tracking alerts.
type AlertHandler struct {
	trackingService *service.TrackingService
}

// NewAlertHandler creates a new AlertHandler.
func NewAlertHandler(trackingService *service.TrackingService) *AlertHandler {
	return &AlertHandler{trackingService: trackingService}
}

// AlertResponse is the HTTP representation of an alert.
type AlertResponse struct {
	ID           string  `json:"id"`
	Type         string  `json:"type"`
	Severity     string  `json:"severity"`
	VehicleID    string  `json:"vehicle_id"`
	GeofenceID   string  `json:"geofence_id,omitempty"`
	Message      string  `json:"message"`
	Lat          float64 `json:"lat"`
	Lng          float64 `json:"lng"`
	Timestamp    string  `json:"timestamp"`
	Acknowledged bool    `json:"acknowledged"`
	ResolvedAt   string  `json:"resolved_at,omitempty"`
}

func alertResponse(a *domain.Alert) AlertResponse {
	response := AlertResponse{
		ID:           a.ID,
		Type:         string(a.Type),
		Severity:     string(a.Severity),
		VehicleID:    a.VehicleID,
		GeofenceID:   a.GeofenceID,
		Message:      a.Message,
		Lat:          a.Lat,
		Lng:          a.Lng,
		Timestamp:    a.Timestamp.Format(time.RFC3339),
		Acknowledged: a.Acknowledged,
	}
	if !a.ResolvedAt.IsZero() {
		response.ResolvedAt = a.ResolvedAt.Format(time.RFC3339)
	}
	return response
}

// GetRecent handles GET /v1/alerts?limit=..
func (h *AlertHandler) GetRecent(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
			return
		}
		limit = parsed
	}

	alerts := h.trackingService.GetRecentAlerts(limit)
	response := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		response = append(response, alertResponse(a))
	}
	respondJSON(c, http.StatusOK, response)
}

// GetUnacknowledged handles GET /v1/alerts/unacknowledged
func (h *AlertHandler) GetUnacknowledged(c *gin.Context) {
	alerts := h.trackingService.GetUnacknowledgedAlerts()
	response := make([]AlertResponse, 0, len(alerts))
	for _, a := range alerts {
		response = append(response, alertResponse(a))
	}
	respondJSON(c, http.StatusOK, response)
}

// Acknowledge handles POST /v1/alerts/:id/acknowledge
func (h *AlertHandler) Acknowledge(c *gin.Context) {
	if !h.trackingService.AcknowledgeAlert(c.Request.Context(), c.Param("id")) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "alert not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
