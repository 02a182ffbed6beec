package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// GeofenceHandler handles HTTP requests for geofences.
type GeofenceHandler struct {
	trackingService *service.TrackingService
}

// NewGeofenceHandler creates a new GeofenceHandler.
func NewGeofenceHandler(trackingService *service.TrackingService) *GeofenceHandler {
	return &GeofenceHandler{trackingService: trackingService}
}

// GeoPointRequest is a bare coordinate pair in a request body.
type GeoPointRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CreateGeofenceRequest is the HTTP request body for creating a geofence.
type CreateGeofenceRequest struct {
	Name              string            `json:"name"`
	Shape             string            `json:"shape"` // CIRCLE, POLYGON
	CenterLat         float64           `json:"center_lat,omitempty"`
	CenterLng         float64           `json:"center_lng,omitempty"`
	RadiusKm          float64           `json:"radius_km,omitempty"`
	Polygon           []GeoPointRequest `json:"polygon,omitempty"`
	OnEnter           bool              `json:"on_enter"`
	OnExit            bool              `json:"on_exit"`
	OnDwell           bool              `json:"on_dwell"`
	DwellThresholdMin int               `json:"dwell_threshold_minutes,omitempty"`
	VehicleIDs        []string          `json:"vehicle_ids,omitempty"` // Empty watches all vehicles.
}

// GeofenceResponse is the HTTP representation of a geofence.
type GeofenceResponse struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Shape             string            `json:"shape"`
	CenterLat         float64           `json:"center_lat,omitempty"`
	CenterLng         float64           `json:"center_lng,omitempty"`
	RadiusKm          float64           `json:"radius_km,omitempty"`
	Polygon           []GeoPointRequest `json:"polygon,omitempty"`
	OnEnter           bool              `json:"on_enter"`
	OnExit            bool              `json:"on_exit"`
	OnDwell           bool              `json:"on_dwell"`
	DwellThresholdMin int               `json:"dwell_threshold_minutes,omitempty"`
	VehicleIDs        []string          `json:"vehicle_ids,omitempty"`
}

func geofenceResponse(g *domain.Geofence) GeofenceResponse {
	polygon := make([]GeoPointRequest, 0, len(g.Polygon))
	for _, p := range g.Polygon {
		polygon = append(polygon, GeoPointRequest{Lat: p.Lat, Lng: p.Lng})
	}
	return GeofenceResponse{
		ID:                g.ID,
		Name:              g.Name,
		Shape:             string(g.Shape),
		CenterLat:         g.Center.Lat,
		CenterLng:         g.Center.Lng,
		RadiusKm:          g.RadiusKm,
		Polygon:           polygon,
		OnEnter:           g.Policy.OnEnter,
		OnExit:            g.Policy.OnExit,
		OnDwell:           g.Policy.OnDwell,
		DwellThresholdMin: int(g.Policy.DwellThreshold / time.Minute),
		VehicleIDs:        g.VehicleIDs,
	}
}

// CreateGeofence handles POST /v1/geofences
func (h *GeofenceHandler) CreateGeofence(c *gin.Context) {
	var req CreateGeofenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	polygon := make([]domain.GeoPoint, 0, len(req.Polygon))
	for _, p := range req.Polygon {
		polygon = append(polygon, domain.GeoPoint{Lat: p.Lat, Lng: p.Lng})
	}

	geofence, err := h.trackingService.AddGeofence(domain.Geofence{
		Name:     req.Name,
		Shape:    domain.GeofenceShape(req.Shape),
		Center:   domain.GeoPoint{Lat: req.CenterLat, Lng: req.CenterLng},
		RadiusKm: req.RadiusKm,
		Polygon:  polygon,
		Policy: domain.GeofencePolicy{
			OnEnter:        req.OnEnter,
			OnExit:         req.OnExit,
			OnDwell:        req.OnDwell,
			DwellThreshold: time.Duration(req.DwellThresholdMin) * time.Minute,
		},
		VehicleIDs: req.VehicleIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, geofenceResponse(geofence))
}

// GetAll handles GET /v1/geofences
func (h *GeofenceHandler) GetAll(c *gin.Context) {
	geofences := h.trackingService.GetGeofences()
	response := make([]GeofenceResponse, 0, len(geofences))
	for _, g := range geofences {
		response = append(response, geofenceResponse(g))
	}
	respondJSON(c, http.StatusOK, response)
}

// DeleteGeofence handles DELETE /v1/geofences/:id
func (h *GeofenceHandler) DeleteGeofence(c *gin.Context) {
	if !h.trackingService.RemoveGeofence(c.Param("id")) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "geofence not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
