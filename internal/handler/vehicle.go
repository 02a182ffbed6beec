package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fleetops/internal/domain"
	"fleetops/internal/service"
)

// VehicleHandler handles HTTP requests for the fleet roster.
type VehicleHandler struct {
	vehicleService *service.VehicleService
}

// NewVehicleHandler creates a new VehicleHandler.
func NewVehicleHandler(vehicleService *service.VehicleService) *VehicleHandler {
	return &VehicleHandler{vehicleService: vehicleService}
}

// RegisterVehicleRequest is the HTTP request body for registering a vehicle.
type RegisterVehicleRequest struct {
	PlateNumber    string   `json:"plate_number"`
	CapacityKg     float64  `json:"capacity_kg"`
	CapacityM3     float64  `json:"capacity_m3"`
	CargoClasses   []string `json:"cargo_classes"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	FuelRateLPerKm float64  `json:"fuel_rate_l_per_km"`
	DriverID       string   `json:"driver_id,omitempty"`
}

// UpdateVehicleStatusRequest is the HTTP request body for a status change.
type UpdateVehicleStatusRequest struct {
	Status string `json:"status"` // AVAILABLE, ON_TRIP, MAINTENANCE
}

// VehicleResponse is the HTTP representation of a vehicle.
type VehicleResponse struct {
	ID             string   `json:"id"`
	PlateNumber    string   `json:"plate_number"`
	CapacityKg     float64  `json:"capacity_kg"`
	CapacityM3     float64  `json:"capacity_m3"`
	CargoClasses   []string `json:"cargo_classes"`
	Lat            float64  `json:"lat"`
	Lng            float64  `json:"lng"`
	Status         string   `json:"status"`
	FuelRateLPerKm float64  `json:"fuel_rate_l_per_km"`
	DriverID       string   `json:"driver_id,omitempty"`
}

// NearbyVehicleResponse is one entry of a nearby-vehicle lookup.
type NearbyVehicleResponse struct {
	VehicleID string  `json:"vehicle_id"`
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
}

func vehicleResponse(v *domain.Vehicle) VehicleResponse {
	classes := make([]string, 0, len(v.CargoClasses))
	for _, class := range v.CargoClasses {
		classes = append(classes, string(class))
	}
	return VehicleResponse{
		ID:             v.ID,
		PlateNumber:    v.PlateNumber,
		CapacityKg:     v.CapacityKg,
		CapacityM3:     v.CapacityM3,
		CargoClasses:   classes,
		Lat:            v.Location.Lat,
		Lng:            v.Location.Lng,
		Status:         string(v.Status),
		FuelRateLPerKm: v.FuelRateLPerKm,
		DriverID:       v.DriverID,
	}
}

// RegisterVehicle handles POST /v1/vehicles
func (h *VehicleHandler) RegisterVehicle(c *gin.Context) {
	var req RegisterVehicleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	classes := make([]domain.CargoClass, 0, len(req.CargoClasses))
	for _, class := range req.CargoClasses {
		classes = append(classes, domain.CargoClass(class))
	}

	vehicle, err := h.vehicleService.RegisterVehicle(c.Request.Context(), &domain.Vehicle{
		PlateNumber:  req.PlateNumber,
		CapacityKg:   req.CapacityKg,
		CapacityM3:   req.CapacityM3,
		CargoClasses: classes,
		Location: domain.Location{
			Lat:  req.Lat,
			Lng:  req.Lng,
			Type: domain.LocationTypeDepot,
		},
		FuelRateLPerKm: req.FuelRateLPerKm,
		DriverID:       req.DriverID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, vehicleResponse(vehicle))
}

// GetVehicle handles GET /v1/vehicles/:id
func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	vehicle, err := h.vehicleService.GetVehicle(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondJSON(c, http.StatusOK, vehicleResponse(vehicle))
}

// GetAll handles GET /v1/vehicles
func (h *VehicleHandler) GetAll(c *gin.Context) {
	var (
		vehicles []*domain.Vehicle
		err      error
	)
	if status := c.Query("status"); status != "" {
		vehicles, err = h.vehicleService.GetVehiclesByStatus(c.Request.Context(), domain.VehicleStatus(status))
	} else {
		vehicles, err = h.vehicleService.GetAllVehicles(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]VehicleResponse, 0, len(vehicles))
	for _, v := range vehicles {
		response = append(response, vehicleResponse(v))
	}
	respondJSON(c, http.StatusOK, response)
}

// UpdateStatus handles PUT /v1/vehicles/:id/status
func (h *VehicleHandler) UpdateStatus(c *gin.Context) {
	var req UpdateVehicleStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	status := domain.VehicleStatus(req.Status)
	switch status {
	case domain.VehicleStatusAvailable, domain.VehicleStatusOnTrip, domain.VehicleStatusMaintenance:
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid vehicle status"})
		return
	}

	if err := h.vehicleService.UpdateVehicleStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetNearby handles GET /v1/vehicles/nearby?lat=..&lng=..&radius_km=..
func (h *VehicleHandler) GetNearby(c *gin.Context) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "lat and lng are required"})
		return
	}
	radiusKm := 10.0
	if raw := c.Query("radius_km"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid radius_km"})
			return
		}
		radiusKm = parsed
	}

	nearby, err := h.vehicleService.FindNearbyVehicles(c.Request.Context(), lat, lng, radiusKm)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]NearbyVehicleResponse, 0, len(nearby))
	for _, v := range nearby {
		response = append(response, NearbyVehicleResponse{
			VehicleID: v.VehicleID,
			Lat:       v.Lat,
			Lng:       v.Lng,
		})
	}
	respondJSON(c, http.StatusOK, response)
}
