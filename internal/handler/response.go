package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fleetops/internal/repository"
	"fleetops/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	c.JSON(code, ErrorResponse{Error: err.Error()})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Not found errors
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Validation errors - Bad Request
	case errors.Is(err, service.ErrInvalidOrderID),
		errors.Is(err, service.ErrInvalidVehicleID),
		errors.Is(err, service.ErrInvalidTripID),
		errors.Is(err, service.ErrInvalidLocation),
		errors.Is(err, service.ErrInvalidCargoClass),
		errors.Is(err, service.ErrInvalidWeight),
		errors.Is(err, service.ErrInvalidVolume),
		errors.Is(err, service.ErrInvalidCapacity),
		errors.Is(err, service.ErrInvalidGeofence):
		return http.StatusBadRequest

	// Conflict errors
	case errors.Is(err, service.ErrOutOfOrderPoint),
		errors.Is(err, service.ErrDispatchInProgress),
		errors.Is(err, service.ErrTripNotPlanned),
		errors.Is(err, service.ErrTripNotInProgress),
		errors.Is(err, service.ErrTripAlreadyCompleted):
		return http.StatusConflict

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}
