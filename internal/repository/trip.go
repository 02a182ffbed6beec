package repository

import (
	"context"

	"fleetops/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create adds a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetAll retrieves all trips.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// GetActiveByVehicleID retrieves the active trip for a vehicle, if any.
	// Returns nil without error when the vehicle has no active trip.
	GetActiveByVehicleID(ctx context.Context, vehicleID string) (*domain.Trip, error)

	// UpdateStatus updates the status of a trip.
	UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error
}
