package repository

import (
	"context"

	"fleetops/internal/domain"
)

// VehicleRepository defines the persistence operations for vehicles.
type VehicleRepository interface {
	// Create adds a new vehicle.
	Create(ctx context.Context, vehicle *domain.Vehicle) error

	// GetByID retrieves a vehicle by ID.
	GetByID(ctx context.Context, id string) (*domain.Vehicle, error)

	// GetAll retrieves all vehicles.
	GetAll(ctx context.Context) ([]*domain.Vehicle, error)

	// GetByStatus retrieves vehicles in the given status.
	GetByStatus(ctx context.Context, status domain.VehicleStatus) ([]*domain.Vehicle, error)

	// UpdateStatus updates the status of a vehicle.
	UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error

	// UpdateLocation updates the vehicle's last known position.
	UpdateLocation(ctx context.Context, id string, lat, lng float64) error
}
