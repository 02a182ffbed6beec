package repository

import (
	"context"

	"fleetops/internal/domain"
)

// OrderRepository defines the persistence operations for freight orders.
type OrderRepository interface {
	// Create adds a new order.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// GetAll retrieves all orders.
	GetAll(ctx context.Context) ([]*domain.Order, error)

	// GetByStatus retrieves orders in the given status.
	GetByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error)

	// AssignToTrip marks an order assigned to a trip.
	AssignToTrip(ctx context.Context, orderID, tripID string) error

	// UpdateStatus updates the status of an order.
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}
