package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

// OrderService manages freight orders.
type OrderService struct {
	orderRepo repository.OrderRepository
}

// NewOrderService creates a new OrderService.
func NewOrderService(orderRepo repository.OrderRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo}
}

// CreateOrder validates and persists a new order. New orders always start
// PENDING.
func (s *OrderService) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if !order.Pickup.ValidCoordinates() || !order.Dropoff.ValidCoordinates() {
		return nil, ErrInvalidLocation
	}
	if !validCargoClass(order.CargoClass) {
		return nil, ErrInvalidCargoClass
	}
	if order.WeightKg <= 0 {
		return nil, ErrInvalidWeight
	}
	if order.VolumeM3 <= 0 {
		return nil, ErrInvalidVolume
	}

	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.Status = domain.OrderStatusPending
	order.TripID = ""
	if order.RequestedAt.IsZero() {
		order.RequestedAt = time.Now()
	}
	order.CreatedAt = time.Now()

	if err := s.orderRepo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetOrder retrieves an order by ID.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	if id == "" {
		return nil, ErrInvalidOrderID
	}
	return s.orderRepo.GetByID(ctx, id)
}

// GetAllOrders retrieves all orders.
func (s *OrderService) GetAllOrders(ctx context.Context) ([]*domain.Order, error) {
	return s.orderRepo.GetAll(ctx)
}

// GetOrdersByStatus retrieves orders in the given status.
func (s *OrderService) GetOrdersByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	return s.orderRepo.GetByStatus(ctx, status)
}

func validCargoClass(class domain.CargoClass) bool {
	switch class {
	case domain.CargoClassDry, domain.CargoClassFrozen, domain.CargoClassFragile, domain.CargoClassLiquid:
		return true
	}
	return false
}
