package domain

import "time"

// OrderStatus represents the current status of a freight order.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAssigned  OrderStatus = "ASSIGNED"
	OrderStatusInTransit OrderStatus = "IN_TRANSIT"
	OrderStatusDelivered OrderStatus = "DELIVERED"
)

// CargoClass represents the handling class of an order's cargo.
type CargoClass string

const (
	CargoClassDry     CargoClass = "DRY"
	CargoClassFrozen  CargoClass = "FROZEN"
	CargoClassFragile CargoClass = "FRAGILE"
	CargoClassLiquid  CargoClass = "LIQUID"
)

// Order represents a freight order awaiting or undergoing delivery.
type Order struct {
	ID          string
	Pickup      Location
	Dropoff     Location
	CargoClass  CargoClass
	WeightKg    float64
	VolumeM3    float64
	RequestedAt time.Time
	Priority    int
	Status      OrderStatus
	TripID      string // Set once the order is assigned to a trip.
	CreatedAt   time.Time
}
