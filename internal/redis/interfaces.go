package redis

import (
	"context"
	"time"
)

// LocationStoreInterface defines the interface for live vehicle location
// operations.
type LocationStoreInterface interface {
	UpdateLocation(ctx context.Context, vehicleID string, lat, lng float64) error
	FindNearbyVehicles(ctx context.Context, lat, lng, radiusKm float64) ([]VehicleLocation, error)
	RemoveLocation(ctx context.Context, vehicleID string) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireVehicleLock(ctx context.Context, vehicleID string, ttl time.Duration) (bool, error)
	ReleaseVehicleLock(ctx context.Context, vehicleID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ LocationStoreInterface = (*LocationStore)(nil)
	_ LockStoreInterface     = (*LockStore)(nil)
)
