package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// VehicleCacheTTL is short because vehicle status flips during consolidation.
const VehicleCacheTTL = 30 * time.Second

const (
	vehicleCachePrefix  = "cache:vehicle:"
	availableVehicleKey = "available_vehicles"
	dispatchLockKey     = "lock:dispatch"
)

// CachedVehicle represents a cached vehicle entity.
type CachedVehicle struct {
	ID          string  `json:"id"`
	PlateNumber string  `json:"plate_number"`
	Status      string  `json:"status"`
	CapacityKg  float64 `json:"capacity_kg"`
	CapacityM3  float64 `json:"capacity_m3"`
}

// GetVehicle retrieves a vehicle from cache. A cache miss returns nil
// without error.
func (s *CacheStore) GetVehicle(ctx context.Context, vehicleID string) (*CachedVehicle, error) {
	key := vehicleCachePrefix + vehicleID
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var vehicle CachedVehicle
	if err := json.Unmarshal(data, &vehicle); err != nil {
		return nil, err
	}
	return &vehicle, nil
}

// SetVehicle stores a vehicle in cache.
func (s *CacheStore) SetVehicle(ctx context.Context, vehicle *CachedVehicle) error {
	key := vehicleCachePrefix + vehicle.ID
	data, err := json.Marshal(vehicle)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key, data, VehicleCacheTTL).Err()
}

// InvalidateVehicle removes a vehicle from cache.
func (s *CacheStore) InvalidateVehicle(ctx context.Context, vehicleID string) error {
	key := vehicleCachePrefix + vehicleID
	return s.client.Del(ctx, key).Err()
}

// AcquireDispatchLock attempts to acquire the lock that serializes
// consolidation passes. Only one pass may mutate vehicle assignments at a
// time.
func (s *CacheStore) AcquireDispatchLock(ctx context.Context, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, dispatchLockKey, "1", ttl).Result()
	if err != nil {
		return false, err
	}
	return ok, nil
}

// ReleaseDispatchLock releases the consolidation lock.
func (s *CacheStore) ReleaseDispatchLock(ctx context.Context) error {
	return s.client.Del(ctx, dispatchLockKey).Err()
}

// AddAvailableVehicle adds a vehicle to the available set for fast lookup.
func (s *CacheStore) AddAvailableVehicle(ctx context.Context, vehicleID string) error {
	return s.client.SAdd(ctx, availableVehicleKey, vehicleID).Err()
}

// RemoveAvailableVehicle removes a vehicle from the available set.
func (s *CacheStore) RemoveAvailableVehicle(ctx context.Context, vehicleID string) error {
	return s.client.SRem(ctx, availableVehicleKey, vehicleID).Err()
}

// IsVehicleAvailable checks if a vehicle is in the available set.
func (s *CacheStore) IsVehicleAvailable(ctx context.Context, vehicleID string) (bool, error) {
	return s.client.SIsMember(ctx, availableVehicleKey, vehicleID).Result()
}

// GetAvailableVehicles returns all available vehicle IDs.
func (s *CacheStore) GetAvailableVehicles(ctx context.Context) ([]string, error) {
	return s.client.SMembers(ctx, availableVehicleKey).Result()
}
