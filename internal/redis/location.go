package redis

import (
	"context"

	"github.com/redis/go-redis/v9"
)

const vehicleLocationKey = "vehicles:locations"

// VehicleLocation represents a vehicle's live position in the geo index.
type VehicleLocation struct {
	VehicleID string
	Lat       float64
	Lng       float64
}

// LocationStore mirrors live vehicle positions in a Redis GEO index so
// nearby-vehicle queries do not touch the tracking engine.
type LocationStore struct {
	client *redis.Client
}

// NewLocationStore creates a new LocationStore.
func NewLocationStore(client *redis.Client) *LocationStore {
	return &LocationStore{client: client}
}

// UpdateLocation stores a vehicle's position using GEOADD.
func (s *LocationStore) UpdateLocation(ctx context.Context, vehicleID string, lat, lng float64) error {
	return s.client.GeoAdd(ctx, vehicleLocationKey, &redis.GeoLocation{
		Name:      vehicleID,
		Longitude: lng,
		Latitude:  lat,
	}).Err()
}

// FindNearbyVehicles returns vehicles within the given radius in kilometers,
// closest first.
func (s *LocationStore) FindNearbyVehicles(ctx context.Context, lat, lng, radiusKm float64) ([]VehicleLocation, error) {
	results, err := s.client.GeoRadius(ctx, vehicleLocationKey, lng, lat, &redis.GeoRadiusQuery{
		Radius:    radiusKm,
		Unit:      "km",
		WithCoord: true,
		Sort:      "ASC",
	}).Result()
	if err != nil {
		return nil, err
	}

	locations := make([]VehicleLocation, 0, len(results))
	for _, r := range results {
		locations = append(locations, VehicleLocation{
			VehicleID: r.Name,
			Lat:       r.Latitude,
			Lng:       r.Longitude,
		})
	}

	return locations, nil
}

// RemoveLocation removes a vehicle's position from the geo index.
func (s *LocationStore) RemoveLocation(ctx context.Context, vehicleID string) error {
	return s.client.ZRem(ctx, vehicleLocationKey, vehicleID).Err()
}
