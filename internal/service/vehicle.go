package service

import (
	"context"
	"log"

	"github.com/google/uuid"

	"fleetops/internal/domain"
	"fleetops/internal/redis"
	"fleetops/internal/repository"
)

// VehicleService manages the fleet roster. Reads go through the Redis
// cache when one is attached; cache failures fall back to Postgres.
type VehicleService struct {
	vehicleRepo repository.VehicleRepository
	locStore    redis.LocationStoreInterface
	cacheStore  *redis.CacheStore
}

// NewVehicleService creates a new VehicleService.
func NewVehicleService(vehicleRepo repository.VehicleRepository, locStore redis.LocationStoreInterface, cacheStore *redis.CacheStore) *VehicleService {
	return &VehicleService{
		vehicleRepo: vehicleRepo,
		locStore:    locStore,
		cacheStore:  cacheStore,
	}
}

// RegisterVehicle validates and persists a new vehicle. New vehicles start
// AVAILABLE.
func (s *VehicleService) RegisterVehicle(ctx context.Context, vehicle *domain.Vehicle) (*domain.Vehicle, error) {
	if vehicle.CapacityKg <= 0 || vehicle.CapacityM3 <= 0 {
		return nil, ErrInvalidCapacity
	}
	if !vehicle.Location.ValidCoordinates() {
		return nil, ErrInvalidLocation
	}
	for _, class := range vehicle.CargoClasses {
		if !validCargoClass(class) {
			return nil, ErrInvalidCargoClass
		}
	}

	if vehicle.ID == "" {
		vehicle.ID = uuid.New().String()
	}
	vehicle.Status = domain.VehicleStatusAvailable

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		if err := s.cacheStore.AddAvailableVehicle(ctx, vehicle.ID); err != nil {
			log.Printf("[VEHICLE] failed to add %s to available pool: %v", vehicle.ID, err)
		}
	}
	if s.locStore != nil {
		if err := s.locStore.UpdateLocation(ctx, vehicle.ID, vehicle.Location.Lat, vehicle.Location.Lng); err != nil {
			log.Printf("[VEHICLE] failed to index location for %s: %v", vehicle.ID, err)
		}
	}

	return vehicle, nil
}

// GetVehicle retrieves a vehicle by ID.
func (s *VehicleService) GetVehicle(ctx context.Context, id string) (*domain.Vehicle, error) {
	if id == "" {
		return nil, ErrInvalidVehicleID
	}

	vehicle, err := s.vehicleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		cacheErr := s.cacheStore.SetVehicle(ctx, &redis.CachedVehicle{
			ID:          vehicle.ID,
			PlateNumber: vehicle.PlateNumber,
			Status:      string(vehicle.Status),
			CapacityKg:  vehicle.CapacityKg,
			CapacityM3:  vehicle.CapacityM3,
		})
		if cacheErr != nil {
			log.Printf("[VEHICLE] failed to cache %s: %v", vehicle.ID, cacheErr)
		}
	}

	return vehicle, nil
}

// GetAllVehicles retrieves all vehicles.
func (s *VehicleService) GetAllVehicles(ctx context.Context) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.GetAll(ctx)
}

// GetVehiclesByStatus retrieves vehicles in the given status.
func (s *VehicleService) GetVehiclesByStatus(ctx context.Context, status domain.VehicleStatus) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.GetByStatus(ctx, status)
}

// UpdateVehicleStatus updates a vehicle's status and keeps the available
// pool in sync.
func (s *VehicleService) UpdateVehicleStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	if id == "" {
		return ErrInvalidVehicleID
	}
	if err := s.vehicleRepo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	if s.cacheStore != nil {
		if err := s.cacheStore.InvalidateVehicle(ctx, id); err != nil {
			log.Printf("[VEHICLE] failed to invalidate cache for %s: %v", id, err)
		}
		var poolErr error
		if status == domain.VehicleStatusAvailable {
			poolErr = s.cacheStore.AddAvailableVehicle(ctx, id)
		} else {
			poolErr = s.cacheStore.RemoveAvailableVehicle(ctx, id)
		}
		if poolErr != nil {
			log.Printf("[VEHICLE] failed to sync available pool for %s: %v", id, poolErr)
		}
	}

	return nil
}

// FindNearbyVehicles returns vehicles within radiusKm of a point, closest
// first, from the Redis geo index.
func (s *VehicleService) FindNearbyVehicles(ctx context.Context, lat, lng, radiusKm float64) ([]redis.VehicleLocation, error) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return nil, ErrInvalidLocation
	}
	if s.locStore == nil {
		return nil, nil
	}
	return s.locStore.FindNearbyVehicles(ctx, lat, lng, radiusKm)
}
