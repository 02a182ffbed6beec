package tests

import (
	"context"
	"testing"
	"time"

	"fleetops/internal/config"
	"fleetops/internal/domain"
	"fleetops/internal/restriction"
	"fleetops/internal/service"
)

func dispatchConfig() config.DispatchConfig {
	return config.DispatchConfig{
		ConsolidationRadiusKm: 50,
		WeightUtilWeight:      0.4,
		VolumeUtilWeight:      0.4,
		FuelRateWeight:        0.2,
	}
}

func defaultChecker(t *testing.T) *restriction.Checker {
	t.Helper()
	table, err := restriction.DefaultRules()
	if err != nil {
		t.Fatalf("failed to parse default rules: %v", err)
	}
	return restriction.NewChecker(table)
}

func pendingOrder(id string, dropLat, dropLng float64) *domain.Order {
	return &domain.Order{
		ID:         id,
		Pickup:     domain.Location{Lat: 10.76, Lng: 106.66, Type: domain.LocationTypePickup},
		Dropoff:    domain.Location{Lat: dropLat, Lng: dropLng, Type: domain.LocationTypeDelivery},
		CargoClass: domain.CargoClassDry,
		WeightKg:   800,
		VolumeM3:   3,
		Status:     domain.OrderStatusPending,
	}
}

func availableVehicle(id string) *domain.Vehicle {
	return &domain.Vehicle{
		ID:             id,
		PlateNumber:    "51C-" + id,
		CapacityKg:     5000,
		CapacityM3:     20,
		CargoClasses:   []domain.CargoClass{domain.CargoClassDry},
		Location:       domain.Location{Lat: 10.76, Lng: 106.66, Type: domain.LocationTypeDepot},
		Status:         domain.VehicleStatusAvailable,
		FuelRateLPerKm: 0.35,
	}
}

// Sunday midday: outside every rush-hour ban in the rule table.
var sundayNoon = time.Date(2026, time.September, 6, 12, 0, 0, 0, time.UTC)

func TestDispatchFlow_ConsolidatesRepositoryOrders(t *testing.T) {
	ctx := context.Background()

	orderRepo := NewMockOrderRepository()
	vehicleRepo := NewMockVehicleRepository()

	orderRepo.AddOrder(pendingOrder("o1", 10.85, 106.75))
	orderRepo.AddOrder(pendingOrder("o2", 10.86, 106.76))
	delivered := pendingOrder("done", 10.85, 106.75)
	delivered.Status = domain.OrderStatusDelivered
	orderRepo.AddOrder(delivered)

	vehicleRepo.AddVehicle(availableVehicle("v1"))
	busy := availableVehicle("busy")
	busy.Status = domain.VehicleStatusOnTrip
	vehicleRepo.AddVehicle(busy)

	svc := service.NewConsolidationService(nil, dispatchConfig(), defaultChecker(t), orderRepo, vehicleRepo, NewMockTripRepository(), NewMockLockStore(), nil)

	// Load the same way a consolidation pass does: only pending orders
	// and available vehicles participate.
	orders, err := orderRepo.GetByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		t.Fatalf("failed to load pending orders: %v", err)
	}
	vehicles, err := vehicleRepo.GetByStatus(ctx, domain.VehicleStatusAvailable)
	if err != nil {
		t.Fatalf("failed to load available vehicles: %v", err)
	}

	if len(orders) != 2 {
		t.Fatalf("expected 2 pending orders, got %d", len(orders))
	}
	if len(vehicles) != 1 {
		t.Fatalf("expected 1 available vehicle, got %d", len(vehicles))
	}

	result := svc.ConsolidateTrips(orders, vehicles, sundayNoon)
	if len(result.Trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(result.Trips))
	}
	if result.Trips[0].VehicleID != "v1" {
		t.Errorf("expected the available vehicle, got %s", result.Trips[0].VehicleID)
	}
	if len(result.Trips[0].OrderIDs) != 2 {
		t.Errorf("expected both pending orders on the trip, got %v", result.Trips[0].OrderIDs)
	}
	if result.EfficiencyScore != 100 {
		t.Errorf("expected efficiency score 100, got %.1f", result.EfficiencyScore)
	}
}

func TestDispatchFlow_EmptyBacklogPass(t *testing.T) {
	orderRepo := NewMockOrderRepository()
	vehicleRepo := NewMockVehicleRepository()
	vehicleRepo.AddVehicle(availableVehicle("v1"))

	svc := service.NewConsolidationService(nil, dispatchConfig(), defaultChecker(t), orderRepo, vehicleRepo, NewMockTripRepository(), NewMockLockStore(), nil)

	// With nothing pending the pass touches no storage and reports an
	// empty result.
	result, err := svc.ConsolidatePending(context.Background(), sundayNoon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Trips) != 0 || len(result.UnassignedOrders) != 0 {
		t.Errorf("expected an empty result, got %+v", result)
	}
}
