package service

import (
	"testing"
	"time"

	"fleetops/internal/config"
	"fleetops/internal/domain"
	"fleetops/internal/restriction"
)

func testDispatchConfig() config.DispatchConfig {
	return config.DispatchConfig{
		ConsolidationRadiusKm: 50,
		WeightUtilWeight:      0.4,
		VolumeUtilWeight:      0.4,
		FuelRateWeight:        0.2,
	}
}

func newTestChecker(t *testing.T) *restriction.Checker {
	t.Helper()
	table, err := restriction.DefaultRules()
	if err != nil {
		t.Fatalf("failed to parse default rules: %v", err)
	}
	return restriction.NewChecker(table)
}

func newTestConsolidationService(t *testing.T) *ConsolidationService {
	t.Helper()
	return NewConsolidationService(nil, testDispatchConfig(), newTestChecker(t), nil, nil, nil, nil, nil)
}

func testVehicle(id string, capacityKg, capacityM3 float64, classes ...domain.CargoClass) *domain.Vehicle {
	if len(classes) == 0 {
		classes = []domain.CargoClass{domain.CargoClassDry}
	}
	return &domain.Vehicle{
		ID:             id,
		PlateNumber:    "51C-" + id,
		CapacityKg:     capacityKg,
		CapacityM3:     capacityM3,
		CargoClasses:   classes,
		Location:       loc(10.76, 106.66),
		Status:         domain.VehicleStatusAvailable,
		FuelRateLPerKm: 0.35,
	}
}

// A Sunday midday departure avoids every rush-hour ban in the rule table,
// so consolidation results are not polluted by violations.
var quietDepartAt = time.Date(2026, time.September, 6, 12, 0, 0, 0, time.UTC)

func TestConsolidateTripsAssignsAllOrders(t *testing.T) {
	svc := newTestConsolidationService(t)

	// Two clusters: two dropoffs near Thu Duc, two near Bien Hoa.
	orders := []*domain.Order{
		orderTo("o1", loc(10.85, 106.75)),
		orderTo("o2", loc(10.86, 106.76)),
		orderTo("o3", loc(10.95, 106.82)),
		orderTo("o4", loc(10.96, 106.83)),
	}
	vehicles := []*domain.Vehicle{
		testVehicle("v1", 5000, 20),
		testVehicle("v2", 5000, 20),
	}

	result := svc.ConsolidateTrips(orders, vehicles, quietDepartAt)

	if len(result.UnassignedOrders) != 0 {
		t.Fatalf("expected no unassigned orders, got %d", len(result.UnassignedOrders))
	}
	if result.EfficiencyScore != 100 {
		t.Errorf("expected efficiency score 100, got %.1f", result.EfficiencyScore)
	}

	assigned := make(map[string]bool)
	for _, trip := range result.Trips {
		for _, id := range trip.OrderIDs {
			if assigned[id] {
				t.Errorf("order %s assigned to more than one trip", id)
			}
			assigned[id] = true
		}
	}
	if len(assigned) != len(orders) {
		t.Errorf("expected %d assigned orders, got %d", len(orders), len(assigned))
	}
}

func TestConsolidateTripsClustersByProximity(t *testing.T) {
	svc := newTestConsolidationService(t)

	// The third dropoff is hundreds of km away and must not join the
	// first cluster.
	orders := []*domain.Order{
		orderTo("near1", loc(10.85, 106.75)),
		orderTo("near2", loc(10.86, 106.76)),
		orderTo("hanoi", loc(21.02, 105.85)),
	}
	vehicles := []*domain.Vehicle{
		testVehicle("v1", 5000, 20),
		testVehicle("v2", 5000, 20),
	}

	result := svc.ConsolidateTrips(orders, vehicles, quietDepartAt)
	if len(result.Trips) != 2 {
		t.Fatalf("expected 2 trips, got %d", len(result.Trips))
	}
	for _, trip := range result.Trips {
		for _, id := range trip.OrderIDs {
			if id == "hanoi" && len(trip.OrderIDs) != 1 {
				t.Errorf("distant order clustered with local ones: %v", trip.OrderIDs)
			}
		}
	}
}

func TestConsolidateTripsSeparatesCargoClasses(t *testing.T) {
	svc := newTestConsolidationService(t)

	frozen := orderTo("frozen", loc(10.85, 106.75))
	frozen.CargoClass = domain.CargoClassFrozen
	dry := orderTo("dry", loc(10.85, 106.75))

	vehicles := []*domain.Vehicle{
		testVehicle("reefer", 5000, 20, domain.CargoClassFrozen),
		testVehicle("box", 5000, 20, domain.CargoClassDry),
	}

	result := svc.ConsolidateTrips([]*domain.Order{frozen, dry}, vehicles, quietDepartAt)
	if len(result.Trips) != 2 {
		t.Fatalf("expected separate trips per cargo class, got %d", len(result.Trips))
	}
	for _, trip := range result.Trips {
		if len(trip.OrderIDs) != 1 {
			t.Errorf("cargo classes mixed in trip %s: %v", trip.ID, trip.OrderIDs)
		}
	}
}

func TestConsolidateTripsRespectsCapacity(t *testing.T) {
	svc := newTestConsolidationService(t)

	heavy := orderTo("heavy", loc(10.85, 106.75))
	heavy.WeightKg = 8000

	result := svc.ConsolidateTrips(
		[]*domain.Order{heavy},
		[]*domain.Vehicle{testVehicle("small", 2000, 20)},
		quietDepartAt,
	)

	if len(result.Trips) != 0 {
		t.Fatalf("expected no trips for an overweight cluster, got %d", len(result.Trips))
	}
	if len(result.UnassignedOrders) != 1 || result.UnassignedOrders[0].ID != "heavy" {
		t.Errorf("expected the heavy order to be surfaced as unassigned")
	}
	if result.EfficiencyScore != 0 {
		t.Errorf("expected efficiency score 0, got %.1f", result.EfficiencyScore)
	}
	if len(result.Recommendations) == 0 {
		t.Errorf("expected a recommendation for the unassigned cluster")
	}
}

func TestConsolidateTripsVehicleUsedOncePerPass(t *testing.T) {
	svc := newTestConsolidationService(t)

	// Two clusters but only one vehicle.
	orders := []*domain.Order{
		orderTo("local", loc(10.85, 106.75)),
		orderTo("hanoi", loc(21.02, 105.85)),
	}
	result := svc.ConsolidateTrips(orders, []*domain.Vehicle{testVehicle("v1", 5000, 20)}, quietDepartAt)

	if len(result.Trips) != 1 {
		t.Fatalf("expected 1 trip with a single vehicle, got %d", len(result.Trips))
	}
	if len(result.UnassignedOrders) != 1 {
		t.Errorf("expected 1 unassigned order, got %d", len(result.UnassignedOrders))
	}
}

func TestConsolidateTripsPrefersHigherUtilization(t *testing.T) {
	svc := newTestConsolidationService(t)

	order := orderTo("o1", loc(10.85, 106.75))
	order.WeightKg = 1800
	order.VolumeM3 = 8

	// The snug vehicle is utilized far better than the oversized one.
	snug := testVehicle("snug", 2000, 10)
	oversized := testVehicle("oversized", 20000, 100)

	result := svc.ConsolidateTrips([]*domain.Order{order}, []*domain.Vehicle{oversized, snug}, quietDepartAt)
	if len(result.Trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(result.Trips))
	}
	if result.Trips[0].VehicleID != "snug" {
		t.Errorf("expected the snug vehicle to win, got %s", result.Trips[0].VehicleID)
	}
}

func TestConsolidateTripsIdenticalVehiclesFirstWins(t *testing.T) {
	svc := newTestConsolidationService(t)

	result := svc.ConsolidateTrips(
		[]*domain.Order{orderTo("o1", loc(10.85, 106.75))},
		[]*domain.Vehicle{testVehicle("first", 5000, 20), testVehicle("second", 5000, 20)},
		quietDepartAt,
	)
	if len(result.Trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(result.Trips))
	}
	if result.Trips[0].VehicleID != "first" {
		t.Errorf("expected score tie to go to the first vehicle, got %s", result.Trips[0].VehicleID)
	}
}

func TestConsolidateTripsEmptyOrders(t *testing.T) {
	svc := newTestConsolidationService(t)

	result := svc.ConsolidateTrips(nil, []*domain.Vehicle{testVehicle("v1", 5000, 20)}, quietDepartAt)
	if len(result.Trips) != 0 || result.EfficiencyScore != 0 {
		t.Errorf("expected an empty pass, got %d trips / score %.1f", len(result.Trips), result.EfficiencyScore)
	}
}

func TestBuildTripShape(t *testing.T) {
	svc := newTestConsolidationService(t)

	orders := []*domain.Order{
		orderTo("o1", loc(10.85, 106.75)),
		orderTo("o2", loc(10.90, 106.80)),
	}
	result := svc.ConsolidateTrips(orders, []*domain.Vehicle{testVehicle("v1", 5000, 20)}, quietDepartAt)
	if len(result.Trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(result.Trips))
	}
	trip := result.Trips[0]

	// Start -> 2 pickups -> 2 dropoffs -> empty return = 5 segments.
	if len(trip.Segments) != 5 {
		t.Fatalf("expected 5 segments, got %d", len(trip.Segments))
	}
	last := trip.Segments[len(trip.Segments)-1]
	if last.To.Type != domain.LocationTypeEmptyReturn {
		t.Errorf("expected the final leg to be the empty return, got %s", last.To.Type)
	}

	var distSum, fuelSum, tollSum float64
	for _, seg := range trip.Segments {
		distSum += seg.DistanceKm
		fuelSum += seg.FuelCost
		tollSum += seg.TollCost
	}
	if !closeTo(trip.TotalDistanceKm, distSum) {
		t.Errorf("total distance %.3f does not match segment sum %.3f", trip.TotalDistanceKm, distSum)
	}
	if !closeTo(trip.TotalCost, fuelSum+tollSum) {
		t.Errorf("total cost %.1f does not match segment sum %.1f", trip.TotalCost, fuelSum+tollSum)
	}
	if trip.EfficiencyScore < 0 || trip.EfficiencyScore > 100 {
		t.Errorf("efficiency score %.1f out of range", trip.EfficiencyScore)
	}
	if trip.Status != domain.TripStatusPlanned {
		t.Errorf("expected a planned trip, got %s", trip.Status)
	}
}

func TestBuildTripFlagsRushHourDeparture(t *testing.T) {
	svc := newTestConsolidationService(t)

	// Monday 07:00 inside the Ho Chi Minh City morning ban.
	rushHour := time.Date(2026, time.September, 7, 7, 0, 0, 0, time.UTC)
	result := svc.ConsolidateTrips(
		[]*domain.Order{orderTo("o1", loc(10.78, 106.70))},
		[]*domain.Vehicle{testVehicle("v1", 5000, 20)},
		rushHour,
	)
	if len(result.Trips) != 1 {
		t.Fatalf("expected 1 trip, got %d", len(result.Trips))
	}
	if !result.Trips[0].HasBlockingViolation() {
		t.Errorf("expected the rush-hour trip to carry a blocking violation")
	}
}

func closeTo(a, b float64) bool {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	return diff < 1e-6
}
