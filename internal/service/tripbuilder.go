package service

import (
	"time"

	"github.com/google/uuid"

	"fleetops/internal/domain"
	"fleetops/internal/geo"
	"fleetops/internal/restriction"
)

// buildTrip assembles the full trip for a cluster: vehicle start, pickups,
// nearest-neighbor sequenced dropoffs, and the empty return leg, with
// per-segment costs and the compliance result for the planned departure.
// A trip with blocking violations is still produced, only flagged.
func (s *ConsolidationService) buildTrip(vehicle *domain.Vehicle, cl *cluster, departAt time.Time) *domain.Trip {
	sequenced := SequenceDeliveries(vehicle.Location, cl.orders)

	stops := make([]domain.Location, 0, 2*len(cl.orders)+2)
	stops = append(stops, vehicle.Location)
	for _, order := range cl.orders {
		stops = append(stops, order.Pickup)
	}
	for _, order := range sequenced {
		stops = append(stops, order.Dropoff)
	}
	returnTo := vehicle.Location
	returnTo.Type = domain.LocationTypeEmptyReturn
	stops = append(stops, returnTo)

	trip := &domain.Trip{
		ID:              uuid.New().String(),
		VehicleID:       vehicle.ID,
		Status:          domain.TripStatusPlanned,
		PlannedDepartAt: departAt,
		CreatedAt:       time.Now(),
	}
	for _, order := range sequenced {
		trip.OrderIDs = append(trip.OrderIDs, order.ID)
	}

	lastDropoff := sequenced[len(sequenced)-1].Dropoff
	for i := 1; i < len(stops); i++ {
		// The return leg runs empty.
		weight := cl.weightKg
		if i == len(stops)-1 {
			weight = 0
		}
		segment := buildSegment(i, stops[i-1], stops[i], weight)
		trip.Segments = append(trip.Segments, segment)
		trip.TotalDistanceKm += segment.DistanceKm
		trip.TotalFuelCost += segment.FuelCost
		trip.TotalTollCost += segment.TollCost
		trip.TotalFuelLiters += geo.FuelConsumption(segment.DistanceKm, weight)
	}
	trip.TotalCost = trip.TotalFuelCost + trip.TotalTollCost
	trip.CO2Kg = geo.CO2Emission(trip.TotalFuelLiters)

	if s.checker != nil {
		check := s.checker.Check(restriction.RouteQuery{
			Origin:      vehicle.Location,
			Destination: lastDropoff,
			DepartAt:    departAt,
		}, restriction.VehicleSpec{WeightKg: cl.weightKg})
		trip.Violations = check.Violations
		trip.Warnings = check.Warnings
	}

	trip.EfficiencyScore = routeOptimizationScore(cl.orders, trip.TotalDistanceKm)
	return trip
}

// buildSegment prices one leg of the route.
func buildSegment(seq int, from, to domain.Location, weightKg float64) domain.RouteSegment {
	dist := geo.Distance(from, to)
	liters := geo.FuelConsumption(dist, weightKg)
	return domain.RouteSegment{
		Seq:        seq,
		From:       from,
		To:         to,
		DistanceKm: dist,
		Duration:   geo.TravelTime(dist),
		FuelCost:   geo.FuelCost(liters),
		TollCost:   geo.TollCost(dist, segmentRoadClass(dist)),
	}
}

// segmentRoadClass guesses the dominant road class of a leg from its
// length: long hauls ride the highway, short hops stay on urban streets.
func segmentRoadClass(distanceKm float64) geo.RoadClass {
	switch {
	case distanceKm > 80:
		return geo.RoadClassHighway
	case distanceKm > 25:
		return geo.RoadClassNational
	default:
		return geo.RoadClassUrban
	}
}

// routeOptimizationScore compares the sum of direct pickup-to-dropoff
// distances against the actual route distance, as a percentage clamped to
// [0, 100].
func routeOptimizationScore(orders []*domain.Order, actualDistanceKm float64) float64 {
	if actualDistanceKm <= 0 {
		return 100
	}
	direct := 0.0
	for _, order := range orders {
		direct += geo.Distance(order.Pickup, order.Dropoff)
	}
	score := direct / actualDistanceKm * 100
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// tripSavings estimates how much the consolidated trip saves against
// running each order as its own direct trip. The estimate can be negative
// when the consolidated detour outweighs the pooling benefit.
func (s *ConsolidationService) tripSavings(trip *domain.Trip, cl *cluster) float64 {
	individual := 0.0
	for _, order := range cl.orders {
		dist := geo.Distance(order.Pickup, order.Dropoff)
		liters := geo.FuelConsumption(dist, order.WeightKg)
		individual += geo.FuelCost(liters) + geo.TollCost(dist, segmentRoadClass(dist))
	}
	return individual - trip.TotalCost
}
