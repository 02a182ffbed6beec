package service

import (
	"context"
	"log"
	"time"

	"fleetops/internal/domain"
	"fleetops/internal/geo"
	"fleetops/internal/restriction"
)

// DistanceProvider supplies road distances from an external routing source.
// Implementations may fail; the route service then falls back to the
// great-circle approximation.
type DistanceProvider interface {
	RoadDistanceKm(ctx context.Context, from, to domain.Location) (float64, error)
}

// RouteService evaluates a single candidate route: distance, cost, legal
// restrictions, and a time-of-day traffic estimate.
type RouteService struct {
	checker  *restriction.Checker
	provider DistanceProvider // Optional.
}

// NewRouteService creates a new RouteService.
func NewRouteService(checker *restriction.Checker, provider DistanceProvider) *RouteService {
	return &RouteService{checker: checker, provider: provider}
}

// RouteRequest describes the route to evaluate.
type RouteRequest struct {
	Origin      domain.Location
	Destination domain.Location
	DepartAt    time.Time
	WeightKg    float64
	RoadClass   geo.RoadClass // Empty selects a class from the distance.
}

// CostAnalysis is the monetary and emission breakdown of a route.
type CostAnalysis struct {
	FuelLiters float64
	FuelCost   float64
	TollCost   float64
	TotalCost  float64
	CO2Kg      float64
}

// TrafficAnalysis is a coarse time-of-day congestion estimate.
type TrafficAnalysis struct {
	Factor           float64
	Level            string
	AdjustedDuration time.Duration
}

// RouteResult is the full evaluation of one route.
type RouteResult struct {
	Segment      domain.RouteSegment
	DistanceKm   float64
	Duration     time.Duration
	Cost         CostAnalysis
	Restrictions restriction.Result
	Traffic      TrafficAnalysis
	Approximate  bool // True when the road distance fell back to great-circle.
}

// CalculateRoute evaluates the requested route. A failing distance
// provider degrades to the great-circle approximation rather than failing
// the request; "no feasible route" is not an error here.
func (s *RouteService) CalculateRoute(ctx context.Context, req RouteRequest) (*RouteResult, error) {
	if !req.Origin.ValidCoordinates() || !req.Destination.ValidCoordinates() {
		return nil, ErrInvalidLocation
	}

	result := &RouteResult{}

	dist := 0.0
	if s.provider != nil {
		d, err := s.provider.RoadDistanceKm(ctx, req.Origin, req.Destination)
		if err != nil {
			log.Printf("[ROUTE] distance provider failed, using great-circle: %v", err)
			result.Approximate = true
		} else {
			dist = d
		}
	} else {
		result.Approximate = true
	}
	if dist <= 0 {
		dist = geo.Distance(req.Origin, req.Destination)
		result.Approximate = true
	}

	roadClass := req.RoadClass
	if roadClass == "" {
		roadClass = segmentRoadClass(dist)
	}

	liters := geo.FuelConsumption(dist, req.WeightKg)
	duration := geo.TravelTime(dist)

	result.DistanceKm = dist
	result.Duration = duration
	result.Cost = CostAnalysis{
		FuelLiters: liters,
		FuelCost:   geo.FuelCost(liters),
		TollCost:   geo.TollCost(dist, roadClass),
		CO2Kg:      geo.CO2Emission(liters),
	}
	result.Cost.TotalCost = result.Cost.FuelCost + result.Cost.TollCost

	result.Segment = domain.RouteSegment{
		Seq:        1,
		From:       req.Origin,
		To:         req.Destination,
		DistanceKm: dist,
		Duration:   duration,
		FuelCost:   result.Cost.FuelCost,
		TollCost:   result.Cost.TollCost,
	}

	if s.checker != nil {
		result.Restrictions = s.checker.Check(restriction.RouteQuery{
			Origin:      req.Origin,
			Destination: req.Destination,
			DepartAt:    req.DepartAt,
		}, restriction.VehicleSpec{WeightKg: req.WeightKg})
	}

	result.Traffic = trafficAnalysis(req.DepartAt, duration)
	return result, nil
}

// trafficAnalysis maps the departure hour to a congestion factor: rush
// hours are heaviest, midday moderate, night free-flowing.
func trafficAnalysis(departAt time.Time, base time.Duration) TrafficAnalysis {
	hour := departAt.Hour()

	factor := 1.0
	level := "LIGHT"
	switch {
	case (hour >= 6 && hour < 9) || (hour >= 16 && hour < 20):
		factor = 1.6
		level = "HEAVY"
	case hour >= 9 && hour < 16:
		factor = 1.2
		level = "MODERATE"
	}

	return TrafficAnalysis{
		Factor:           factor,
		Level:            level,
		AdjustedDuration: time.Duration(float64(base) * factor),
	}
}
