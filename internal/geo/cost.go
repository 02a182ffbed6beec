package geo

import "time"

// RoadClass selects the toll tariff applied to a route segment.
type RoadClass string

const (
	RoadClassHighway    RoadClass = "HIGHWAY"
	RoadClassNational   RoadClass = "NATIONAL"
	RoadClassProvincial RoadClass = "PROVINCIAL"
	RoadClassUrban      RoadClass = "URBAN"
)

// Cost model constants. Prices are in VND.
const (
	// BaseFuelRateLPerKm is the unladen consumption of a typical truck.
	BaseFuelRateLPerKm = 0.35

	// fuelRatePer10Tonnes is the additional consumption per 10,000 kg of cargo.
	fuelRatePer10Tonnes = 0.05

	// FuelPricePerLiter is the fixed diesel price.
	FuelPricePerLiter = 25000.0

	// CO2KgPerLiter is the emission factor for diesel.
	CO2KgPerLiter = 2.68

	// AverageSpeedKmh converts segment distance into travel time.
	AverageSpeedKmh = 45.0
)

// tollPerKm is the toll tariff by road class, VND per km.
var tollPerKm = map[RoadClass]float64{
	RoadClassHighway:    2000,
	RoadClassNational:   1000,
	RoadClassProvincial: 500,
	RoadClassUrban:      0,
}

// FuelConsumption returns the liters of fuel needed to move the given cargo
// weight over the given distance.
func FuelConsumption(distanceKm, weightKg float64) float64 {
	rate := BaseFuelRateLPerKm + weightKg/10000*fuelRatePer10Tonnes
	return distanceKm * rate
}

// FuelCost converts liters of fuel to VND.
func FuelCost(liters float64) float64 {
	return liters * FuelPricePerLiter
}

// TollCost returns the toll for the given distance on the given road class.
// Unknown classes cost nothing.
func TollCost(distanceKm float64, class RoadClass) float64 {
	return distanceKm * tollPerKm[class]
}

// CO2Emission returns the kilograms of CO2 produced by burning the given
// liters of diesel.
func CO2Emission(liters float64) float64 {
	return liters * CO2KgPerLiter
}

// TravelTime estimates the driving time for a segment at average speed.
func TravelTime(distanceKm float64) time.Duration {
	hours := distanceKm / AverageSpeedKmh
	return time.Duration(hours * float64(time.Hour))
}
