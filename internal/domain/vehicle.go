package domain

// VehicleStatus represents the current status of a vehicle.
type VehicleStatus string

const (
	VehicleStatusAvailable   VehicleStatus = "AVAILABLE"
	VehicleStatusOnTrip      VehicleStatus = "ON_TRIP"
	VehicleStatusMaintenance VehicleStatus = "MAINTENANCE"
)

// Vehicle represents a truck in the fleet.
type Vehicle struct {
	ID              string
	PlateNumber     string
	CapacityKg      float64
	CapacityM3      float64
	CargoClasses    []CargoClass // Cargo classes this vehicle can carry.
	Location        Location
	Status          VehicleStatus
	FuelRateLPerKm  float64 // Base fuel consumption, liters per km.
	DriverID        string
}

// CanCarry reports whether the vehicle is compatible with the given cargo class.
func (v Vehicle) CanCarry(class CargoClass) bool {
	for _, c := range v.CargoClasses {
		if c == class {
			return true
		}
	}
	return false
}

// HasCapacity reports whether the vehicle can hold the given load.
func (v Vehicle) HasCapacity(weightKg, volumeM3 float64) bool {
	return weightKg <= v.CapacityKg && volumeM3 <= v.CapacityM3
}
