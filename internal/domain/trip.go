package domain

import "time"

// TripStatus represents the current status of a consolidated trip.
type TripStatus string

const (
	TripStatusPlanned    TripStatus = "PLANNED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
)

// RouteSegment is one leg of a multi-stop trip.
type RouteSegment struct {
	Seq        int
	From       Location
	To         Location
	DistanceKm float64
	Duration   time.Duration
	FuelCost   float64
	TollCost   float64
}

// Trip represents a consolidated multi-order delivery trip.
type Trip struct {
	ID              string
	VehicleID       string
	OrderIDs        []string // In delivery sequence.
	Segments        []RouteSegment
	TotalDistanceKm float64
	TotalFuelLiters float64
	TotalFuelCost   float64
	TotalTollCost   float64
	TotalCost       float64
	CO2Kg           float64
	Violations      []Violation // Legal restrictions hit by the planned route.
	Warnings        []string
	Status          TripStatus
	EfficiencyScore float64 // Route optimization score in [0, 100].
	PlannedDepartAt time.Time
	CreatedAt       time.Time
	CompletedAt     time.Time
}

// HasBlockingViolation reports whether any violation blocks execution.
func (t Trip) HasBlockingViolation() bool {
	for _, v := range t.Violations {
		if v.Severity == ViolationSeverityError {
			return true
		}
	}
	return false
}
