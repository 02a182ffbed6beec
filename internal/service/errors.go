package service

import "errors"

var (
	// ErrInvalidOrderID is returned when an order ID is empty.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrInvalidVehicleID is returned when a vehicle ID is empty.
	ErrInvalidVehicleID = errors.New("invalid vehicle id")

	// ErrInvalidTripID is returned when a trip ID is empty.
	ErrInvalidTripID = errors.New("invalid trip id")

	// ErrInvalidLocation is returned when coordinates are out of range.
	ErrInvalidLocation = errors.New("invalid location")

	// ErrInvalidCargoClass is returned when a cargo class is unknown.
	ErrInvalidCargoClass = errors.New("invalid cargo class")

	// ErrInvalidWeight is returned when an order weight is not positive.
	ErrInvalidWeight = errors.New("invalid weight")

	// ErrInvalidVolume is returned when an order volume is not positive.
	ErrInvalidVolume = errors.New("invalid volume")

	// ErrInvalidCapacity is returned when a vehicle capacity is not positive.
	ErrInvalidCapacity = errors.New("invalid capacity")

	// ErrInvalidGeofence is returned when a geofence shape is unusable.
	ErrInvalidGeofence = errors.New("invalid geofence definition")

	// ErrOutOfOrderPoint is returned when a tracking point is not newer
	// than the vehicle's last recorded point.
	ErrOutOfOrderPoint = errors.New("tracking point out of order")

	// ErrDispatchInProgress is returned when another consolidation pass
	// holds the dispatch lock.
	ErrDispatchInProgress = errors.New("consolidation already in progress")

	// ErrTripNotPlanned is returned when starting a trip that is not in
	// PLANNED state.
	ErrTripNotPlanned = errors.New("trip not in planned state")

	// ErrTripNotInProgress is returned when completing a trip that has not
	// started.
	ErrTripNotInProgress = errors.New("trip not in progress")

	// ErrTripAlreadyCompleted is returned when mutating a completed trip.
	ErrTripAlreadyCompleted = errors.New("trip already completed")
)
