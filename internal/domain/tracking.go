package domain

import "time"

// MovementStatus classifies a vehicle's motion at a tracking point.
type MovementStatus string

const (
	MovementStatusMoving  MovementStatus = "MOVING"
	MovementStatusStopped MovementStatus = "STOPPED"
	MovementStatusIdle    MovementStatus = "IDLE"
	MovementStatusOffline MovementStatus = "OFFLINE"
)

// TrackingPoint is a single GPS sample for a vehicle. Points are append-only
// per vehicle and must arrive in timestamp order.
type TrackingPoint struct {
	VehicleID    string
	Timestamp    time.Time
	Lat          float64
	Lng          float64
	AccuracyM    float64
	Heading      float64
	SpeedKmh     float64
	Movement     MovementStatus
	FuelLevelPct float64
	OdometerKm   float64
}

// ValidCoordinates reports whether the point's coordinates are within range.
func (p TrackingPoint) ValidCoordinates() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}
