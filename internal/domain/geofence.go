package domain

import "time"

// GeofenceShape selects how a geofence boundary is defined.
type GeofenceShape string

const (
	GeofenceShapeCircle  GeofenceShape = "CIRCLE"
	GeofenceShapePolygon GeofenceShape = "POLYGON"
)

// GeoPoint is a bare coordinate pair used for geofence geometry.
type GeoPoint struct {
	Lat float64
	Lng float64
}

// GeofencePolicy controls which boundary transitions raise alerts.
type GeofencePolicy struct {
	OnEnter        bool
	OnExit         bool
	OnDwell        bool
	DwellThreshold time.Duration
}

// Geofence is a virtual boundary monitored for a set of vehicles.
type Geofence struct {
	ID         string
	Name       string
	Shape      GeofenceShape
	Center     GeoPoint // Circle shape.
	RadiusKm   float64  // Circle shape.
	Polygon    []GeoPoint
	Policy     GeofencePolicy
	VehicleIDs []string // Monitored vehicles; empty means all.
	CreatedAt  time.Time
}

// Monitors reports whether the geofence watches the given vehicle.
func (g Geofence) Monitors(vehicleID string) bool {
	if len(g.VehicleIDs) == 0 {
		return true
	}
	for _, id := range g.VehicleIDs {
		if id == vehicleID {
			return true
		}
	}
	return false
}

// Valid reports whether the geofence geometry is usable. Malformed
// geofences are skipped during evaluation rather than propagated.
func (g Geofence) Valid() bool {
	switch g.Shape {
	case GeofenceShapeCircle:
		return g.RadiusKm > 0
	case GeofenceShapePolygon:
		return len(g.Polygon) >= 3
	default:
		return false
	}
}
