package domain

import "time"

// AlertType identifies what condition produced an alert.
type AlertType string

const (
	AlertTypeGeofence       AlertType = "GEOFENCE"
	AlertTypeSpeed          AlertType = "SPEED"
	AlertTypeFuel           AlertType = "FUEL"
	AlertTypeMaintenance    AlertType = "MAINTENANCE"
	AlertTypePanic          AlertType = "PANIC"
	AlertTypeRouteDeviation AlertType = "ROUTE_DEVIATION"
)

// AlertSeverity ranks how urgent an alert is.
type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "LOW"
	AlertSeverityMedium   AlertSeverity = "MEDIUM"
	AlertSeverityHigh     AlertSeverity = "HIGH"
	AlertSeverityCritical AlertSeverity = "CRITICAL"
)

// Alert is an append-only notification produced by the tracking engine.
// Acknowledgment is the only permitted mutation after creation.
type Alert struct {
	ID           string
	Type         AlertType
	Severity     AlertSeverity
	VehicleID    string
	DriverID     string
	GeofenceID   string // Set for geofence alerts.
	Message      string
	Lat          float64
	Lng          float64
	Timestamp    time.Time
	Acknowledged bool
	ResolvedAt   time.Time
}
