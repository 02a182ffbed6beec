package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"fleetops/internal/config"
	"fleetops/internal/domain"
	"fleetops/internal/geo"
	"fleetops/internal/redis"
	"fleetops/internal/repository"
)

// movingSpeedKmh is the speed above which a point without an explicit
// movement status counts as moving.
const movingSpeedKmh = 3.0

// vehicleState is the per-vehicle tracking record. History is a bounded
// ring: once full, the oldest point is dropped for each new one.
type vehicleState struct {
	history    []domain.TrackingPoint
	last       *domain.TrackingPoint
	inside     map[string]time.Time // Geofence ID -> entry time.
	dwellFired map[string]bool      // Geofence ID -> dwell alert already raised.
	fuelAlert  domain.AlertSeverity // Last fuel severity alerted, "" when none.
}

// VehicleStatistics summarizes a vehicle's recorded tracking history.
type VehicleStatistics struct {
	VehicleID       string
	PointCount      int
	TotalDistanceKm float64
	AvgSpeedKmh     float64
	MaxSpeedKmh     float64
	StoppedCount    int
	FirstSeen       time.Time
	LastSeen        time.Time
}

// FleetStatistics is an aggregate snapshot of the whole fleet.
type FleetStatistics struct {
	VehicleCount         int
	ActiveVehicles       int
	AvgSpeedKmh          float64 // Over active vehicles.
	AvgFuelLevelPct      float64 // Over active vehicles with a fuel reading.
	AlertCount           int
	UnacknowledgedAlerts int
	AlertsBySeverity     map[domain.AlertSeverity]int
}

// TrackingService is the real-time tracking engine: it ingests GPS points,
// keeps bounded per-vehicle history, evaluates geofences and vehicle-health
// thresholds, and maintains the bounded alert list. All state lives in
// memory; Redis and Postgres receive best-effort mirrors that never fail
// an ingestion.
type TrackingService struct {
	mu        sync.Mutex
	cfg       config.TrackingConfig
	states    map[string]*vehicleState
	geofences map[string]*domain.Geofence
	alerts    []*domain.Alert

	broker    *AlertBroker
	locStore  redis.LocationStoreInterface
	alertRepo repository.AlertRepository
}

// NewTrackingService creates a new TrackingService. The broker, location
// store, and alert repository are all optional.
func NewTrackingService(
	cfg config.TrackingConfig,
	broker *AlertBroker,
	locStore redis.LocationStoreInterface,
	alertRepo repository.AlertRepository,
) *TrackingService {
	return &TrackingService{
		cfg:       cfg,
		states:    make(map[string]*vehicleState),
		geofences: make(map[string]*domain.Geofence),
		broker:    broker,
		locStore:  locStore,
		alertRepo: alertRepo,
	}
}

// AddGeofence registers a geofence for monitoring. A missing ID is
// assigned. Malformed geometry is rejected.
func (s *TrackingService) AddGeofence(g domain.Geofence) (*domain.Geofence, error) {
	if !g.Valid() {
		return nil, ErrInvalidGeofence
	}
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}

	s.mu.Lock()
	s.geofences[g.ID] = &g
	s.mu.Unlock()

	return &g, nil
}

// RemoveGeofence deletes a geofence. Returns false when the ID is unknown.
func (s *TrackingService) RemoveGeofence(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.geofences[id]; !ok {
		return false
	}
	delete(s.geofences, id)
	for _, st := range s.states {
		delete(st.inside, id)
		delete(st.dwellFired, id)
	}
	return true
}

// GetGeofences returns all registered geofences.
func (s *TrackingService) GetGeofences() []*domain.Geofence {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]*domain.Geofence, 0, len(s.geofences))
	for _, g := range s.geofences {
		out = append(out, g)
	}
	return out
}

// AddTrackingPoint ingests one GPS sample. Points must arrive in strictly
// increasing timestamp order per vehicle; stale or duplicate timestamps are
// rejected with ErrOutOfOrderPoint. Ingestion evaluates geofence
// transitions, speed, and fuel thresholds, and returns the alerts the point
// produced.
func (s *TrackingService) AddTrackingPoint(ctx context.Context, point domain.TrackingPoint) ([]*domain.Alert, error) {
	if point.VehicleID == "" {
		return nil, ErrInvalidVehicleID
	}
	if !point.ValidCoordinates() {
		return nil, ErrInvalidLocation
	}
	if point.Timestamp.IsZero() {
		point.Timestamp = time.Now()
	}
	if point.Movement == "" {
		if point.SpeedKmh > movingSpeedKmh {
			point.Movement = domain.MovementStatusMoving
		} else {
			point.Movement = domain.MovementStatusStopped
		}
	}

	s.mu.Lock()
	st := s.states[point.VehicleID]
	if st == nil {
		st = &vehicleState{
			inside:     make(map[string]time.Time),
			dwellFired: make(map[string]bool),
		}
		s.states[point.VehicleID] = st
	}
	if st.last != nil && !point.Timestamp.After(st.last.Timestamp) {
		s.mu.Unlock()
		return nil, ErrOutOfOrderPoint
	}

	st.history = append(st.history, point)
	if s.cfg.HistoryCap > 0 && len(st.history) > s.cfg.HistoryCap {
		st.history = st.history[len(st.history)-s.cfg.HistoryCap:]
	}
	st.last = &st.history[len(st.history)-1]

	var raised []*domain.Alert
	raised = append(raised, s.evaluateGeofences(st, point)...)
	if a := s.evaluateSpeed(point); a != nil {
		raised = append(raised, a)
	}
	if a := s.evaluateFuel(st, point); a != nil {
		raised = append(raised, a)
	}
	for _, a := range raised {
		s.recordAlert(a)
	}
	s.mu.Unlock()

	s.mirror(ctx, point, raised)
	return raised, nil
}

// mirror pushes the point and its alerts to the geo index, the alert
// table, and the broker. All best-effort.
func (s *TrackingService) mirror(ctx context.Context, point domain.TrackingPoint, alerts []*domain.Alert) {
	if s.locStore != nil {
		if err := s.locStore.UpdateLocation(ctx, point.VehicleID, point.Lat, point.Lng); err != nil {
			log.Printf("[TRACKING] failed to update location index for %s: %v", point.VehicleID, err)
		}
	}
	if s.alertRepo != nil {
		for _, a := range alerts {
			if err := s.alertRepo.Create(ctx, a); err != nil {
				log.Printf("[TRACKING] failed to persist alert %s: %v", a.ID, err)
			}
		}
	}
	if s.broker != nil {
		s.broker.Publish(Event{Type: EventTypePosition, Point: &point})
		for _, a := range alerts {
			// Subscribers get a snapshot; the retained alert keeps
			// mutating through acknowledgment.
			snapshot := *a
			s.broker.Publish(Event{Type: EventTypeAlert, Alert: &snapshot})
		}
	}
}

// evaluateGeofences detects boundary transitions for every geofence
// monitoring the vehicle. Only edges alert: a vehicle sitting inside a
// fence produces at most one enter, one dwell, and one exit. Called with
// the state lock held.
func (s *TrackingService) evaluateGeofences(st *vehicleState, point domain.TrackingPoint) []*domain.Alert {
	var alerts []*domain.Alert

	for id, g := range s.geofences {
		if !g.Valid() || !g.Monitors(point.VehicleID) {
			continue
		}

		inside := false
		switch g.Shape {
		case domain.GeofenceShapeCircle:
			inside = geo.InCircle(point.Lat, point.Lng, g.Center, g.RadiusKm)
		case domain.GeofenceShapePolygon:
			inside = geo.InPolygon(point.Lat, point.Lng, g.Polygon)
		}

		enteredAt, wasInside := st.inside[id]
		switch {
		case inside && !wasInside:
			st.inside[id] = point.Timestamp
			delete(st.dwellFired, id)
			if g.Policy.OnEnter {
				alerts = append(alerts, s.geofenceAlert(g, point, fmt.Sprintf("vehicle %s entered geofence %s", point.VehicleID, g.Name)))
			}
		case !inside && wasInside:
			delete(st.inside, id)
			delete(st.dwellFired, id)
			if g.Policy.OnExit {
				alerts = append(alerts, s.geofenceAlert(g, point, fmt.Sprintf("vehicle %s exited geofence %s", point.VehicleID, g.Name)))
			}
		case inside && wasInside:
			if g.Policy.OnDwell && !st.dwellFired[id] &&
				g.Policy.DwellThreshold > 0 &&
				point.Timestamp.Sub(enteredAt) >= g.Policy.DwellThreshold {
				st.dwellFired[id] = true
				alerts = append(alerts, s.geofenceAlert(g, point, fmt.Sprintf(
					"vehicle %s dwelling in geofence %s for over %s", point.VehicleID, g.Name, g.Policy.DwellThreshold)))
			}
		}
	}

	return alerts
}

func (s *TrackingService) geofenceAlert(g *domain.Geofence, point domain.TrackingPoint, message string) *domain.Alert {
	return &domain.Alert{
		ID:         uuid.New().String(),
		Type:       domain.AlertTypeGeofence,
		Severity:   domain.AlertSeverityMedium,
		VehicleID:  point.VehicleID,
		GeofenceID: g.ID,
		Message:    message,
		Lat:        point.Lat,
		Lng:        point.Lng,
		Timestamp:  point.Timestamp,
	}
}

// evaluateSpeed alerts when the reported speed exceeds the configured
// limit.
func (s *TrackingService) evaluateSpeed(point domain.TrackingPoint) *domain.Alert {
	if s.cfg.SpeedLimitKmh <= 0 || point.SpeedKmh <= s.cfg.SpeedLimitKmh {
		return nil
	}
	return &domain.Alert{
		ID:        uuid.New().String(),
		Type:      domain.AlertTypeSpeed,
		Severity:  domain.AlertSeverityHigh,
		VehicleID: point.VehicleID,
		Message:   fmt.Sprintf("vehicle %s at %.0f km/h exceeds the %.0f km/h limit", point.VehicleID, point.SpeedKmh, s.cfg.SpeedLimitKmh),
		Lat:       point.Lat,
		Lng:       point.Lng,
		Timestamp: point.Timestamp,
	}
}

// evaluateFuel alerts on low fuel, once per severity band: a vehicle
// crossing below the critical threshold raises a single critical alert,
// not a warning plus a critical. A zero fuel level means the sensor did
// not report; telematics units that do report send a small positive
// reading down to the reserve. Called with the state lock held.
func (s *TrackingService) evaluateFuel(st *vehicleState, point domain.TrackingPoint) *domain.Alert {
	if point.FuelLevelPct <= 0 {
		return nil
	}

	var severity domain.AlertSeverity
	switch {
	case point.FuelLevelPct < s.cfg.FuelCriticalPct:
		severity = domain.AlertSeverityCritical
	case point.FuelLevelPct < s.cfg.FuelWarnPct:
		severity = domain.AlertSeverityMedium
	default:
		st.fuelAlert = ""
		return nil
	}
	if st.fuelAlert == severity {
		return nil
	}
	st.fuelAlert = severity

	return &domain.Alert{
		ID:        uuid.New().String(),
		Type:      domain.AlertTypeFuel,
		Severity:  severity,
		VehicleID: point.VehicleID,
		Message:   fmt.Sprintf("vehicle %s fuel level at %.0f%%", point.VehicleID, point.FuelLevelPct),
		Lat:       point.Lat,
		Lng:       point.Lng,
		Timestamp: point.Timestamp,
	}
}

// recordAlert prepends an alert to the bounded list. Called with the state
// lock held.
func (s *TrackingService) recordAlert(a *domain.Alert) {
	s.alerts = append([]*domain.Alert{a}, s.alerts...)
	if s.cfg.AlertCap > 0 && len(s.alerts) > s.cfg.AlertCap {
		s.alerts = s.alerts[:s.cfg.AlertCap]
	}
}

// Tick runs the periodic sweep: dwell thresholds are re-checked against
// wall-clock time so a vehicle that stops reporting while parked inside a
// fence still raises its dwell alert, and vehicles past the staleness
// window are flagged offline.
func (s *TrackingService) Tick(ctx context.Context, now time.Time) {
	s.mu.Lock()
	var raised []*domain.Alert

	for vehicleID, st := range s.states {
		if st.last == nil {
			continue
		}
		if now.Sub(st.last.Timestamp) > s.cfg.StalenessWindow {
			st.last.Movement = domain.MovementStatusOffline
			continue
		}

		for id, enteredAt := range st.inside {
			g, ok := s.geofences[id]
			if !ok || !g.Policy.OnDwell || st.dwellFired[id] || g.Policy.DwellThreshold <= 0 {
				continue
			}
			if now.Sub(enteredAt) >= g.Policy.DwellThreshold {
				st.dwellFired[id] = true
				a := s.geofenceAlert(g, *st.last, fmt.Sprintf(
					"vehicle %s dwelling in geofence %s for over %s", vehicleID, g.Name, g.Policy.DwellThreshold))
				a.Timestamp = now
				raised = append(raised, a)
			}
		}
	}
	for _, a := range raised {
		s.recordAlert(a)
	}
	s.mu.Unlock()

	for _, a := range raised {
		if s.alertRepo != nil {
			if err := s.alertRepo.Create(ctx, a); err != nil {
				log.Printf("[TRACKING] failed to persist alert %s: %v", a.ID, err)
			}
		}
		if s.broker != nil {
			snapshot := *a
			s.broker.Publish(Event{Type: EventTypeAlert, Alert: &snapshot})
		}
	}
}

// GetLastPosition returns a vehicle's most recent tracking point, or nil
// when the vehicle has never reported.
func (s *TrackingService) GetLastPosition(vehicleID string) *domain.TrackingPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[vehicleID]
	if st == nil || st.last == nil {
		return nil
	}
	p := *st.last
	return &p
}

// GetVehicleHistory returns up to limit of the vehicle's most recent
// points, oldest first. A non-positive limit returns the full retained
// history.
func (s *TrackingService) GetVehicleHistory(vehicleID string, limit int) []domain.TrackingPoint {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[vehicleID]
	if st == nil {
		return nil
	}
	history := st.history
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return append([]domain.TrackingPoint(nil), history...)
}

// GetActiveVehicles returns the last point of every vehicle that reported
// within the staleness window.
func (s *TrackingService) GetActiveVehicles() []domain.TrackingPoint {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var active []domain.TrackingPoint
	for _, st := range s.states {
		if st.last == nil {
			continue
		}
		if now.Sub(st.last.Timestamp) <= s.cfg.StalenessWindow {
			active = append(active, *st.last)
		}
	}
	return active
}

// GetRecentAlerts returns up to limit alerts, newest first.
func (s *TrackingService) GetRecentAlerts(limit int) []*domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	alerts := s.alerts
	if limit > 0 && len(alerts) > limit {
		alerts = alerts[:limit]
	}
	return append([]*domain.Alert(nil), alerts...)
}

// GetUnacknowledgedAlerts returns all unacknowledged alerts, newest first.
func (s *TrackingService) GetUnacknowledgedAlerts() []*domain.Alert {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*domain.Alert
	for _, a := range s.alerts {
		if !a.Acknowledged {
			out = append(out, a)
		}
	}
	return out
}

// AcknowledgeAlert marks an alert acknowledged. Acknowledging twice is a
// no-op. Returns false when the ID is unknown.
func (s *TrackingService) AcknowledgeAlert(ctx context.Context, id string) bool {
	s.mu.Lock()
	var found *domain.Alert
	for _, a := range s.alerts {
		if a.ID == id {
			found = a
			break
		}
	}
	if found != nil && !found.Acknowledged {
		found.Acknowledged = true
		found.ResolvedAt = time.Now()
	}
	s.mu.Unlock()

	if found == nil {
		return false
	}
	if s.alertRepo != nil {
		if err := s.alertRepo.Acknowledge(ctx, id); err != nil {
			log.Printf("[TRACKING] failed to persist acknowledgment for %s: %v", id, err)
		}
	}
	return true
}

// GetFleetStatistics summarizes the fleet: how many vehicles are known
// and active, their average speed and fuel level, and the retained alert
// counts broken down by severity. Averages cover active vehicles only;
// vehicles without a fuel reading are left out of the fuel average.
func (s *TrackingService) GetFleetStatistics() *FleetStatistics {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	stats := &FleetStatistics{
		AlertsBySeverity: make(map[domain.AlertSeverity]int),
	}

	var speedSum, fuelSum float64
	fuelCount := 0
	for _, st := range s.states {
		if st.last == nil {
			continue
		}
		stats.VehicleCount++
		if now.Sub(st.last.Timestamp) > s.cfg.StalenessWindow {
			continue
		}
		stats.ActiveVehicles++
		speedSum += st.last.SpeedKmh
		if st.last.FuelLevelPct > 0 {
			fuelSum += st.last.FuelLevelPct
			fuelCount++
		}
	}
	if stats.ActiveVehicles > 0 {
		stats.AvgSpeedKmh = speedSum / float64(stats.ActiveVehicles)
	}
	if fuelCount > 0 {
		stats.AvgFuelLevelPct = fuelSum / float64(fuelCount)
	}

	stats.AlertCount = len(s.alerts)
	for _, a := range s.alerts {
		stats.AlertsBySeverity[a.Severity]++
		if !a.Acknowledged {
			stats.UnacknowledgedAlerts++
		}
	}

	return stats
}

// GetStatistics summarizes a vehicle's retained history. Distance is the
// sum of great-circle hops between consecutive points; average speed is
// taken over the reporting span.
func (s *TrackingService) GetStatistics(vehicleID string) *VehicleStatistics {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.states[vehicleID]
	if st == nil || len(st.history) == 0 {
		return nil
	}

	stats := &VehicleStatistics{
		VehicleID:  vehicleID,
		PointCount: len(st.history),
		FirstSeen:  st.history[0].Timestamp,
		LastSeen:   st.history[len(st.history)-1].Timestamp,
	}
	for i, p := range st.history {
		if i > 0 {
			prev := st.history[i-1]
			stats.TotalDistanceKm += geo.HaversineKm(prev.Lat, prev.Lng, p.Lat, p.Lng)
		}
		if p.SpeedKmh > stats.MaxSpeedKmh {
			stats.MaxSpeedKmh = p.SpeedKmh
		}
		if p.Movement == domain.MovementStatusStopped {
			stats.StoppedCount++
		}
	}
	if span := stats.LastSeen.Sub(stats.FirstSeen); span > 0 {
		stats.AvgSpeedKmh = stats.TotalDistanceKm / span.Hours()
	}
	return stats
}
