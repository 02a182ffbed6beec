package service

import (
	"context"
	"testing"
	"time"

	"fleetops/internal/config"
	"fleetops/internal/domain"
)

func testTrackingConfig() config.TrackingConfig {
	return config.TrackingConfig{
		HistoryCap:      500,
		AlertCap:        200,
		StalenessWindow: 10 * time.Minute,
		SpeedLimitKmh:   80,
		FuelWarnPct:     20,
		FuelCriticalPct: 10,
	}
}

func newTestTracking(t *testing.T) *TrackingService {
	t.Helper()
	return NewTrackingService(testTrackingConfig(), nil, nil, nil)
}

func point(vehicleID string, at time.Time, lat, lng float64) domain.TrackingPoint {
	return domain.TrackingPoint{
		VehicleID:    vehicleID,
		Timestamp:    at,
		Lat:          lat,
		Lng:          lng,
		SpeedKmh:     40,
		FuelLevelPct: 75,
	}
}

func TestAddTrackingPointRejectsBadInput(t *testing.T) {
	svc := newTestTracking(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := svc.AddTrackingPoint(ctx, point("", now, 10.76, 106.66)); err != ErrInvalidVehicleID {
		t.Errorf("expected ErrInvalidVehicleID, got %v", err)
	}
	if _, err := svc.AddTrackingPoint(ctx, point("v1", now, 95, 106.66)); err != ErrInvalidLocation {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestAddTrackingPointRejectsOutOfOrder(t *testing.T) {
	svc := newTestTracking(t)
	ctx := context.Background()
	now := time.Now()

	if _, err := svc.AddTrackingPoint(ctx, point("v1", now, 10.76, 106.66)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.AddTrackingPoint(ctx, point("v1", now.Add(-time.Minute), 10.77, 106.67)); err != ErrOutOfOrderPoint {
		t.Errorf("expected ErrOutOfOrderPoint for an older point, got %v", err)
	}
	if _, err := svc.AddTrackingPoint(ctx, point("v1", now, 10.77, 106.67)); err != ErrOutOfOrderPoint {
		t.Errorf("expected ErrOutOfOrderPoint for a duplicate timestamp, got %v", err)
	}

	// History keeps only the accepted point.
	if got := len(svc.GetVehicleHistory("v1", 0)); got != 1 {
		t.Errorf("expected 1 retained point, got %d", got)
	}
}

func TestHistoryBounded(t *testing.T) {
	cfg := testTrackingConfig()
	cfg.HistoryCap = 5
	svc := NewTrackingService(cfg, nil, nil, nil)
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 12; i++ {
		p := point("v1", base.Add(time.Duration(i)*time.Second), 10.76, 106.66)
		if _, err := svc.AddTrackingPoint(ctx, p); err != nil {
			t.Fatalf("point %d: %v", i, err)
		}
	}

	history := svc.GetVehicleHistory("v1", 0)
	if len(history) != 5 {
		t.Fatalf("expected history capped at 5, got %d", len(history))
	}
	// The newest points survive.
	if !history[len(history)-1].Timestamp.Equal(base.Add(11 * time.Second)) {
		t.Errorf("expected the newest point to be retained")
	}
}

func TestGeofenceEnterExitEdges(t *testing.T) {
	svc := newTestTracking(t)
	ctx := context.Background()

	if _, err := svc.AddGeofence(domain.Geofence{
		ID:       "depot",
		Name:     "Depot",
		Shape:    domain.GeofenceShapeCircle,
		Center:   domain.GeoPoint{Lat: 10.76, Lng: 106.66},
		RadiusKm: 2,
		Policy:   domain.GeofencePolicy{OnEnter: true, OnExit: true},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := time.Now()
	// Outside, inside, inside, outside: exactly one enter and one exit.
	path := []struct {
		lat, lng float64
	}{
		{10.90, 106.80},
		{10.76, 106.66},
		{10.761, 106.661},
		{10.90, 106.80},
	}

	total := 0
	for i, step := range path {
		alerts, err := svc.AddTrackingPoint(ctx, point("v1", base.Add(time.Duration(i)*time.Minute), step.lat, step.lng))
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		total += len(alerts)
	}

	if total != 2 {
		t.Fatalf("expected exactly 2 geofence alerts (enter + exit), got %d", total)
	}
	for _, a := range svc.GetRecentAlerts(0) {
		if a.Type != domain.AlertTypeGeofence || a.GeofenceID != "depot" {
			t.Errorf("unexpected alert %s/%s", a.Type, a.GeofenceID)
		}
	}
}

func TestGeofenceDwellFiresOnce(t *testing.T) {
	svc := newTestTracking(t)
	ctx := context.Background()

	if _, err := svc.AddGeofence(domain.Geofence{
		ID:       "yard",
		Name:     "Yard",
		Shape:    domain.GeofenceShapeCircle,
		Center:   domain.GeoPoint{Lat: 10.76, Lng: 106.66},
		RadiusKm: 2,
		Policy:   domain.GeofencePolicy{OnDwell: true, DwellThreshold: 5 * time.Minute},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := time.Now()
	steps := []time.Duration{0, 2 * time.Minute, 6 * time.Minute, 9 * time.Minute}
	dwellCount := 0
	for _, offset := range steps {
		alerts, err := svc.AddTrackingPoint(ctx, point("v1", base.Add(offset), 10.76, 106.66))
		if err != nil {
			t.Fatalf("offset %s: %v", offset, err)
		}
		dwellCount += len(alerts)
	}

	if dwellCount != 1 {
		t.Errorf("expected exactly one dwell alert, got %d", dwellCount)
	}
}

func TestGeofencePolicyOffStaysSilent(t *testing.T) {
	svc := newTestTracking(t)
	ctx := context.Background()

	if _, err := svc.AddGeofence(domain.Geofence{
		ID:       "silent",
		Name:     "Silent",
		Shape:    domain.GeofenceShapeCircle,
		Center:   domain.GeoPoint{Lat: 10.76, Lng: 106.66},
		RadiusKm: 2,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	base := time.Now()
	alerts1, _ := svc.AddTrackingPoint(ctx, point("v1", base, 10.90, 106.80))
	alerts2, _ := svc.AddTrackingPoint(ctx, point("v1", base.Add(time.Minute), 10.76, 106.66))
	if len(alerts1)+len(alerts2) != 0 {
		t.Errorf("expected no alerts with all policies off, got %d", len(alerts1)+len(alerts2))
	}
}

func TestAddGeofenceRejectsBadGeometry(t *testing.T) {
	svc := newTestTracking(t)

	if _, err := svc.AddGeofence(domain.Geofence{
		Shape:  domain.GeofenceShapePolygon,
		Policy: domain.GeofencePolicy{OnEnter: true},
		Polygon: []domain.GeoPoint{
			{Lat: 10.76, Lng: 106.66},
			{Lat: 10.77, Lng: 106.67},
		},
	}); err != ErrInvalidGeofence {
		t.Errorf("expected ErrInvalidGeofence for a two-point polygon, got %v", err)
	}
}

func TestCriticalFuelAlertsOnce(t *testing.T) {
	svc := newTestTracking(t)
	ctx := context.Background()

	p := point("v1", time.Now(), 10.76, 106.66)
	p.FuelLevelPct = 8

	alerts, err := svc.AddTrackingPoint(ctx, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fuel := 0
	for _, a := range alerts {
		if a.Type == domain.AlertTypeFuel {
			fuel++
			if a.Severity != domain.AlertSeverityCritical {
				t.Errorf("expected critical severity at 8%%, got %s", a.Severity)
			}
		}
	}
	if fuel != 1 {
		t.Errorf("expected exactly one fuel alert, got %d", fuel)
	}

	// The next point at the same level must not alert again.
	p2 := p
	p2.Timestamp = p.Timestamp.Add(time.Minute)
	alerts2, err := svc.AddTrackingPoint(ctx, p2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, a := range alerts2 {
		if a.Type == domain.AlertTypeFuel {
			t.Errorf("expected no repeat fuel alert at an unchanged level")
		}
	}
}

func TestLowFuelWarning(t *testing.T) {
	svc := newTestTracking(t)

	p := point("v1", time.Now(), 10.76, 106.66)
	p.FuelLevelPct = 15

	alerts, err := svc.AddTrackingPoint(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Type != domain.AlertTypeFuel || alerts[0].Severity != domain.AlertSeverityMedium {
		t.Errorf("expected a single medium fuel alert at 15%%, got %v", alerts)
	}
}

func TestSpeedAlert(t *testing.T) {
	svc := newTestTracking(t)

	p := point("v1", time.Now(), 10.76, 106.66)
	p.SpeedKmh = 95

	alerts, err := svc.AddTrackingPoint(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Type != domain.AlertTypeSpeed || alerts[0].Severity != domain.AlertSeverityHigh {
		t.Errorf("expected a single high-severity speed alert at 95 km/h, got %v", alerts)
	}
}

func TestActiveVehiclesExcludesStale(t *testing.T) {
	svc := newTestTracking(t)
	ctx := context.Background()

	if _, err := svc.AddTrackingPoint(ctx, point("fresh", time.Now(), 10.76, 106.66)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddTrackingPoint(ctx, point("stale", time.Now().Add(-15*time.Minute), 10.76, 106.66)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	active := svc.GetActiveVehicles()
	if len(active) != 1 {
		t.Fatalf("expected 1 active vehicle, got %d", len(active))
	}
	if active[0].VehicleID != "fresh" {
		t.Errorf("expected the fresh vehicle, got %s", active[0].VehicleID)
	}
}

func TestAcknowledgeAlert(t *testing.T) {
	svc := newTestTracking(t)

	p := point("v1", time.Now(), 10.76, 106.66)
	p.SpeedKmh = 95
	alerts, err := svc.AddTrackingPoint(context.Background(), p)
	if err != nil || len(alerts) != 1 {
		t.Fatalf("expected one alert to work with, got %v (%v)", alerts, err)
	}
	id := alerts[0].ID

	if got := len(svc.GetUnacknowledgedAlerts()); got != 1 {
		t.Fatalf("expected 1 unacknowledged alert, got %d", got)
	}

	ctx := context.Background()
	if !svc.AcknowledgeAlert(ctx, id) {
		t.Errorf("expected acknowledgment to succeed")
	}
	if !svc.AcknowledgeAlert(ctx, id) {
		t.Errorf("expected repeat acknowledgment to remain true")
	}
	if svc.AcknowledgeAlert(ctx, "missing") {
		t.Errorf("expected acknowledgment of an unknown ID to fail")
	}
	if got := len(svc.GetUnacknowledgedAlerts()); got != 0 {
		t.Errorf("expected no unacknowledged alerts left, got %d", got)
	}
}

func TestVehicleStatistics(t *testing.T) {
	svc := newTestTracking(t)
	ctx := context.Background()
	base := time.Now()

	p1 := point("v1", base, 10.76, 106.66)
	p1.SpeedKmh = 0
	p2 := point("v1", base.Add(time.Hour), 10.86, 106.66)
	p2.SpeedKmh = 60

	if _, err := svc.AddTrackingPoint(ctx, p1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.AddTrackingPoint(ctx, p2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := svc.GetStatistics("v1")
	if stats == nil {
		t.Fatal("expected statistics for a reporting vehicle")
	}
	if stats.PointCount != 2 {
		t.Errorf("expected 2 points, got %d", stats.PointCount)
	}
	// 0.1 degrees of latitude is roughly 11 km.
	if stats.TotalDistanceKm < 10 || stats.TotalDistanceKm > 13 {
		t.Errorf("expected roughly 11 km, got %.2f", stats.TotalDistanceKm)
	}
	if stats.MaxSpeedKmh != 60 {
		t.Errorf("expected max speed 60, got %.0f", stats.MaxSpeedKmh)
	}
	if stats.StoppedCount != 1 {
		t.Errorf("expected 1 stopped point, got %d", stats.StoppedCount)
	}

	if svc.GetStatistics("unknown") != nil {
		t.Errorf("expected nil statistics for an unknown vehicle")
	}
}

func TestTickFiresDwellForSilentVehicle(t *testing.T) {
	svc := newTestTracking(t)
	ctx := context.Background()

	if _, err := svc.AddGeofence(domain.Geofence{
		ID:       "yard",
		Name:     "Yard",
		Shape:    domain.GeofenceShapeCircle,
		Center:   domain.GeoPoint{Lat: 10.76, Lng: 106.66},
		RadiusKm: 2,
		Policy:   domain.GeofencePolicy{OnDwell: true, DwellThreshold: 5 * time.Minute},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entered := time.Now().Add(-6 * time.Minute)
	if _, err := svc.AddTrackingPoint(ctx, point("v1", entered, 10.76, 106.66)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	svc.Tick(ctx, time.Now())

	dwell := 0
	for _, a := range svc.GetRecentAlerts(0) {
		if a.Type == domain.AlertTypeGeofence && a.GeofenceID == "yard" {
			dwell++
		}
	}
	if dwell != 1 {
		t.Errorf("expected the sweep to raise one dwell alert, got %d", dwell)
	}

	// A second sweep must not re-fire.
	svc.Tick(ctx, time.Now())
	dwell = 0
	for _, a := range svc.GetRecentAlerts(0) {
		if a.Type == domain.AlertTypeGeofence {
			dwell++
		}
	}
	if dwell != 1 {
		t.Errorf("expected dwell to fire once across sweeps, got %d", dwell)
	}
}

func TestRemoveGeofence(t *testing.T) {
	svc := newTestTracking(t)

	g, err := svc.AddGeofence(domain.Geofence{
		Shape:    domain.GeofenceShapeCircle,
		Center:   domain.GeoPoint{Lat: 10.76, Lng: 106.66},
		RadiusKm: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.ID == "" {
		t.Errorf("expected an assigned geofence ID")
	}

	if !svc.RemoveGeofence(g.ID) {
		t.Errorf("expected removal to succeed")
	}
	if svc.RemoveGeofence(g.ID) {
		t.Errorf("expected second removal to fail")
	}
	if got := len(svc.GetGeofences()); got != 0 {
		t.Errorf("expected no geofences left, got %d", got)
	}
}

func TestGetFleetStatistics(t *testing.T) {
	svc := newTestTracking(t)
	ctx := context.Background()
	now := time.Now()

	// v1: active, cruising with a healthy tank.
	if _, err := svc.AddTrackingPoint(ctx, point("v1", now, 10.76, 106.66)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// v2: active, speeding on a near-empty tank. Raises a high speed
	// alert and a critical fuel alert.
	p2 := point("v2", now, 10.77, 106.67)
	p2.SpeedKmh = 95
	p2.FuelLevelPct = 8
	alerts, err := svc.AddTrackingPoint(ctx, p2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 2 {
		t.Fatalf("expected speed and fuel alerts, got %v", alerts)
	}

	// v3: last seen beyond the staleness window.
	if _, err := svc.AddTrackingPoint(ctx, point("v3", now.Add(-15*time.Minute), 10.78, 106.68)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stats := svc.GetFleetStatistics()
	if stats.VehicleCount != 3 {
		t.Errorf("expected 3 known vehicles, got %d", stats.VehicleCount)
	}
	if stats.ActiveVehicles != 2 {
		t.Errorf("expected 2 active vehicles, got %d", stats.ActiveVehicles)
	}
	if !closeEnough(stats.AvgSpeedKmh, (40+95)/2.0) {
		t.Errorf("expected average speed 67.5, got %.2f", stats.AvgSpeedKmh)
	}
	if !closeEnough(stats.AvgFuelLevelPct, (75+8)/2.0) {
		t.Errorf("expected average fuel 41.5, got %.2f", stats.AvgFuelLevelPct)
	}
	if stats.AlertCount != 2 || stats.UnacknowledgedAlerts != 2 {
		t.Errorf("expected 2 alerts, all unacknowledged, got %d/%d", stats.AlertCount, stats.UnacknowledgedAlerts)
	}
	if stats.AlertsBySeverity[domain.AlertSeverityHigh] != 1 ||
		stats.AlertsBySeverity[domain.AlertSeverityCritical] != 1 {
		t.Errorf("unexpected severity breakdown: %v", stats.AlertsBySeverity)
	}

	svc.AcknowledgeAlert(ctx, alerts[0].ID)
	if got := svc.GetFleetStatistics().UnacknowledgedAlerts; got != 1 {
		t.Errorf("expected 1 unacknowledged alert after acknowledgment, got %d", got)
	}
}

func closeEnough(a, b float64) bool {
	diff := a - b
	return diff < 0.001 && diff > -0.001
}

func TestPublishedAlertsAreSnapshots(t *testing.T) {
	broker := NewAlertBroker()
	events := broker.Subscribe("dashboard")
	svc := NewTrackingService(testTrackingConfig(), broker, nil, nil)
	ctx := context.Background()

	p := point("v1", time.Now(), 10.76, 106.66)
	p.SpeedKmh = 95
	alerts, err := svc.AddTrackingPoint(ctx, p)
	if err != nil || len(alerts) != 1 {
		t.Fatalf("expected one speed alert, got %v (%v)", alerts, err)
	}

	var published *domain.Alert
	for len(events) > 0 {
		evt := <-events
		if evt.Type == EventTypeAlert {
			published = evt.Alert
		}
	}
	if published == nil {
		t.Fatal("expected an alert event on the stream")
	}

	// Acknowledging the retained alert must not touch the copy handed to
	// subscribers.
	if !svc.AcknowledgeAlert(ctx, published.ID) {
		t.Fatal("expected acknowledgment to succeed")
	}
	if published.Acknowledged {
		t.Error("published alert must stay an immutable snapshot")
	}
	if got := svc.GetRecentAlerts(0)[0]; !got.Acknowledged {
		t.Error("retained alert must record the acknowledgment")
	}
}
