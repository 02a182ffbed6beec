package tests

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"fleetops/internal/config"
	"fleetops/internal/domain"
	"fleetops/internal/service"
)

func trackingConfig() config.TrackingConfig {
	return config.TrackingConfig{
		HistoryCap:      500,
		AlertCap:        200,
		StalenessWindow: 10 * time.Minute,
		SpeedLimitKmh:   80,
		FuelWarnPct:     20,
		FuelCriticalPct: 10,
	}
}

func TestTrackingFlow_IngestMirrorsAndPublishes(t *testing.T) {
	ctx := context.Background()

	alertRepo := NewMockAlertRepository()
	locationStore := NewMockLocationStore()
	broker := service.NewAlertBroker()
	events := broker.Subscribe("dashboard")

	tracking := service.NewTrackingService(trackingConfig(), broker, locationStore, alertRepo)

	alerts, err := tracking.AddTrackingPoint(ctx, domain.TrackingPoint{
		VehicleID: "v1",
		Timestamp: time.Now(),
		Lat:       10.76,
		Lng:       106.66,
		SpeedKmh:  95, // Over the 80 km/h limit.
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(alerts) != 1 || alerts[0].Type != domain.AlertTypeSpeed {
		t.Fatalf("expected a speed alert, got %v", alerts)
	}

	// The alert lands in the repository and the position in the geo index.
	if got := atomic.LoadInt32(&alertRepo.CreateCallCount); got != 1 {
		t.Errorf("expected 1 alert persisted, got %d", got)
	}
	if got := atomic.LoadInt32(&locationStore.UpdateCallCount); got != 1 {
		t.Errorf("expected 1 location update, got %d", got)
	}

	// Subscribers see a position event and an alert event.
	seen := map[service.EventType]int{}
	for i := 0; i < 2; i++ {
		select {
		case evt := <-events:
			seen[evt.Type]++
		default:
			t.Fatalf("expected 2 buffered events, got %d", i)
		}
	}
	if seen[service.EventTypePosition] != 1 || seen[service.EventTypeAlert] != 1 {
		t.Errorf("expected one position and one alert event, got %v", seen)
	}
}

func TestTrackingFlow_StorageFailuresDoNotBlockIngestion(t *testing.T) {
	ctx := context.Background()

	alertRepo := NewMockAlertRepository()
	alertRepo.CreateError = errors.New("database down")
	locationStore := NewMockLocationStore()
	locationStore.UpdateError = errors.New("redis down")

	tracking := service.NewTrackingService(trackingConfig(), nil, locationStore, alertRepo)

	alerts, err := tracking.AddTrackingPoint(ctx, domain.TrackingPoint{
		VehicleID: "v1",
		Timestamp: time.Now(),
		Lat:       10.76,
		Lng:       106.66,
		SpeedKmh:  95,
	})
	if err != nil {
		t.Fatalf("ingestion must survive mirror failures, got: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected the alert to be raised in memory, got %d", len(alerts))
	}
	if got := len(tracking.GetRecentAlerts(0)); got != 1 {
		t.Errorf("expected the alert retained in memory, got %d", got)
	}
}

func TestTrackingFlow_AcknowledgePersists(t *testing.T) {
	ctx := context.Background()

	alertRepo := NewMockAlertRepository()
	tracking := service.NewTrackingService(trackingConfig(), nil, nil, alertRepo)

	alerts, err := tracking.AddTrackingPoint(ctx, domain.TrackingPoint{
		VehicleID: "v1",
		Timestamp: time.Now(),
		Lat:       10.76,
		Lng:       106.66,
		SpeedKmh:  95,
	})
	if err != nil || len(alerts) != 1 {
		t.Fatalf("expected one alert, got %v (%v)", alerts, err)
	}

	if !tracking.AcknowledgeAlert(ctx, alerts[0].ID) {
		t.Fatal("expected acknowledgment to succeed")
	}
	if got := atomic.LoadInt32(&alertRepo.AcknowledgeCallCount); got != 1 {
		t.Errorf("expected acknowledgment persisted once, got %d", got)
	}
}

func TestTrackingFlow_SchedulerIngestsFromSource(t *testing.T) {
	tracking := service.NewTrackingService(trackingConfig(), nil, nil, nil)

	// An out-of-order point from a lagging feed is skipped without
	// aborting the batch.
	base := time.Now()
	source := &stubPointSource{points: []domain.TrackingPoint{
		{VehicleID: "v1", Timestamp: base, Lat: 10.76, Lng: 106.66},
		{VehicleID: "v1", Timestamp: base.Add(-time.Minute), Lat: 10.77, Lng: 106.67},
		{VehicleID: "v1", Timestamp: base.Add(time.Minute), Lat: 10.78, Lng: 106.68},
	}}

	cfg := trackingConfig()
	cfg.EvalInterval = time.Hour
	cfg.IngestInterval = 10 * time.Millisecond
	scheduler := service.NewScheduler(cfg, tracking, source)

	ctx, cancel := context.WithCancel(context.Background())
	scheduler.Start(ctx)
	defer cancel()

	deadline := time.After(2 * time.Second)
	for len(tracking.GetVehicleHistory("v1", 0)) < 2 {
		select {
		case <-deadline:
			t.Fatal("scheduler did not ingest the batch in time")
		case <-time.After(10 * time.Millisecond):
		}
	}
	scheduler.Stop()

	if got := len(tracking.GetVehicleHistory("v1", 0)); got != 2 {
		t.Errorf("expected 2 retained points (out-of-order one skipped), got %d", got)
	}
}

type stubPointSource struct {
	points []domain.TrackingPoint
}

func (s *stubPointSource) Poll(ctx context.Context) ([]domain.TrackingPoint, error) {
	out := s.points
	s.points = nil
	return out, nil
}
