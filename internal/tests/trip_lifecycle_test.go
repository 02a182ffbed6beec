package tests

import (
	"context"
	"errors"
	"testing"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
	"fleetops/internal/service"
)

func TestTripLifecycle_Guards(t *testing.T) {
	ctx := context.Background()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{ID: "planned", VehicleID: "v1", Status: domain.TripStatusPlanned})
	tripRepo.AddTrip(&domain.Trip{ID: "running", VehicleID: "v2", Status: domain.TripStatusInProgress})
	tripRepo.AddTrip(&domain.Trip{ID: "done", VehicleID: "v3", Status: domain.TripStatusCompleted})

	svc := service.NewTripService(nil, tripRepo, NewMockOrderRepository(), nil)

	if _, err := svc.StartTrip(ctx, ""); !errors.Is(err, service.ErrInvalidTripID) {
		t.Errorf("expected ErrInvalidTripID, got %v", err)
	}
	if _, err := svc.StartTrip(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.StartTrip(ctx, "running"); !errors.Is(err, service.ErrTripNotPlanned) {
		t.Errorf("expected ErrTripNotPlanned, got %v", err)
	}
	if _, err := svc.StartTrip(ctx, "done"); !errors.Is(err, service.ErrTripAlreadyCompleted) {
		t.Errorf("expected ErrTripAlreadyCompleted, got %v", err)
	}

	if _, err := svc.CompleteTrip(ctx, "planned"); !errors.Is(err, service.ErrTripNotInProgress) {
		t.Errorf("expected ErrTripNotInProgress, got %v", err)
	}
	if _, err := svc.CompleteTrip(ctx, "done"); !errors.Is(err, service.ErrTripAlreadyCompleted) {
		t.Errorf("expected ErrTripAlreadyCompleted, got %v", err)
	}
}

func TestTripLifecycle_GetTrip(t *testing.T) {
	ctx := context.Background()

	tripRepo := NewMockTripRepository()
	tripRepo.AddTrip(&domain.Trip{ID: "t1", VehicleID: "v1", Status: domain.TripStatusPlanned, OrderIDs: []string{"o1", "o2"}})

	svc := service.NewTripService(nil, tripRepo, NewMockOrderRepository(), nil)

	trip, err := svc.GetTrip(ctx, "t1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if trip.VehicleID != "v1" || len(trip.OrderIDs) != 2 {
		t.Errorf("unexpected trip %+v", trip)
	}

	if _, err := svc.GetTrip(ctx, ""); !errors.Is(err, service.ErrInvalidTripID) {
		t.Errorf("expected ErrInvalidTripID, got %v", err)
	}
	if _, err := svc.GetTrip(ctx, "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
