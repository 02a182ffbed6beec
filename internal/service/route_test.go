package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"fleetops/internal/domain"
)

type fixedDistanceProvider struct {
	km  float64
	err error
}

func (p fixedDistanceProvider) RoadDistanceKm(_ context.Context, _, _ domain.Location) (float64, error) {
	return p.km, p.err
}

func TestCalculateRouteCostConsistency(t *testing.T) {
	svc := NewRouteService(newTestChecker(t), nil)

	result, err := svc.CalculateRoute(context.Background(), RouteRequest{
		Origin:      loc(10.76, 106.66),
		Destination: loc(10.95, 106.82),
		DepartAt:    time.Date(2026, time.September, 6, 12, 0, 0, 0, time.UTC),
		WeightKg:    3000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.Approximate {
		t.Errorf("expected an approximate result without a provider")
	}
	if result.DistanceKm <= 0 {
		t.Errorf("expected a positive distance, got %.2f", result.DistanceKm)
	}
	if !closeTo(result.Cost.TotalCost, result.Cost.FuelCost+result.Cost.TollCost) {
		t.Errorf("total cost %.1f does not match fuel %.1f + toll %.1f",
			result.Cost.TotalCost, result.Cost.FuelCost, result.Cost.TollCost)
	}
	if result.Cost.CO2Kg <= 0 {
		t.Errorf("expected positive emissions, got %.2f", result.Cost.CO2Kg)
	}
}

func TestCalculateRouteUsesProvider(t *testing.T) {
	svc := NewRouteService(nil, fixedDistanceProvider{km: 42})

	result, err := svc.CalculateRoute(context.Background(), RouteRequest{
		Origin:      loc(10.76, 106.66),
		Destination: loc(10.95, 106.82),
		DepartAt:    time.Now(),
		WeightKg:    1000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DistanceKm != 42 {
		t.Errorf("expected the provider distance 42, got %.2f", result.DistanceKm)
	}
	if result.Approximate {
		t.Errorf("expected an exact result from the provider")
	}
}

func TestCalculateRouteFallsBackOnProviderError(t *testing.T) {
	svc := NewRouteService(nil, fixedDistanceProvider{err: errors.New("routing engine down")})

	result, err := svc.CalculateRoute(context.Background(), RouteRequest{
		Origin:      loc(10.76, 106.66),
		Destination: loc(10.95, 106.82),
		DepartAt:    time.Now(),
		WeightKg:    1000,
	})
	if err != nil {
		t.Fatalf("expected a degraded result, got error: %v", err)
	}
	if !result.Approximate {
		t.Errorf("expected the fallback to be marked approximate")
	}
	if result.DistanceKm <= 0 {
		t.Errorf("expected a positive fallback distance, got %.2f", result.DistanceKm)
	}
}

func TestCalculateRouteRejectsBadCoordinates(t *testing.T) {
	svc := NewRouteService(nil, nil)

	_, err := svc.CalculateRoute(context.Background(), RouteRequest{
		Origin:      loc(120, 106.66),
		Destination: loc(10.95, 106.82),
		DepartAt:    time.Now(),
	})
	if err != ErrInvalidLocation {
		t.Errorf("expected ErrInvalidLocation, got %v", err)
	}
}

func TestCalculateRouteFlagsRushHour(t *testing.T) {
	svc := NewRouteService(newTestChecker(t), nil)

	// Monday 07:00, both endpoints inside the Ho Chi Minh City zone.
	result, err := svc.CalculateRoute(context.Background(), RouteRequest{
		Origin:      loc(10.76, 106.66),
		Destination: loc(10.85, 106.75),
		DepartAt:    time.Date(2026, time.September, 7, 7, 0, 0, 0, time.UTC),
		WeightKg:    5000,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Restrictions.Blocked() {
		t.Errorf("expected a rush-hour departure to be blocked")
	}
	if len(result.Restrictions.AlternativeTimes) == 0 {
		t.Errorf("expected alternative departure times for a blocked route")
	}
}

func TestTrafficAnalysisBands(t *testing.T) {
	cases := []struct {
		hour   int
		level  string
		factor float64
	}{
		{7, "HEAVY", 1.6},
		{17, "HEAVY", 1.6},
		{12, "MODERATE", 1.2},
		{22, "LIGHT", 1.0},
		{3, "LIGHT", 1.0},
	}

	for _, tc := range cases {
		at := time.Date(2026, time.September, 7, tc.hour, 0, 0, 0, time.UTC)
		got := trafficAnalysis(at, time.Hour)
		if got.Level != tc.level || got.Factor != tc.factor {
			t.Errorf("hour %d: expected %s/%.1f, got %s/%.1f", tc.hour, tc.level, tc.factor, got.Level, got.Factor)
		}
		if want := time.Duration(float64(time.Hour) * tc.factor); got.AdjustedDuration != want {
			t.Errorf("hour %d: expected adjusted duration %s, got %s", tc.hour, want, got.AdjustedDuration)
		}
	}
}
