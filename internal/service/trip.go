package service

import (
	"context"
	"database/sql"
	"log"

	"fleetops/internal/domain"
	"fleetops/internal/redis"
	"fleetops/internal/repository"
	"fleetops/internal/repository/postgres"
)

// TripService manages the trip lifecycle after consolidation: PLANNED
// trips start, IN_PROGRESS trips complete. Each transition moves the
// trip's orders and vehicle along with it in one transaction.
type TripService struct {
	db         *sql.DB
	tripRepo   repository.TripRepository
	orderRepo  repository.OrderRepository
	cacheStore *redis.CacheStore
}

// NewTripService creates a new TripService.
func NewTripService(db *sql.DB, tripRepo repository.TripRepository, orderRepo repository.OrderRepository, cacheStore *redis.CacheStore) *TripService {
	return &TripService{
		db:         db,
		tripRepo:   tripRepo,
		orderRepo:  orderRepo,
		cacheStore: cacheStore,
	}
}

// GetTrip retrieves a trip by ID.
func (s *TripService) GetTrip(ctx context.Context, id string) (*domain.Trip, error) {
	if id == "" {
		return nil, ErrInvalidTripID
	}
	return s.tripRepo.GetByID(ctx, id)
}

// GetAllTrips retrieves all trips.
func (s *TripService) GetAllTrips(ctx context.Context) ([]*domain.Trip, error) {
	return s.tripRepo.GetAll(ctx)
}

// StartTrip moves a planned trip to IN_PROGRESS and its orders to
// IN_TRANSIT.
func (s *TripService) StartTrip(ctx context.Context, id string) (*domain.Trip, error) {
	if id == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch trip.Status {
	case domain.TripStatusCompleted:
		return nil, ErrTripAlreadyCompleted
	case domain.TripStatusInProgress:
		return nil, ErrTripNotPlanned
	}

	err = s.inTx(ctx, func(tripRepo *postgres.TripRepository, orderRepo *postgres.OrderRepository, _ *postgres.VehicleRepository) error {
		if err := tripRepo.UpdateStatus(ctx, id, domain.TripStatusInProgress); err != nil {
			return err
		}
		for _, orderID := range trip.OrderIDs {
			if err := orderRepo.UpdateStatus(ctx, orderID, domain.OrderStatusInTransit); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	trip.Status = domain.TripStatusInProgress
	return trip, nil
}

// CompleteTrip moves an in-progress trip to COMPLETED, its orders to
// DELIVERED, and returns the vehicle to the available pool.
func (s *TripService) CompleteTrip(ctx context.Context, id string) (*domain.Trip, error) {
	if id == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	switch trip.Status {
	case domain.TripStatusCompleted:
		return nil, ErrTripAlreadyCompleted
	case domain.TripStatusPlanned:
		return nil, ErrTripNotInProgress
	}

	err = s.inTx(ctx, func(tripRepo *postgres.TripRepository, orderRepo *postgres.OrderRepository, vehicleRepo *postgres.VehicleRepository) error {
		if err := tripRepo.UpdateStatus(ctx, id, domain.TripStatusCompleted); err != nil {
			return err
		}
		for _, orderID := range trip.OrderIDs {
			if err := orderRepo.UpdateStatus(ctx, orderID, domain.OrderStatusDelivered); err != nil {
				return err
			}
		}
		return vehicleRepo.UpdateStatus(ctx, trip.VehicleID, domain.VehicleStatusAvailable)
	})
	if err != nil {
		return nil, err
	}

	if s.cacheStore != nil {
		if err := s.cacheStore.InvalidateVehicle(ctx, trip.VehicleID); err != nil {
			log.Printf("[TRIP] failed to invalidate vehicle cache for %s: %v", trip.VehicleID, err)
		}
		if err := s.cacheStore.AddAvailableVehicle(ctx, trip.VehicleID); err != nil {
			log.Printf("[TRIP] failed to restore vehicle %s to available pool: %v", trip.VehicleID, err)
		}
	}

	trip.Status = domain.TripStatusCompleted
	return trip, nil
}

// inTx runs fn with transaction-scoped repositories, committing on
// success.
func (s *TripService) inTx(ctx context.Context, fn func(*postgres.TripRepository, *postgres.OrderRepository, *postgres.VehicleRepository) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(postgres.NewTripRepositoryWithTx(tx), postgres.NewOrderRepositoryWithTx(tx), postgres.NewVehicleRepositoryWithTx(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
