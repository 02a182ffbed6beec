package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"fleetops/internal/config"
	"fleetops/internal/domain"
	"fleetops/internal/geo"
	"fleetops/internal/redis"
	"fleetops/internal/repository"
	"fleetops/internal/repository/postgres"
	"fleetops/internal/restriction"
)

const (
	vehicleLockTTL  = 10 * time.Second
	dispatchLockTTL = 30 * time.Second // Lock the whole pass while vehicles are claimed.
)

// ConsolidationService groups pending orders into clusters and assigns each
// cluster to the best-fitting available vehicle.
type ConsolidationService struct {
	db          *sql.DB
	cfg         config.DispatchConfig
	checker     *restriction.Checker
	orderRepo   repository.OrderRepository
	vehicleRepo repository.VehicleRepository
	tripRepo    repository.TripRepository
	lockStore   redis.LockStoreInterface
	cacheStore  *redis.CacheStore
}

// NewConsolidationService creates a new ConsolidationService.
func NewConsolidationService(
	db *sql.DB,
	cfg config.DispatchConfig,
	checker *restriction.Checker,
	orderRepo repository.OrderRepository,
	vehicleRepo repository.VehicleRepository,
	tripRepo repository.TripRepository,
	lockStore redis.LockStoreInterface,
	cacheStore *redis.CacheStore,
) *ConsolidationService {
	return &ConsolidationService{
		db:          db,
		cfg:         cfg,
		checker:     checker,
		orderRepo:   orderRepo,
		vehicleRepo: vehicleRepo,
		tripRepo:    tripRepo,
		lockStore:   lockStore,
		cacheStore:  cacheStore,
	}
}

// ConsolidationResult is the outcome of one consolidation pass. Clusters
// that no vehicle can serve are surfaced as UnassignedOrders, never
// discarded.
type ConsolidationResult struct {
	Trips            []*domain.Trip
	UnassignedOrders []*domain.Order
	EfficiencyScore  float64 // Assigned orders / pending orders, as a percentage.
	CostSavings      float64 // Individual-trip cost minus consolidated cost, VND.
	Recommendations  []string
}

// ConsolidatePending runs a consolidation pass over all pending orders and
// available vehicles, persisting the produced trips. The pass is serialized
// by the dispatch lock.
func (s *ConsolidationService) ConsolidatePending(ctx context.Context, departAt time.Time) (*ConsolidationResult, error) {
	if s.cacheStore != nil {
		locked, err := s.cacheStore.AcquireDispatchLock(ctx, dispatchLockTTL)
		if err != nil {
			return nil, err
		}
		if !locked {
			return nil, ErrDispatchInProgress
		}
		defer func() {
			if err := s.cacheStore.ReleaseDispatchLock(ctx); err != nil {
				log.Printf("[DISPATCH] failed to release dispatch lock: %v", err)
			}
		}()
	}

	orders, err := s.orderRepo.GetByStatus(ctx, domain.OrderStatusPending)
	if err != nil {
		return nil, err
	}
	vehicles, err := s.vehicleRepo.GetByStatus(ctx, domain.VehicleStatusAvailable)
	if err != nil {
		return nil, err
	}

	result := s.ConsolidateTrips(orders, vehicles, departAt)

	for _, trip := range result.Trips {
		if err := s.persistTrip(ctx, trip); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ConsolidateTrips runs the consolidation algorithm over the given orders
// and vehicles without touching storage. Orders are clustered by dropoff
// proximity and cargo class in arrival order, then each cluster is matched
// to the vehicle maximizing the utilization score. A cluster is assigned
// whole or not at all.
func (s *ConsolidationService) ConsolidateTrips(orders []*domain.Order, vehicles []*domain.Vehicle, departAt time.Time) *ConsolidationResult {
	result := &ConsolidationResult{}
	if len(orders) == 0 {
		result.EfficiencyScore = 0
		result.Recommendations = append(result.Recommendations, "no pending orders to consolidate")
		return result
	}

	pool := append([]*domain.Vehicle(nil), vehicles...)
	assignedCount := 0

	for _, cl := range s.clusterOrders(orders) {
		vehicle, idx := s.selectVehicle(cl, pool)
		if vehicle == nil {
			result.UnassignedOrders = append(result.UnassignedOrders, cl.orders...)
			result.Recommendations = append(result.Recommendations, fmt.Sprintf(
				"%d order(s) unassigned: no available vehicle fits %.0f kg / %.1f m3 of %s cargo",
				len(cl.orders), cl.weightKg, cl.volumeM3, cl.class))
			continue
		}

		// One vehicle serves at most one trip per pass.
		pool = append(pool[:idx], pool[idx+1:]...)
		vehicle.Status = domain.VehicleStatusOnTrip

		trip := s.buildTrip(vehicle, cl, departAt)
		result.Trips = append(result.Trips, trip)
		result.CostSavings += s.tripSavings(trip, cl)
		assignedCount += len(cl.orders)

		if trip.HasBlockingViolation() {
			result.Recommendations = append(result.Recommendations, fmt.Sprintf(
				"trip %s has blocking restriction violations; consider an alternative departure time", trip.ID))
		}
	}

	result.EfficiencyScore = float64(assignedCount) / float64(len(orders)) * 100
	if len(result.UnassignedOrders) == 0 && len(result.Trips) > 0 {
		result.Recommendations = append(result.Recommendations, fmt.Sprintf(
			"all %d pending orders consolidated into %d trip(s)", assignedCount, len(result.Trips)))
	}

	return result
}

// cluster is a group of orders deliverable by a single vehicle.
type cluster struct {
	orders   []*domain.Order
	class    domain.CargoClass
	weightKg float64
	volumeM3 float64
}

// clusterOrders groups pending orders by dropoff proximity and cargo class.
// The first unclustered order seeds each cluster, so input order decides
// tie-breaks.
func (s *ConsolidationService) clusterOrders(orders []*domain.Order) []*cluster {
	var clusters []*cluster
	used := make([]bool, len(orders))

	for i, seed := range orders {
		if used[i] {
			continue
		}
		used[i] = true

		cl := &cluster{class: seed.CargoClass}
		cl.add(seed)

		for j := i + 1; j < len(orders); j++ {
			if used[j] {
				continue
			}
			candidate := orders[j]
			if candidate.CargoClass != seed.CargoClass {
				continue
			}
			if geo.Distance(seed.Dropoff, candidate.Dropoff) > s.cfg.ConsolidationRadiusKm {
				continue
			}
			used[j] = true
			cl.add(candidate)
		}

		clusters = append(clusters, cl)
	}

	return clusters
}

func (c *cluster) add(order *domain.Order) {
	c.orders = append(c.orders, order)
	c.weightKg += order.WeightKg
	c.volumeM3 += order.VolumeM3
}

// selectVehicle picks the available vehicle maximizing the weighted
// efficiency score over capacity utilization and fuel economy. Returns nil
// when no vehicle has the capacity and cargo-class compatibility.
func (s *ConsolidationService) selectVehicle(cl *cluster, pool []*domain.Vehicle) (*domain.Vehicle, int) {
	var best *domain.Vehicle
	bestIdx := -1
	bestScore := 0.0

	for i, v := range pool {
		if !v.CanCarry(cl.class) || !v.HasCapacity(cl.weightKg, cl.volumeM3) {
			continue
		}

		score := s.cfg.WeightUtilWeight*(cl.weightKg/v.CapacityKg) +
			s.cfg.VolumeUtilWeight*(cl.volumeM3/v.CapacityM3)
		if v.FuelRateLPerKm > 0 {
			score += s.cfg.FuelRateWeight * (1 / v.FuelRateLPerKm)
		}

		// Strict greater-than: the earlier vehicle wins ties.
		if best == nil || score > bestScore {
			best = v
			bestIdx = i
			bestScore = score
		}
	}

	return best, bestIdx
}

// persistTrip commits a trip, its order assignments, and the vehicle status
// flip in a single transaction, guarded by the per-vehicle lock.
func (s *ConsolidationService) persistTrip(ctx context.Context, trip *domain.Trip) (err error) {
	if s.lockStore != nil {
		locked, lockErr := s.lockStore.AcquireVehicleLock(ctx, trip.VehicleID, vehicleLockTTL)
		if lockErr != nil {
			return lockErr
		}
		if !locked {
			return fmt.Errorf("vehicle %s is locked by another assignment", trip.VehicleID)
		}
		defer func() {
			_ = s.lockStore.ReleaseVehicleLock(ctx, trip.VehicleID)
		}()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	txTripRepo := postgres.NewTripRepositoryWithTx(tx)
	txOrderRepo := postgres.NewOrderRepositoryWithTx(tx)
	txVehicleRepo := postgres.NewVehicleRepositoryWithTx(tx)

	if err = txTripRepo.Create(ctx, trip); err != nil {
		return err
	}
	for _, orderID := range trip.OrderIDs {
		if err = txOrderRepo.AssignToTrip(ctx, orderID, trip.ID); err != nil {
			return err
		}
	}
	if err = txVehicleRepo.UpdateStatus(ctx, trip.VehicleID, domain.VehicleStatusOnTrip); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	if s.cacheStore != nil {
		_ = s.cacheStore.InvalidateVehicle(ctx, trip.VehicleID)
		_ = s.cacheStore.RemoveAvailableVehicle(ctx, trip.VehicleID)
	}

	return nil
}
