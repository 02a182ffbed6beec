package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/lib/pq"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
// Route segments and violations are stored as JSON documents; they are
// written once at trip creation and never updated piecemeal.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, vehicle_id, order_ids, segments, violations, warnings,
	total_distance_km, total_fuel_liters, total_fuel_cost, total_toll_cost, total_cost, co2_kg,
	status, efficiency_score, planned_depart_at, created_at, completed_at`

// Create adds a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	segments, err := json.Marshal(trip.Segments)
	if err != nil {
		return err
	}
	violations, err := json.Marshal(trip.Violations)
	if err != nil {
		return err
	}

	query := `INSERT INTO trips (
		id, vehicle_id, order_ids, segments, violations, warnings,
		total_distance_km, total_fuel_liters, total_fuel_cost, total_toll_cost, total_cost, co2_kg,
		status, efficiency_score, planned_depart_at, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = r.q.ExecContext(ctx, query,
		trip.ID, trip.VehicleID, pq.Array(trip.OrderIDs), segments, violations, pq.Array(trip.Warnings),
		trip.TotalDistanceKm, trip.TotalFuelLiters, trip.TotalFuelCost, trip.TotalTollCost, trip.TotalCost, trip.CO2Kg,
		trip.Status, trip.EfficiencyScore, trip.PlannedDepartAt, trip.CreatedAt,
	)
	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

// GetAll retrieves all trips, newest first.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC, id`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// GetActiveByVehicleID retrieves the active trip for a vehicle, if any.
func (r *TripRepository) GetActiveByVehicleID(ctx context.Context, vehicleID string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE vehicle_id = $1 AND status != $2 LIMIT 1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, vehicleID, domain.TripStatusCompleted))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // No active trip.
		}
		return nil, err
	}
	return trip, nil
}

// UpdateStatus updates the status of a trip. Completing a trip also stamps
// completed_at.
func (r *TripRepository) UpdateStatus(ctx context.Context, id string, status domain.TripStatus) error {
	query := `UPDATE trips SET status = $1,
		completed_at = CASE WHEN $1 = $2 THEN NOW() ELSE completed_at END
		WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, status, domain.TripStatusCompleted, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var segments, violations []byte
	var warnings []string
	var completedAt sql.NullTime

	err := row.Scan(
		&trip.ID, &trip.VehicleID, pq.Array(&trip.OrderIDs), &segments, &violations, pq.Array(&warnings),
		&trip.TotalDistanceKm, &trip.TotalFuelLiters, &trip.TotalFuelCost, &trip.TotalTollCost, &trip.TotalCost, &trip.CO2Kg,
		&trip.Status, &trip.EfficiencyScore, &trip.PlannedDepartAt, &trip.CreatedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(segments, &trip.Segments); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(violations, &trip.Violations); err != nil {
		return nil, err
	}
	trip.Warnings = warnings
	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}
	return &trip, nil
}
