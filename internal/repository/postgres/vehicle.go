package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

// VehicleRepository is a PostgreSQL implementation of repository.VehicleRepository.
type VehicleRepository struct {
	q Querier
}

// NewVehicleRepository creates a new PostgreSQL vehicle repository.
func NewVehicleRepository(db *sql.DB) *VehicleRepository {
	return &VehicleRepository{q: db}
}

// NewVehicleRepositoryWithTx creates a vehicle repository using a transaction.
func NewVehicleRepositoryWithTx(tx *sql.Tx) *VehicleRepository {
	return &VehicleRepository{q: tx}
}

const vehicleColumns = `id, COALESCE(plate_number, ''), capacity_kg, capacity_m3, cargo_classes,
	COALESCE(location_id, ''), COALESCE(location_name, ''), lat, lng,
	status, fuel_rate_l_per_km, COALESCE(driver_id, '')`

// Create adds a new vehicle.
func (r *VehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `INSERT INTO vehicles (
		id, plate_number, capacity_kg, capacity_m3, cargo_classes,
		location_id, location_name, lat, lng,
		status, fuel_rate_l_per_km, driver_id
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	classes := make([]string, 0, len(vehicle.CargoClasses))
	for _, c := range vehicle.CargoClasses {
		classes = append(classes, string(c))
	}

	_, err := r.q.ExecContext(ctx, query,
		vehicle.ID, vehicle.PlateNumber, vehicle.CapacityKg, vehicle.CapacityM3, pq.Array(classes),
		vehicle.Location.ID, vehicle.Location.Name, vehicle.Location.Lat, vehicle.Location.Lng,
		vehicle.Status, vehicle.FuelRateLPerKm, vehicle.DriverID,
	)
	return err
}

// GetByID retrieves a vehicle by ID.
func (r *VehicleRepository) GetByID(ctx context.Context, id string) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return vehicle, nil
}

// GetAll retrieves all vehicles.
func (r *VehicleRepository) GetAll(ctx context.Context) ([]*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles ORDER BY id`
	return r.queryVehicles(ctx, query)
}

// GetByStatus retrieves vehicles in the given status.
func (r *VehicleRepository) GetByStatus(ctx context.Context, status domain.VehicleStatus) ([]*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE status = $1 ORDER BY id`
	return r.queryVehicles(ctx, query, status)
}

// UpdateStatus updates the status of a vehicle.
func (r *VehicleRepository) UpdateStatus(ctx context.Context, id string, status domain.VehicleStatus) error {
	query := `UPDATE vehicles SET status = $1 WHERE id = $2`

	result, err := r.q.ExecContext(ctx, query, status, id)
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

// UpdateLocation updates the vehicle's last known position.
func (r *VehicleRepository) UpdateLocation(ctx context.Context, id string, lat, lng float64) error {
	query := `UPDATE vehicles SET lat = $1, lng = $2 WHERE id = $3`

	result, err := r.q.ExecContext(ctx, query, lat, lng, id)
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

func (r *VehicleRepository) queryVehicles(ctx context.Context, query string, args ...any) ([]*domain.Vehicle, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}
	return vehicles, rows.Err()
}

func scanVehicle(row rowScanner) (*domain.Vehicle, error) {
	var vehicle domain.Vehicle
	var classes []string
	err := row.Scan(
		&vehicle.ID, &vehicle.PlateNumber, &vehicle.CapacityKg, &vehicle.CapacityM3, pq.Array(&classes),
		&vehicle.Location.ID, &vehicle.Location.Name, &vehicle.Location.Lat, &vehicle.Location.Lng,
		&vehicle.Status, &vehicle.FuelRateLPerKm, &vehicle.DriverID,
	)
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		vehicle.CargoClasses = append(vehicle.CargoClasses, domain.CargoClass(c))
	}
	vehicle.Location.Type = domain.LocationTypeDepot
	return &vehicle, nil
}
