package postgres

import (
	"context"
	"database/sql"
	"errors"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

const orderColumns = `id,
	pickup_id, pickup_name, pickup_lat, pickup_lng,
	dropoff_id, dropoff_name, dropoff_lat, dropoff_lng,
	cargo_class, weight_kg, volume_m3, requested_at, priority,
	status, COALESCE(trip_id, ''), created_at`

// Create adds a new order.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `INSERT INTO orders (
		id,
		pickup_id, pickup_name, pickup_lat, pickup_lng,
		dropoff_id, dropoff_name, dropoff_lat, dropoff_lng,
		cargo_class, weight_kg, volume_m3, requested_at, priority,
		status, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.q.ExecContext(ctx, query,
		order.ID,
		order.Pickup.ID, order.Pickup.Name, order.Pickup.Lat, order.Pickup.Lng,
		order.Dropoff.ID, order.Dropoff.Name, order.Dropoff.Lat, order.Dropoff.Lng,
		order.CargoClass, order.WeightKg, order.VolumeM3, order.RequestedAt, order.Priority,
		order.Status, order.CreatedAt,
	)
	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

// GetAll retrieves all orders.
func (r *OrderRepository) GetAll(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders ORDER BY created_at, id`
	return r.queryOrders(ctx, query)
}

// GetByStatus retrieves orders in the given status, oldest first so that
// consolidation seeds clusters in arrival order.
func (r *OrderRepository) GetByStatus(ctx context.Context, status domain.OrderStatus) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE status = $1 ORDER BY created_at, id`
	return r.queryOrders(ctx, query, status)
}

// AssignToTrip marks an order assigned to a trip.
func (r *OrderRepository) AssignToTrip(ctx context.Context, orderID, tripID string) error {
	query := `UPDATE orders SET status = $1, trip_id = $2 WHERE id = $3 AND status = $4`

	result, err := r.q.ExecContext(ctx, query, domain.OrderStatusAssigned, tripID, orderID, domain.OrderStatusPending)
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

// UpdateStatus updates the status of an order.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	query := `UPDATE orders SET status = $1 WHERE id = $2`

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

func (r *OrderRepository) queryOrders(ctx context.Context, query string, args ...any) ([]*domain.Order, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID,
		&order.Pickup.ID, &order.Pickup.Name, &order.Pickup.Lat, &order.Pickup.Lng,
		&order.Dropoff.ID, &order.Dropoff.Name, &order.Dropoff.Lat, &order.Dropoff.Lng,
		&order.CargoClass, &order.WeightKg, &order.VolumeM3, &order.RequestedAt, &order.Priority,
		&order.Status, &order.TripID, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	order.Pickup.Type = domain.LocationTypePickup
	order.Dropoff.Type = domain.LocationTypeDelivery
	return &order, nil
}
