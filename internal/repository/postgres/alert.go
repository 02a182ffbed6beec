package postgres

import (
	"context"
	"database/sql"

	"fleetops/internal/domain"
	"fleetops/internal/repository"
)

// AlertRepository is a PostgreSQL implementation of repository.AlertRepository.
type AlertRepository struct {
	q Querier
}

// NewAlertRepository creates a new PostgreSQL alert repository.
func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{q: db}
}

const alertColumns = `id, type, severity, vehicle_id, COALESCE(driver_id, ''), COALESCE(geofence_id, ''),
	message, lat, lng, ts, acknowledged, resolved_at`

// Create appends a new alert.
func (r *AlertRepository) Create(ctx context.Context, alert *domain.Alert) error {
	query := `INSERT INTO alerts (
		id, type, severity, vehicle_id, driver_id, geofence_id,
		message, lat, lng, ts, acknowledged
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.q.ExecContext(ctx, query,
		alert.ID, alert.Type, alert.Severity, alert.VehicleID, alert.DriverID, alert.GeofenceID,
		alert.Message, alert.Lat, alert.Lng, alert.Timestamp, alert.Acknowledged,
	)
	return err
}

// GetRecent retrieves the most recent alerts, newest first.
func (r *AlertRepository) GetRecent(ctx context.Context, limit int) ([]*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts ORDER BY ts DESC, id LIMIT $1`
	return r.queryAlerts(ctx, query, limit)
}

// GetUnacknowledged retrieves unacknowledged alerts, newest first.
func (r *AlertRepository) GetUnacknowledged(ctx context.Context) ([]*domain.Alert, error) {
	query := `SELECT ` + alertColumns + ` FROM alerts WHERE NOT acknowledged ORDER BY ts DESC, id`
	return r.queryAlerts(ctx, query)
}

// Acknowledge marks an alert acknowledged. Acknowledging an already
// acknowledged alert is a no-op, not an error.
func (r *AlertRepository) Acknowledge(ctx context.Context, id string) error {
	query := `UPDATE alerts SET acknowledged = TRUE, resolved_at = COALESCE(resolved_at, NOW()) WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id)
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

func (r *AlertRepository) queryAlerts(ctx context.Context, query string, args ...any) ([]*domain.Alert, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []*domain.Alert
	for rows.Next() {
		var alert domain.Alert
		var resolvedAt sql.NullTime
		err := rows.Scan(
			&alert.ID, &alert.Type, &alert.Severity, &alert.VehicleID, &alert.DriverID, &alert.GeofenceID,
			&alert.Message, &alert.Lat, &alert.Lng, &alert.Timestamp, &alert.Acknowledged, &resolvedAt,
		)
		if err != nil {
			return nil, err
		}
		if resolvedAt.Valid {
			alert.ResolvedAt = resolvedAt.Time
		}
		alerts = append(alerts, &alert)
	}
	return alerts, rows.Err()
}
