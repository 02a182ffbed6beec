package repository

import (
	"context"

	"fleetops/internal/domain"
)

// AlertRepository defines the persistence operations for alerts. Alerts are
// append-only; acknowledgment is the only permitted mutation.
type AlertRepository interface {
	// Create appends a new alert.
	Create(ctx context.Context, alert *domain.Alert) error

	// GetRecent retrieves the most recent alerts, newest first.
	GetRecent(ctx context.Context, limit int) ([]*domain.Alert, error)

	// GetUnacknowledged retrieves unacknowledged alerts, newest first.
	GetUnacknowledged(ctx context.Context) ([]*domain.Alert, error)

	// Acknowledge marks an alert acknowledged.
	Acknowledge(ctx context.Context, id string) error
}
