package contracts

import (
	"context"
	"time"

	"github.com/valuehound/valuehound/pkg/models"
)

// OutcomeProbabilities holds per-outcome win probability estimates for an event.
// Draw is zero for sports without a draw outcome.
type OutcomeProbabilities struct {
	Home   float64
	Away   float64
	Draw   float64
	Source string // which strategy produced the estimate
}

// ProbabilityEstimator converts raw event data into win probability estimates.
// Implementations are pluggable strategies; callers fall back in a documented
// order (model first, market-implied second) when a strategy cannot estimate.
type ProbabilityEstimator interface {
	// Estimate returns outcome probabilities for the event.
	// An error means this strategy cannot estimate; the caller should
	// fall through to the next strategy, not abort the scan.
	Estimate(ctx context.Context, event models.Event) (OutcomeProbabilities, error)

	// Name identifies the strategy in logs
	Name() string
}

// SnapshotPersister is the store-of-record for odds snapshots.
// The in-memory index retains 24h; persisted history outlives it.
type SnapshotPersister interface {
	// SaveSnapshotsBatch appends snapshots in one batch, returning the count saved
	SaveSnapshotsBatch(ctx context.Context, snapshots []models.OddsSnapshot) (int, error)

	// OddsHistory returns persisted snapshots for an event within the last N hours,
	// in chronological order
	OddsHistory(ctx context.Context, eventID string, hours int) ([]models.OddsSnapshot, error)
}

// AlertStore persists the alert audit trail
type AlertStore interface {
	// AddAlert records a newly sent alert and returns its ID
	AddAlert(ctx context.Context, alert models.Alert) (string, error)

	// UpdateAlertResult transitions a pending alert to a terminal status.
	// Must be applied at most once per alert.
	UpdateAlertResult(ctx context.Context, alertID string, status models.AlertStatus, profitLoss float64) error

	// PendingAlerts returns pending alerts sent at least minAge ago
	PendingAlerts(ctx context.Context, minAge time.Duration) ([]models.Alert, error)

	// UserStats aggregates settled performance for one user
	UserStats(ctx context.Context, userID string) (models.UserStats, error)
}

// UserProvider lists alert recipients
type UserProvider interface {
	ActiveUsers(ctx context.Context) ([]models.User, error)
}

// AlertPublisher hands a dispatched alert to the external messaging layer
type AlertPublisher interface {
	Publish(ctx context.Context, alert models.Alert) error
}
