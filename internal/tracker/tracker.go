package tracker

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/valuehound/valuehound/pkg/contracts"
	"github.com/valuehound/valuehound/pkg/models"
)

// Tracker records every alert sent so it can later be settled and rolled
// up into per-user ROI. Alerts are an append-only audit trail.
type Tracker struct {
	store contracts.AlertStore
	now   func() time.Time
}

// New creates a tracker over the alert store
func New(store contracts.AlertStore) *Tracker {
	return &Tracker{store: store, now: time.Now}
}

// WithClock replaces the tracker's clock. For tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

// RecordAlert persists a pending alert for the candidate as sent to the
// user. The odds and point stored are the ones actually shown (post
// line-adjustment); settlement will use these and nothing else.
func (t *Tracker) RecordAlert(ctx context.Context, candidate models.Candidate, user models.User, stake float64) (models.Alert, error) {
	alert := models.Alert{
		ID:            uuid.NewString(),
		UserID:        user.ID,
		EventID:       candidate.EventID,
		Sport:         candidate.Sport,
		SportKey:      candidate.SportKey,
		PickType:      candidate.MarketKey,
		Selection:     candidate.Selection,
		Odds:          candidate.Odds,
		Point:         candidate.Point,
		Stake:         stake,
		HomeTeam:      candidate.HomeTeam,
		AwayTeam:      candidate.AwayTeam,
		CommenceTime:  candidate.CommenceTime,
		SentAt:        t.now().UTC(),
		Status:        models.AlertPending,
		WasAdjusted:   candidate.WasAdjusted,
		OriginalOdds:  candidate.OriginalOdds,
		OriginalPoint: candidate.OriginalPoint,
	}

	id, err := t.store.AddAlert(ctx, alert)
	if err != nil {
		return models.Alert{}, fmt.Errorf("record alert: %w", err)
	}
	alert.ID = id

	log.Printf("[tracker] alert registered: %s @ %.2f for user %s", alert.Selection, alert.Odds, alert.UserID)
	return alert, nil
}

// UserStats returns aggregated settled performance for one user
func (t *Tracker) UserStats(ctx context.Context, userID string) (models.UserStats, error) {
	return t.store.UserStats(ctx, userID)
}
