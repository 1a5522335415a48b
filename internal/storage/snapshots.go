package storage

import (
	"context"
	"fmt"

	"github.com/valuehound/valuehound/pkg/models"
)

// SaveSnapshotsBatch appends odds snapshots in a single transaction,
// returning the count inserted.
func (p *Postgres) SaveSnapshotsBatch(ctx context.Context, snapshots []models.OddsSnapshot) (int, error) {
	if len(snapshots) == 0 {
		return 0, nil
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin snapshot batch: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO odds_snapshots (
			captured_at, event_id, sport_key, bookmaker, market, selection, odds, point
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, snap := range snapshots {
		_, err := stmt.ExecContext(ctx,
			snap.Timestamp,
			snap.EventID,
			snap.SportKey,
			snap.Bookmaker,
			snap.Market,
			snap.Selection,
			snap.Odds,
			snap.Point,
		)
		if err != nil {
			return 0, fmt.Errorf("insert snapshot for event %s: %w", snap.EventID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit snapshot batch: %w", err)
	}

	return len(snapshots), nil
}

// OddsHistory returns persisted snapshots for an event within the last N
// hours, in chronological order.
func (p *Postgres) OddsHistory(ctx context.Context, eventID string, hours int) ([]models.OddsSnapshot, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT captured_at, event_id, sport_key, bookmaker, market, selection, odds, point
		FROM odds_snapshots
		WHERE event_id = $1
		  AND captured_at > NOW() - ($2 * INTERVAL '1 hour')
		ORDER BY captured_at ASC, id ASC
	`, eventID, hours)
	if err != nil {
		return nil, fmt.Errorf("query odds history: %w", err)
	}
	defer rows.Close()

	var snaps []models.OddsSnapshot
	for rows.Next() {
		var snap models.OddsSnapshot
		if err := rows.Scan(
			&snap.Timestamp,
			&snap.EventID,
			&snap.SportKey,
			&snap.Bookmaker,
			&snap.Market,
			&snap.Selection,
			&snap.Odds,
			&snap.Point,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}

	return snaps, rows.Err()
}
