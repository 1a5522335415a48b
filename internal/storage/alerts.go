package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/valuehound/valuehound/pkg/models"
)

// AddAlert records a newly sent alert and returns its ID
func (p *Postgres) AddAlert(ctx context.Context, alert models.Alert) (string, error) {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO alerts (
			id, user_id, event_id, sport, sport_key, pick_type, selection,
			odds, point, stake, home_team, away_team, commence_time, sent_at,
			status, was_adjusted, original_odds, original_point
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
	`,
		alert.ID, alert.UserID, alert.EventID, alert.Sport, alert.SportKey,
		alert.PickType, alert.Selection, alert.Odds, alert.Point, alert.Stake,
		alert.HomeTeam, alert.AwayTeam, alert.CommenceTime, alert.SentAt,
		string(alert.Status), alert.WasAdjusted, alert.OriginalOdds, alert.OriginalPoint,
	)
	if err != nil {
		return "", fmt.Errorf("insert alert: %w", err)
	}

	return alert.ID, nil
}

// UpdateAlertResult transitions a pending alert to a terminal status.
// The WHERE clause guards the once-only transition: a settled alert is
// never rewritten.
func (p *Postgres) UpdateAlertResult(ctx context.Context, alertID string, status models.AlertStatus, profitLoss float64) error {
	result, err := p.db.ExecContext(ctx, `
		UPDATE alerts
		SET status = $1, profit_loss = $2, verified_at = NOW()
		WHERE id = $3 AND status = 'pending'
	`, string(status), profitLoss, alertID)
	if err != nil {
		return fmt.Errorf("update alert result: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update alert result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("alert %s not pending or not found", alertID)
	}

	return nil
}

// PendingAlerts returns pending alerts sent at least minAge ago
func (p *Postgres) PendingAlerts(ctx context.Context, minAge time.Duration) ([]models.Alert, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, event_id, sport, sport_key, pick_type, selection,
		       odds, point, stake, home_team, away_team, commence_time, sent_at,
		       status, was_adjusted, original_odds, original_point
		FROM alerts
		WHERE status = 'pending'
		  AND sent_at < NOW() - ($1 * INTERVAL '1 second')
		ORDER BY sent_at ASC
	`, int(minAge.Seconds()))
	if err != nil {
		return nil, fmt.Errorf("query pending alerts: %w", err)
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var alert models.Alert
		var status string
		if err := rows.Scan(
			&alert.ID, &alert.UserID, &alert.EventID, &alert.Sport, &alert.SportKey,
			&alert.PickType, &alert.Selection, &alert.Odds, &alert.Point, &alert.Stake,
			&alert.HomeTeam, &alert.AwayTeam, &alert.CommenceTime, &alert.SentAt,
			&status, &alert.WasAdjusted, &alert.OriginalOdds, &alert.OriginalPoint,
		); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		alert.Status = models.AlertStatus(status)
		alerts = append(alerts, alert)
	}

	return alerts, rows.Err()
}

// UserStats aggregates settled alert performance for one user
func (p *Postgres) UserStats(ctx context.Context, userID string) (models.UserStats, error) {
	var stats models.UserStats

	err := p.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'won'),
			COUNT(*) FILTER (WHERE status = 'lost'),
			COUNT(*) FILTER (WHERE status = 'push'),
			COUNT(*) FILTER (WHERE status = 'pending'),
			COALESCE(SUM(stake) FILTER (WHERE status != 'pending'), 0),
			COALESCE(SUM(profit_loss), 0)
		FROM alerts
		WHERE user_id = $1
	`, userID).Scan(
		&stats.Total, &stats.Won, &stats.Lost, &stats.Push, &stats.Pending,
		&stats.TotalStake, &stats.TotalProfit,
	)
	if err != nil {
		return stats, fmt.Errorf("query user stats: %w", err)
	}

	settled := stats.Won + stats.Lost
	if settled > 0 {
		stats.WinRate = float64(stats.Won) / float64(settled) * 100
	}
	if stats.TotalStake > 0 {
		stats.ROI = stats.TotalProfit / stats.TotalStake * 100
	}

	return stats, nil
}

// ActiveUsers lists users eligible for alert fan-out
func (p *Postgres) ActiveUsers(ctx context.Context) ([]models.User, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, bankroll, daily_quota, active
		FROM users
		WHERE active = true
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("query active users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Bankroll, &user.DailyQuota, &user.Active); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}

	return users, rows.Err()
}
