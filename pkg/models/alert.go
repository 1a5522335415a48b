package models

import "time"

// AlertStatus is the settlement state of a sent alert
type AlertStatus string

const (
	AlertPending AlertStatus = "pending"
	AlertWon     AlertStatus = "won"
	AlertLost    AlertStatus = "lost"
	AlertPush    AlertStatus = "push"
)

// Terminal reports whether the status ends the alert lifecycle
func (s AlertStatus) Terminal() bool {
	return s == AlertWon || s == AlertLost || s == AlertPush
}

// Alert is the record of a candidate actually sent to a user.
// Created when sent, mutated exactly once from pending to a terminal
// status at verification, never deleted.
//
// Odds and Point are the values shown to the user (post line-adjustment);
// settlement always uses these, never the live market odds.
type Alert struct {
	ID           string      `json:"alert_id"`
	UserID       string      `json:"user_id"`
	EventID      string      `json:"event_id"`
	Sport        string      `json:"sport"`
	SportKey     string      `json:"sport_key"`
	PickType     string      `json:"pick_type"` // market key: h2h, spreads, totals
	Selection    string      `json:"selection"`
	Odds         float64     `json:"odds"`
	Point        *float64    `json:"point,omitempty"`
	Stake        float64     `json:"stake"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	CommenceTime time.Time   `json:"commence_time"`
	SentAt       time.Time   `json:"sent_at"`
	Status       AlertStatus `json:"status"`
	VerifiedAt   *time.Time  `json:"verified_at,omitempty"`
	ProfitLoss   float64     `json:"profit_loss"`

	WasAdjusted   bool     `json:"was_adjusted,omitempty"`
	OriginalOdds  *float64 `json:"original_odds,omitempty"`
	OriginalPoint *float64 `json:"original_point,omitempty"`
}

// User is an alert recipient with their own daily quota and bankroll
type User struct {
	ID         string  `json:"user_id"`
	Bankroll   float64 `json:"bankroll"`
	DailyQuota int     `json:"daily_quota"`
	Active     bool    `json:"active"`
}

// UserStats aggregates settled alert performance for one user
type UserStats struct {
	Total       int     `json:"total"`
	Won         int     `json:"won"`
	Lost        int     `json:"lost"`
	Push        int     `json:"push"`
	Pending     int     `json:"pending"`
	TotalStake  float64 `json:"total_stake"`
	TotalProfit float64 `json:"total_profit"`
	ROI         float64 `json:"roi"`
	WinRate     float64 `json:"win_rate"`
}
