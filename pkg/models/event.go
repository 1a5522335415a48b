package models

import "time"

// Market keys supported by the scanner
const (
	MarketH2H     = "h2h"
	MarketSpreads = "spreads"
	MarketTotals  = "totals"
)

// Event represents a sporting fixture with per-bookmaker quotes,
// matching The Odds API v4 JSON shape.
//
// CommenceTime is kept as the raw ISO8601 string from the feed; the
// scanner parses it and counts unparseable values as discards instead
// of failing the whole payload.
type Event struct {
	ID           string      `json:"id"`
	SportKey     string      `json:"sport_key"`
	SportTitle   string      `json:"sport_title,omitempty"`
	CommenceTime string      `json:"commence_time"`
	HomeTeam     string      `json:"home_team"`
	AwayTeam     string      `json:"away_team"`
	Bookmakers   []Bookmaker `json:"bookmakers"`
}

// Bookmaker is a single book's quotes for an event
type Bookmaker struct {
	Key     string   `json:"key"`
	Title   string   `json:"title"`
	Markets []Market `json:"markets"`
}

// Market is one market (h2h, spreads, totals) quoted by a bookmaker
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is a single priced selection within a market.
// Price is decimal odds. Point carries the spread/total line when present.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// ParseCommenceTime parses the feed's ISO8601 commence_time.
// Returns the zero time and false when missing or unparseable.
func (e Event) ParseCommenceTime() (time.Time, bool) {
	if e.CommenceTime == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, e.CommenceTime)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// OddsSnapshot is an immutable point-in-time record of one quoted selection.
// Snapshots are append-only; the in-memory index retains 24h while the
// persisted copies remain in the store of record.
type OddsSnapshot struct {
	Timestamp time.Time `json:"timestamp"`
	EventID   string    `json:"event_id"`
	SportKey  string    `json:"sport_key"`
	Bookmaker string    `json:"bookmaker"`
	Market    string    `json:"market"`
	Selection string    `json:"selection"`
	Odds      float64   `json:"odds"`
	Point     *float64  `json:"point,omitempty"`
}

// EventScore is a completed-game result from the scores feed
type EventScore struct {
	ID        string      `json:"id"`
	SportKey  string      `json:"sport_key"`
	HomeTeam  string      `json:"home_team"`
	AwayTeam  string      `json:"away_team"`
	Completed bool        `json:"completed"`
	Scores    []TeamScore `json:"scores"`
}

// TeamScore holds one team's final score. The feed sends scores as strings.
type TeamScore struct {
	Name  string `json:"name"`
	Score string `json:"score"`
}

// FetchOutcome records the result of one feed fetch for one source,
// aggregated per cycle instead of being silently dropped.
type FetchOutcome struct {
	Source  string
	Events  int
	Elapsed time.Duration
	Err     error
}

// Success reports whether the fetch completed without error
func (f FetchOutcome) Success() bool { return f.Err == nil }
