package models

import "time"

// Trend classifies recent odds direction for a selection
type Trend string

const (
	TrendDrifting         Trend = "drifting"   // odds rising
	TrendShortening       Trend = "shortening" // odds falling
	TrendStable           Trend = "stable"
	TrendInsufficientData Trend = "insufficient_data"
)

// ConfidenceLevel buckets a 0-100 confidence score
type ConfidenceLevel string

const (
	ConfidenceLow      ConfidenceLevel = "low"
	ConfidenceMedium   ConfidenceLevel = "medium"
	ConfidenceHigh     ConfidenceLevel = "high"
	ConfidenceVeryHigh ConfidenceLevel = "very_high"
)

// TimingRecommendation suggests when to place the bet based on line history
type TimingRecommendation string

const (
	TimingBetNow           TimingRecommendation = "bet_now"
	TimingBetSoon          TimingRecommendation = "bet_soon"
	TimingWaitAndWatch     TimingRecommendation = "wait_and_watch"
	TimingAnalyzeCarefully TimingRecommendation = "analyze_carefully"
	TimingInsufficientData TimingRecommendation = "insufficient_data"
)

// LineMovementSummary is a computed view over a selection's snapshot history
type LineMovementSummary struct {
	EventID       string  `json:"event_id"`
	Selection     string  `json:"selection"`
	OpeningOdds   float64 `json:"opening_odds"`
	CurrentOdds   float64 `json:"current_odds"`
	PeakOdds      float64 `json:"peak_odds"`
	LowestOdds    float64 `json:"lowest_odds"`
	ChangePercent float64 `json:"change_percent"`
	Trend         Trend   `json:"trend"`
	IsFavorable   bool    `json:"is_favorable"` // current > opening
	SnapshotCount int     `json:"snapshots_count"`
	TimeSpanHours float64 `json:"time_span_hours"`
}

// SteamMove is a rapid odds change inside a 30-minute window, a sharp-money signal
type SteamMove struct {
	EventID       string    `json:"event_id"`
	Bookmaker     string    `json:"bookmaker"`
	Market        string    `json:"market"`
	Selection     string    `json:"selection"`
	InitialOdds   float64   `json:"initial_odds"`
	CurrentOdds   float64   `json:"current_odds"`
	ChangePercent float64   `json:"change_percent"`
	Direction     Trend     `json:"direction"`
	DetectedAt    time.Time `json:"detected_at"`
}

// RLMOpportunity flags odds improving against expected public direction
type RLMOpportunity struct {
	EventID            string  `json:"event_id"`
	Selection          string  `json:"selection"`
	SportKey           string  `json:"sport_key"`
	OpeningOdds        float64 `json:"opening_odds"`
	CurrentOdds        float64 `json:"current_odds"`
	ImprovementPercent float64 `json:"improvement_percent"`
	Trend              Trend   `json:"trend"`
	Confidence         ConfidenceLevel `json:"confidence"`
}

// Candidate is a value-bet candidate produced by a scan cycle.
// Candidates are derived fresh each cycle and never persisted; only the
// selected candidate becomes an Alert.
type Candidate struct {
	EventID      string    `json:"event_id"`
	Sport        string    `json:"sport"`
	SportKey     string    `json:"sport_key"`
	HomeTeam     string    `json:"home_team"`
	AwayTeam     string    `json:"away_team"`
	MarketKey    string    `json:"market_key"`
	Selection    string    `json:"selection"`
	Odds         float64   `json:"odds"`
	Point        *float64  `json:"point,omitempty"`
	Probability  float64   `json:"probability"`
	Value        float64   `json:"value"` // odds * probability
	Bookmaker    string    `json:"bookmaker"`
	CommenceTime time.Time `json:"commence_time"`

	// Enrichment from the line movement analyzer
	LineMovement    *LineMovementSummary `json:"line_movement,omitempty"`
	ConfidenceScore float64              `json:"confidence_score"`
	ConfidenceLevel ConfidenceLevel      `json:"confidence_level"`
	HasSteamMove    bool                 `json:"has_steam_move"`
	Timing          TimingRecommendation `json:"timing_recommendation,omitempty"`

	// Set when the line-adjustment pass substituted a safer line
	WasAdjusted   bool     `json:"was_adjusted,omitempty"`
	OriginalOdds  *float64 `json:"original_odds,omitempty"`
	OriginalPoint *float64 `json:"original_point,omitempty"`
}

// Key identifies a candidate for dedup: same event, selection and book
func (c Candidate) Key() string {
	return c.EventID + "|" + c.Selection + "|" + c.Bookmaker
}

// ScanResult is the tagged result of a scan: Primary holds candidates found
// at the configured thresholds, Fallback those found only after relaxation.
type ScanResult struct {
	Primary  []Candidate `json:"primary"`
	Fallback []Candidate `json:"fallback"`
}

// All returns primary and fallback candidates in one slice
func (r ScanResult) All() []Candidate {
	out := make([]Candidate, 0, len(r.Primary)+len(r.Fallback))
	out = append(out, r.Primary...)
	out = append(out, r.Fallback...)
	return out
}

// ScanStats tallies per-cycle discards so malformed input is counted, not raised
type ScanStats struct {
	TotalChecked  int `json:"total_checked"`
	OddsRange     int `json:"odds_range"`
	Probability   int `json:"probability"`
	TimeRange     int `json:"time_range"`
	MissingFields int `json:"missing_fields"`
	NoThreshold   int `json:"no_threshold"`
	BelowValue    int `json:"below_value"`
	Emitted       int `json:"emitted"`
}
