package scanner

import (
	"context"
	"log"
	"sort"

	"github.com/valuehound/valuehound/internal/movement"
	"github.com/valuehound/valuehound/pkg/models"
)

// confidenceBaseline is the value above which the value-excess factor scores
const confidenceBaseline = 1.09

// Line adjustment bounds: candidates longer than the ceiling are swapped
// for a same-event/market alternative inside the target band.
const (
	adjustOddsCeiling = 2.1
	adjustBandLow     = 1.7
	adjustBandHigh    = 1.9
)

// Enhanced wraps the value scanner with line movement analysis: each
// candidate is enriched with its movement summary, a 0-100 confidence
// score from five weighted factors, a steam move flag and a timing
// recommendation, then sorted by confidence.
type Enhanced struct {
	*Scanner
	tracker        *movement.Tracker
	steamThreshold float64
	lineAdjust     bool
}

// NewEnhanced creates an enhanced scanner over the base scanner
func NewEnhanced(base *Scanner, tracker *movement.Tracker, steamThresholdPct float64, lineAdjust bool) *Enhanced {
	return &Enhanced{
		Scanner:        base,
		tracker:        tracker,
		steamThreshold: steamThresholdPct,
		lineAdjust:     lineAdjust,
	}
}

// WithMinProb returns a copy with a relaxed probability floor, preserving
// the movement enrichment settings.
func (e *Enhanced) WithMinProb(minProb float64) *Enhanced {
	relaxed := *e
	relaxed.Scanner = e.Scanner.WithMinProb(minProb)
	return &relaxed
}

// FindValueBetsWithMovement runs the base scan and enriches every
// candidate with line movement data, sorted by confidence descending.
// Candidates with no movement history score a neutral 50 / medium.
func (e *Enhanced) FindValueBetsWithMovement(ctx context.Context, events []models.Event) ([]models.Candidate, models.ScanStats) {
	candidates, stats := e.FindValueBets(ctx, events)
	if len(candidates) == 0 {
		return nil, stats
	}

	enriched := make([]models.Candidate, 0, len(candidates))
	for _, candidate := range candidates {
		summary := e.tracker.Summary(ctx, candidate.EventID, candidate.Selection)

		if summary != nil {
			candidate.LineMovement = summary
			candidate.ConfidenceScore = ConfidenceScore(candidate, summary)
			candidate.Timing = e.tracker.BestOddsTiming(ctx, candidate.EventID, candidate.Selection)
			candidate.HasSteamMove = e.hasSteamMove(candidate)
		} else {
			candidate.LineMovement = nil
			candidate.ConfidenceScore = 50
			candidate.Timing = models.TimingInsufficientData
			candidate.HasSteamMove = false
		}
		candidate.ConfidenceLevel = LevelForScore(candidate.ConfidenceScore)

		if e.lineAdjust {
			candidate = adjustLongOdds(candidate, candidates)
		}
		enriched = append(enriched, candidate)
	}

	sort.Slice(enriched, func(i, j int) bool {
		if enriched[i].ConfidenceScore != enriched[j].ConfidenceScore {
			return enriched[i].ConfidenceScore > enriched[j].ConfidenceScore
		}
		return enriched[i].Value > enriched[j].Value
	})

	log.Printf("[scanner] enhanced scan: %d candidates with movement analysis", len(enriched))
	return enriched, stats
}

func (e *Enhanced) hasSteamMove(candidate models.Candidate) bool {
	for _, move := range e.tracker.SteamMoves(candidate.EventID, e.steamThreshold) {
		if move.Selection == candidate.Selection {
			return true
		}
	}
	return false
}

// ConfidenceScore computes the 0-100 score from five independently-capped
// factors: value excess (30), favorable movement (25), trend (20),
// tracking duration (15) and raw probability (10).
func ConfidenceScore(candidate models.Candidate, summary *models.LineMovementSummary) float64 {
	score := 0.0

	// Factor 1: value excess over the baseline threshold (max 30)
	if candidate.Value >= confidenceBaseline {
		score += capAt(30, (candidate.Value-confidenceBaseline)*100)
	}

	// Factor 2: favorable movement, RLM signal (max 25)
	if summary.IsFavorable && summary.ChangePercent > 0 {
		score += capAt(25, summary.ChangePercent*5)
	}

	// Factor 3: trend (max 20)
	switch summary.Trend {
	case models.TrendDrifting:
		score += 20
	case models.TrendStable:
		score += 10
	case models.TrendShortening:
		score += 5
	}

	// Factor 4: tracking duration, at least 2h of history (max 15)
	if summary.TimeSpanHours >= 2 {
		score += capAt(15, summary.TimeSpanHours*3)
	}

	// Factor 5: raw probability (max 10)
	switch {
	case candidate.Probability >= 0.65:
		score += 10
	case candidate.Probability >= 0.60:
		score += 7
	case candidate.Probability >= 0.55:
		score += 5
	}

	return capAt(100, score)
}

// LevelForScore maps a confidence score to its textual level
func LevelForScore(score float64) models.ConfidenceLevel {
	switch {
	case score >= 75:
		return models.ConfidenceVeryHigh
	case score >= 60:
		return models.ConfidenceHigh
	case score >= 45:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// adjustLongOdds swaps a candidate quoted above the ceiling for the
// highest-value same-event/same-market alternative inside [1.7, 1.9].
// The original odds and point are kept on the candidate for the audit trail.
func adjustLongOdds(candidate models.Candidate, all []models.Candidate) models.Candidate {
	if candidate.Odds <= adjustOddsCeiling {
		return candidate
	}

	var best *models.Candidate
	for i := range all {
		alt := all[i]
		if alt.EventID != candidate.EventID || alt.MarketKey != candidate.MarketKey {
			continue
		}
		if alt.Odds < adjustBandLow || alt.Odds > adjustBandHigh {
			continue
		}
		if best == nil || alt.Value > best.Value {
			best = &all[i]
		}
	}

	if best == nil {
		return candidate
	}

	originalOdds := candidate.Odds
	adjusted := *best
	adjusted.LineMovement = candidate.LineMovement
	adjusted.ConfidenceScore = candidate.ConfidenceScore
	adjusted.ConfidenceLevel = candidate.ConfidenceLevel
	adjusted.HasSteamMove = candidate.HasSteamMove
	adjusted.Timing = candidate.Timing
	adjusted.WasAdjusted = true
	adjusted.OriginalOdds = &originalOdds
	adjusted.OriginalPoint = candidate.Point

	log.Printf("[scanner] adjusted %s from %.2f to %.2f (%s)",
		candidate.Selection, originalOdds, adjusted.Odds, adjusted.Selection)
	return adjusted
}

func capAt(limit, v float64) float64 {
	if v > limit {
		return limit
	}
	return v
}
