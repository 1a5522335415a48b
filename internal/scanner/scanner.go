package scanner

import (
	"context"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/valuehound/valuehound/internal/config"
	"github.com/valuehound/valuehound/internal/estimator"
	"github.com/valuehound/valuehound/pkg/contracts"
	"github.com/valuehound/valuehound/pkg/models"
)

// lookaheadWindow bounds eligible events: commence_time in (now, now+24h]
const lookaheadWindow = 24 * time.Hour

// Heuristic probability split for totals markets: over slightly favored
const (
	totalsOverProb  = 0.52
	totalsUnderProb = 0.48
)

// Scanner finds value bets: outcomes whose odds x estimated probability
// clears the per-sport threshold, subject to odds range, probability floor
// and the 24h time window. Malformed records are tallied and skipped.
type Scanner struct {
	minOdd     float64
	maxOdd     float64
	minProb    float64
	thresholds map[string]float64
	estimator  contracts.ProbabilityEstimator
	now        func() time.Time
}

// New creates a scanner with the configured filters
func New(cfg config.ScannerConfig, est contracts.ProbabilityEstimator) *Scanner {
	return &Scanner{
		minOdd:     cfg.MinOdd,
		maxOdd:     cfg.MaxOdd,
		minProb:    cfg.MinProb,
		thresholds: cfg.Thresholds,
		estimator:  est,
		now:        time.Now,
	}
}

// WithClock replaces the scanner's clock. For tests.
func (s *Scanner) WithClock(now func() time.Time) *Scanner {
	s.now = now
	return s
}

// WithMinProb returns a copy of the scanner with a different probability
// floor. The adaptive selector uses this to walk the relaxation ladder
// without touching the base configuration.
func (s *Scanner) WithMinProb(minProb float64) *Scanner {
	relaxed := *s
	relaxed.minProb = minProb
	return &relaxed
}

// MinOdd returns the configured odds floor
func (s *Scanner) MinOdd() float64 { return s.minOdd }

// MaxOdd returns the configured odds ceiling
func (s *Scanner) MaxOdd() float64 { return s.maxOdd }

// MinProb returns the configured probability floor
func (s *Scanner) MinProb() float64 { return s.minProb }

// Threshold resolves the value threshold for a sport_key by prefix match
// against the per-sport-family table. ok is false when the sport has no
// configured threshold and must be discarded.
func (s *Scanner) Threshold(sportKey string) (float64, bool) {
	for prefix, threshold := range s.thresholds {
		if strings.HasPrefix(sportKey, prefix) {
			return threshold, true
		}
	}
	// Substring fallback for feed keys that do not lead with the family name
	switch {
	case strings.Contains(sportKey, "soccer"):
		return s.thresholds["soccer"], s.thresholds["soccer"] > 0
	case strings.Contains(sportKey, "tennis"):
		return s.thresholds["tennis"], s.thresholds["tennis"] > 0
	case strings.Contains(sportKey, "basketball") || strings.Contains(sportKey, "nba"):
		return s.thresholds["basketball"], s.thresholds["basketball"] > 0
	case strings.Contains(sportKey, "baseball") || strings.Contains(sportKey, "mlb"):
		return s.thresholds["baseball"], s.thresholds["baseball"] > 0
	}
	return 0, false
}

// FindValueBets scans the events and returns the surviving candidates plus
// the per-cycle discard tally. Running it twice on identical input produces
// identical output: there is no hidden state and ordering is deterministic.
func (s *Scanner) FindValueBets(ctx context.Context, events []models.Event) ([]models.Candidate, models.ScanStats) {
	var stats models.ScanStats
	var results []models.Candidate

	nowUTC := s.now().UTC()
	maxTime := nowUTC.Add(lookaheadWindow)

	for _, event := range events {
		commence, ok := event.ParseCommenceTime()
		if !ok {
			stats.MissingFields++
			continue
		}
		if !commence.After(nowUTC) || commence.After(maxTime) {
			stats.TimeRange++
			continue
		}

		threshold, ok := s.Threshold(event.SportKey)
		if !ok {
			stats.NoThreshold++
			continue
		}

		probs, err := s.estimator.Estimate(ctx, event)
		if err != nil {
			log.Printf("[scanner] no probability estimate for event %s: %v", event.ID, err)
			stats.MissingFields++
			continue
		}

		results = append(results, s.scanEvent(event, commence, threshold, probs, &stats)...)
	}

	deduped := dedupCandidates(results)
	stats.Emitted = len(deduped)

	log.Printf("[scanner] checked=%d emitted=%d discarded: odds_range=%d prob=%d time=%d missing=%d no_threshold=%d below_value=%d",
		stats.TotalChecked, stats.Emitted, stats.OddsRange, stats.Probability,
		stats.TimeRange, stats.MissingFields, stats.NoThreshold, stats.BelowValue)

	return deduped, stats
}

// scanEvent walks one event's bookmaker/market/outcome triples
func (s *Scanner) scanEvent(event models.Event, commence time.Time, threshold float64, probs contracts.OutcomeProbabilities, stats *models.ScanStats) []models.Candidate {
	var out []models.Candidate

	sport := event.SportTitle
	if sport == "" {
		sport = event.SportKey
	}

	for _, book := range event.Bookmakers {
		bookName := book.Title
		if bookName == "" {
			bookName = book.Key
		}

		for _, market := range book.Markets {
			if market.Key != models.MarketH2H && market.Key != models.MarketTotals && market.Key != models.MarketSpreads {
				continue
			}

			for _, outcome := range market.Outcomes {
				stats.TotalChecked++

				if strings.TrimSpace(outcome.Name) == "" || outcome.Price <= 0 {
					stats.MissingFields++
					continue
				}
				if outcome.Price < s.minOdd || outcome.Price > s.maxOdd {
					stats.OddsRange++
					continue
				}

				prob, ok := s.outcomeProbability(event, market.Key, outcome.Name, probs)
				if !ok || prob < s.minProb {
					stats.Probability++
					continue
				}

				value := outcome.Price * prob
				if value < threshold {
					stats.BelowValue++
					continue
				}

				out = append(out, models.Candidate{
					EventID:      event.ID,
					Sport:        sport,
					SportKey:     event.SportKey,
					HomeTeam:     event.HomeTeam,
					AwayTeam:     event.AwayTeam,
					MarketKey:    market.Key,
					Selection:    outcome.Name,
					Odds:         outcome.Price,
					Point:        outcome.Point,
					Probability:  prob,
					Value:        value,
					Bookmaker:    bookName,
					CommenceTime: commence,
				})
			}
		}
	}

	return out
}

// outcomeProbability maps an outcome to its estimated win probability
// depending on the market: h2h uses the estimator's home/away/draw numbers,
// totals a fixed over/under split, spreads the team side's h2h probability.
func (s *Scanner) outcomeProbability(event models.Event, marketKey, selection string, probs contracts.OutcomeProbabilities) (float64, bool) {
	switch marketKey {
	case models.MarketH2H:
		switch estimator.ClassifySelection(selection, event.HomeTeam, event.AwayTeam) {
		case estimator.SelectionDraw:
			return probs.Draw, probs.Draw > 0
		case estimator.SelectionHome:
			return probs.Home, probs.Home > 0
		case estimator.SelectionAway:
			return probs.Away, probs.Away > 0
		default:
			return probs.Home, probs.Home > 0
		}

	case models.MarketTotals:
		if strings.Contains(strings.ToLower(selection), "over") {
			return totalsOverProb, true
		}
		return totalsUnderProb, true

	case models.MarketSpreads:
		if estimator.ClassifySelection(selection, event.HomeTeam, event.AwayTeam) == estimator.SelectionHome {
			return probs.Home, probs.Home > 0
		}
		return probs.Away, probs.Away > 0
	}

	return 0, false
}

// dedupCandidates keeps the highest-value candidate per
// (event_id, selection, bookmaker) key, with deterministic output order.
func dedupCandidates(candidates []models.Candidate) []models.Candidate {
	best := make(map[string]models.Candidate, len(candidates))
	for _, c := range candidates {
		key := c.Key()
		if existing, ok := best[key]; !ok || c.Value > existing.Value {
			best[key] = c
		}
	}

	out := make([]models.Candidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Key() < out[j].Key()
	})
	return out
}
