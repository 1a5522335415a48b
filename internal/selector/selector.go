package selector

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/valuehound/valuehound/internal/config"
	"github.com/valuehound/valuehound/internal/scanner"
	"github.com/valuehound/valuehound/pkg/models"
)

// RelaxationStep pairs a relaxed probability floor with the confidence
// floor applied at that rung. The ladder is data-driven so the policy can
// be tested in isolation.
type RelaxationStep struct {
	MinProb       float64
	MinConfidence float64
}

// DefaultLadder is the fixed relaxation ladder walked when a cycle is
// under quota, most demanding rung first.
func DefaultLadder() []RelaxationStep {
	return []RelaxationStep{
		{MinProb: 0.58, MinConfidence: 58},
		{MinProb: 0.56, MinConfidence: 55},
		{MinProb: 0.54, MinConfidence: 52},
		{MinProb: 0.52, MinConfidence: 50},
	}
}

// Selector picks at most one candidate to alert on per cycle. When the
// base scan is under quota it relaxes the probability floor through the
// ladder, accumulating unique candidates, then applies the hard confidence
// floor and selects the single best-value survivor.
type Selector struct {
	scanner        *scanner.Enhanced
	cfg            config.SelectorConfig
	ladder         []RelaxationStep
	imminentWindow time.Duration
	now            func() time.Time
}

// New creates a selector over the enhanced scanner
func New(enhanced *scanner.Enhanced, cfg config.SelectorConfig) *Selector {
	return &Selector{
		scanner:        enhanced,
		cfg:            cfg,
		ladder:         DefaultLadder(),
		imminentWindow: 8 * time.Hour,
		now:            time.Now,
	}
}

// WithLadder replaces the relaxation ladder. For tests.
func (s *Selector) WithLadder(ladder []RelaxationStep) *Selector {
	s.ladder = ladder
	return s
}

// WithImminentWindow sets how soon an event must start to be considered
// imminent when breaking value ties.
func (s *Selector) WithImminentWindow(window time.Duration) *Selector {
	s.imminentWindow = window
	return s
}

// WithClock replaces the selector's clock. For tests.
func (s *Selector) WithClock(now func() time.Time) *Selector {
	s.now = now
	return s
}

// Gather runs the base scan and, while under quota, walks the relaxation
// ladder. Primary holds candidates passing the configured confidence floor
// at base thresholds; Fallback holds unique candidates admitted by a
// relaxed rung. The ladder always terminates: rungs are fixed and each is
// scanned once.
func (s *Selector) Gather(ctx context.Context, events []models.Event) (models.ScanResult, models.ScanStats) {
	candidates, stats := s.scanner.FindValueBetsWithMovement(ctx, events)

	var result models.ScanResult
	seen := make(map[string]bool)

	for _, c := range candidates {
		if c.ConfidenceScore >= s.cfg.ConfidenceFloor {
			result.Primary = append(result.Primary, c)
			seen[c.Key()] = true
		}
	}

	if len(result.Primary) >= s.cfg.TargetDailyPicks {
		return result, stats
	}

	for _, step := range s.ladder {
		log.Printf("[selector] under quota (%d/%d), relaxing to prob>=%.2f conf>=%.0f",
			len(result.Primary)+len(result.Fallback), s.cfg.TargetDailyPicks, step.MinProb, step.MinConfidence)

		relaxed, _ := s.scanner.WithMinProb(step.MinProb).FindValueBetsWithMovement(ctx, events)
		for _, c := range relaxed {
			if c.ConfidenceScore < step.MinConfidence || seen[c.Key()] {
				continue
			}
			seen[c.Key()] = true
			result.Fallback = append(result.Fallback, c)
		}

		if len(result.Primary)+len(result.Fallback) >= s.cfg.TargetDailyPicks {
			break
		}
	}

	return result, stats
}

// SelectBest gathers candidates and picks the single best-value one that
// clears the hard confidence floor. Returns nil when no candidate
// qualifies; an empty cycle is a valid outcome, never an error.
func (s *Selector) SelectBest(ctx context.Context, events []models.Event) (*models.Candidate, models.ScanResult, models.ScanStats) {
	result, stats := s.Gather(ctx, events)

	var best *models.Candidate
	for _, c := range result.All() {
		if c.ConfidenceScore < s.cfg.HardConfidenceFloor {
			continue
		}
		if best == nil || s.betterPick(c, *best) {
			picked := c
			best = &picked
		}
	}

	if best == nil {
		log.Printf("[selector] no candidate clears confidence floor %.0f; zero alerts this cycle", s.cfg.HardConfidenceFloor)
	}
	return best, result, stats
}

// betterPick orders candidates by value descending. On equal value a
// candidate starting inside the imminent window beats one outside it, and
// the earlier commence time breaks any remaining tie.
func (s *Selector) betterPick(a, b models.Candidate) bool {
	if a.Value != b.Value {
		return a.Value > b.Value
	}

	cutoff := s.now().UTC().Add(s.imminentWindow)
	aImminent := !a.CommenceTime.After(cutoff)
	bImminent := !b.CommenceTime.After(cutoff)
	if aImminent != bImminent {
		return aImminent
	}

	return a.CommenceTime.Before(b.CommenceTime)
}

// Revalidate re-checks a candidate against the ORIGINAL hard constraints,
// not the relaxed ones used for discovery. Run immediately before
// dispatch; a failure means the pick went stale between discovery and
// send and must be skipped.
func (s *Selector) Revalidate(candidate models.Candidate) error {
	if candidate.Odds < s.scanner.MinOdd() || candidate.Odds > s.scanner.MaxOdd() {
		return fmt.Errorf("odds %.2f outside [%.2f, %.2f]", candidate.Odds, s.scanner.MinOdd(), s.scanner.MaxOdd())
	}
	if candidate.Probability < s.scanner.MinProb() {
		return fmt.Errorf("probability %.3f below floor %.3f", candidate.Probability, s.scanner.MinProb())
	}

	threshold, ok := s.scanner.Threshold(candidate.SportKey)
	if !ok {
		return fmt.Errorf("no value threshold for sport %s", candidate.SportKey)
	}
	if candidate.Value < threshold {
		return fmt.Errorf("value %.3f below threshold %.3f", candidate.Value, threshold)
	}

	if candidate.ConfidenceScore < s.cfg.HardConfidenceFloor {
		return fmt.Errorf("confidence %.1f below floor %.1f", candidate.ConfidenceScore, s.cfg.HardConfidenceFloor)
	}

	if !candidate.CommenceTime.After(s.now().UTC()) {
		return fmt.Errorf("event %s already started", candidate.EventID)
	}

	return nil
}
