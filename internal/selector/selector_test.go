package selector

import (
	"context"
	"testing"
	"time"

	"github.com/valuehound/valuehound/internal/config"
	"github.com/valuehound/valuehound/internal/estimator"
	"github.com/valuehound/valuehound/internal/movement"
	"github.com/valuehound/valuehound/internal/scanner"
	"github.com/valuehound/valuehound/pkg/contracts"
	"github.com/valuehound/valuehound/pkg/models"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testSelectorConfig() config.SelectorConfig {
	return config.SelectorConfig{
		TargetDailyPicks:    5,
		ConfidenceFloor:     60,
		HardConfidenceFloor: 55,
	}
}

// newTestSelector builds a selector over an enhanced scanner with fixed
// probabilities, no movement history and a fixed clock. Candidates without
// history score the neutral 50, below both confidence floors, so tests
// inject history or lower floors explicitly.
func newTestSelector(homeProb, awayProb float64, selCfg config.SelectorConfig) (*Selector, *movement.Store) {
	scanCfg := config.ScannerConfig{
		MinOdd:     1.5,
		MaxOdd:     3.0,
		MinProb:    0.58,
		Thresholds: map[string]float64{"basketball": 1.10},
	}

	est := &estimator.Fixed{Probs: contracts.OutcomeProbabilities{Home: homeProb, Away: awayProb, Source: "fixed"}}
	base := scanner.New(scanCfg, est).WithClock(func() time.Time { return testNow })

	store := movement.NewStore(24)
	tracker := movement.NewTracker(store, nil).WithClock(func() time.Time { return testNow })
	enhanced := scanner.NewEnhanced(base, tracker, 5.0, false)

	sel := New(enhanced, selCfg).WithClock(func() time.Time { return testNow })
	return sel, store
}

func h2hEvent(id string, homeOdds, awayOdds float64, commence time.Time) models.Event {
	return models.Event{
		ID:           id,
		SportKey:     "basketball_nba",
		SportTitle:   "NBA",
		CommenceTime: commence.Format(time.RFC3339),
		HomeTeam:     "Team A",
		AwayTeam:     "Team B",
		Bookmakers: []models.Bookmaker{
			{Key: "pinnacle", Title: "Pinnacle", Markets: []models.Market{
				{Key: models.MarketH2H, Outcomes: []models.Outcome{
					{Name: "Team A", Price: homeOdds},
					{Name: "Team B", Price: awayOdds},
				}},
			}},
		},
	}
}

// drift seeds favorable movement so ev's home selection scores well above
// the neutral 50
func drift(store *movement.Store, eventID string) {
	snaps := []models.OddsSnapshot{}
	for i, odds := range []float64{1.70, 1.75, 1.80} {
		snaps = append(snaps, models.OddsSnapshot{
			Timestamp: testNow.Add(time.Duration(i-4) * time.Hour),
			EventID:   eventID,
			SportKey:  "basketball_nba",
			Bookmaker: "Pinnacle",
			Market:    models.MarketH2H,
			Selection: "Team A",
			Odds:      odds,
		})
	}
	store.Append(snaps)
}

func TestGatherPrimaryOnly(t *testing.T) {
	sel, store := newTestSelector(0.62, 0.38, testSelectorConfig())
	drift(store, "ev1")

	events := []models.Event{h2hEvent("ev1", 1.80, 2.20, testNow.Add(5*time.Hour))}
	result, _ := sel.Gather(context.Background(), events)

	if len(result.Primary) != 1 {
		t.Fatalf("Primary = %d, want 1", len(result.Primary))
	}
	if result.Primary[0].ConfidenceScore < 60 {
		t.Errorf("primary candidate confidence = %v, want >= 60", result.Primary[0].ConfidenceScore)
	}
}

func TestGatherLadderFindsFallback(t *testing.T) {
	// Probability 0.57 is under the base 0.58 floor but clears the 0.56
	// rung; with favorable history the confidence lands above that rung's 55.
	sel, store := newTestSelector(0.57, 0.43, testSelectorConfig())
	drift(store, "ev1")

	events := []models.Event{h2hEvent("ev1", 2.00, 2.10, testNow.Add(5*time.Hour))}
	result, _ := sel.Gather(context.Background(), events)

	if len(result.Primary) != 0 {
		t.Fatalf("Primary = %d, want 0 (below base probability floor)", len(result.Primary))
	}
	if len(result.Fallback) != 1 {
		t.Fatalf("Fallback = %d, want 1", len(result.Fallback))
	}
}

func TestGatherLadderTerminatesUnderQuota(t *testing.T) {
	// No candidates at any rung: the walk must end with an empty result,
	// not loop forever
	sel, _ := newTestSelector(0.40, 0.30, testSelectorConfig())

	events := []models.Event{h2hEvent("ev1", 1.80, 2.20, testNow.Add(5*time.Hour))}
	result, _ := sel.Gather(context.Background(), events)

	if len(result.Primary)+len(result.Fallback) != 0 {
		t.Errorf("got %d candidates, want 0", len(result.All()))
	}
}

func TestGatherNoDuplicatesAcrossRungs(t *testing.T) {
	// The same candidate qualifies at every rung; it must appear once
	sel, store := newTestSelector(0.57, 0.43, testSelectorConfig())
	drift(store, "ev1")

	events := []models.Event{h2hEvent("ev1", 2.00, 2.10, testNow.Add(5*time.Hour))}
	result, _ := sel.Gather(context.Background(), events)

	seen := make(map[string]int)
	for _, c := range result.All() {
		seen[c.Key()]++
	}
	for key, n := range seen {
		if n > 1 {
			t.Errorf("candidate %s appears %d times", key, n)
		}
	}
}

func TestSelectBestPicksHighestValue(t *testing.T) {
	sel, store := newTestSelector(0.62, 0.38, testSelectorConfig())
	drift(store, "ev1")
	drift(store, "ev2")

	// ev2 has better odds for the same probability: higher value wins
	events := []models.Event{
		h2hEvent("ev1", 1.80, 2.20, testNow.Add(5*time.Hour)),
		h2hEvent("ev2", 1.90, 2.20, testNow.Add(8*time.Hour)),
	}

	best, _, _ := sel.SelectBest(context.Background(), events)
	if best == nil {
		t.Fatal("expected a pick")
	}
	if best.EventID != "ev2" {
		t.Errorf("picked %s, want ev2 (higher value)", best.EventID)
	}
}

func TestSelectBestValueTieFavorsImminentEvent(t *testing.T) {
	sel, store := newTestSelector(0.62, 0.38, testSelectorConfig())
	drift(store, "ev1")
	drift(store, "ev2")

	// Identical odds and probability: ev2 starts inside the 8h imminent
	// window while ev1 does not
	events := []models.Event{
		h2hEvent("ev1", 1.80, 2.20, testNow.Add(9*time.Hour)),
		h2hEvent("ev2", 1.80, 2.20, testNow.Add(3*time.Hour)),
	}

	best, _, _ := sel.SelectBest(context.Background(), events)
	if best == nil {
		t.Fatal("expected a pick")
	}
	if best.EventID != "ev2" {
		t.Errorf("picked %s, want the imminent ev2", best.EventID)
	}
}

func TestSelectBestValueTieOutsideImminentWindow(t *testing.T) {
	sel, store := newTestSelector(0.62, 0.38, testSelectorConfig())
	sel.WithImminentWindow(time.Hour)
	drift(store, "ev1")
	drift(store, "ev2")

	// Neither event is imminent under a 1h window; the earlier commence
	// time still breaks the tie
	events := []models.Event{
		h2hEvent("ev1", 1.80, 2.20, testNow.Add(9*time.Hour)),
		h2hEvent("ev2", 1.80, 2.20, testNow.Add(3*time.Hour)),
	}

	best, _, _ := sel.SelectBest(context.Background(), events)
	if best == nil {
		t.Fatal("expected a pick")
	}
	if best.EventID != "ev2" {
		t.Errorf("picked %s, want the earlier-starting ev2", best.EventID)
	}
}

func TestSelectBestEnforcesHardFloor(t *testing.T) {
	// No movement history: every candidate scores the neutral 50, under
	// the hard floor of 55. Zero alerts is the correct outcome.
	sel, _ := newTestSelector(0.62, 0.38, testSelectorConfig())

	events := []models.Event{h2hEvent("ev1", 1.80, 2.20, testNow.Add(5*time.Hour))}
	best, result, _ := sel.SelectBest(context.Background(), events)

	if best != nil {
		t.Errorf("picked %+v, want nil under the hard confidence floor", best)
	}
	// The candidates were still discovered via the ladder
	if len(result.All()) == 0 {
		t.Error("expected discovered candidates even when none clears the floor")
	}
}

func TestSelectBestEmptyInput(t *testing.T) {
	sel, _ := newTestSelector(0.62, 0.38, testSelectorConfig())

	best, result, stats := sel.SelectBest(context.Background(), nil)
	if best != nil {
		t.Errorf("best = %+v, want nil for empty input", best)
	}
	if len(result.All()) != 0 || stats.Emitted != 0 {
		t.Error("empty input should yield an empty result")
	}
}

func TestRevalidate(t *testing.T) {
	sel, _ := newTestSelector(0.62, 0.38, testSelectorConfig())

	valid := models.Candidate{
		EventID:         "ev1",
		SportKey:        "basketball_nba",
		Odds:            1.80,
		Probability:     0.62,
		Value:           1.116,
		ConfidenceScore: 70,
		CommenceTime:    testNow.Add(5 * time.Hour),
	}

	tests := []struct {
		name    string
		mutate  func(c *models.Candidate)
		wantErr bool
	}{
		{"valid candidate", func(c *models.Candidate) {}, false},
		{"odds drifted above max", func(c *models.Candidate) { c.Odds = 3.2 }, true},
		{"odds under min", func(c *models.Candidate) { c.Odds = 1.4 }, true},
		{"probability below original floor", func(c *models.Candidate) { c.Probability = 0.56 }, true},
		{"value below sport threshold", func(c *models.Candidate) { c.Value = 1.05 }, true},
		{"confidence below hard floor", func(c *models.Candidate) { c.ConfidenceScore = 54 }, true},
		{"event already started", func(c *models.Candidate) { c.CommenceTime = testNow.Add(-time.Minute) }, true},
		{"unknown sport", func(c *models.Candidate) { c.SportKey = "cricket_ipl" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := sel.Revalidate(c)
			if (err != nil) != tt.wantErr {
				t.Errorf("Revalidate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// Revalidation always uses the original thresholds even though discovery
// relaxed them: a ladder-admitted candidate fails the pre-dispatch check.
func TestRevalidateUsesOriginalThresholds(t *testing.T) {
	sel, store := newTestSelector(0.57, 0.43, config.SelectorConfig{
		TargetDailyPicks:    5,
		ConfidenceFloor:     60,
		HardConfidenceFloor: 50,
	})
	drift(store, "ev1")

	events := []models.Event{h2hEvent("ev1", 2.00, 2.10, testNow.Add(5*time.Hour))}
	best, _, _ := sel.SelectBest(context.Background(), events)
	if best == nil {
		t.Fatal("expected a relaxed pick")
	}

	if err := sel.Revalidate(*best); err == nil {
		t.Error("relaxed candidate (probability 0.57 < 0.58) must fail revalidation")
	}
}
