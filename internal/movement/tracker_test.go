package movement

import (
	"context"
	"testing"
	"time"

	"github.com/valuehound/valuehound/pkg/models"
)

func newTestTracker(now time.Time) (*Tracker, *Store) {
	store := NewStore(24)
	tracker := NewTracker(store, nil).WithClock(func() time.Time { return now })
	return tracker, store
}

func TestRecordSnapshots(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker, store := newTestTracker(now)

	events := []models.Event{
		{
			ID:       "ev1",
			SportKey: "basketball_nba",
			HomeTeam: "Lakers",
			AwayTeam: "Celtics",
			Bookmakers: []models.Bookmaker{
				{
					Key:   "pinnacle",
					Title: "Pinnacle",
					Markets: []models.Market{
						{Key: models.MarketH2H, Outcomes: []models.Outcome{
							{Name: "Lakers", Price: 1.80},
							{Name: "Celtics", Price: 2.10},
						}},
					},
				},
			},
		},
		{ID: "", SportKey: "basketball_nba"}, // missing ID, skipped
	}

	recorded := tracker.RecordSnapshots(context.Background(), events)
	if recorded != 2 {
		t.Fatalf("recorded = %d, want 2", recorded)
	}
	if got := store.EventCount(); got != 1 {
		t.Errorf("EventCount = %d, want 1", got)
	}
}

func TestRecordSnapshotsSkipsMalformedOutcomes(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker, _ := newTestTracker(now)

	events := []models.Event{
		{
			ID:       "ev1",
			SportKey: "basketball_nba",
			Bookmakers: []models.Bookmaker{
				{Key: "pinnacle", Markets: []models.Market{
					{Key: models.MarketH2H, Outcomes: []models.Outcome{
						{Name: "", Price: 1.80},      // no name
						{Name: "Lakers", Price: 0},   // no price
						{Name: "Celtics", Price: 2.10},
					}},
				}},
			},
		},
	}

	if recorded := tracker.RecordSnapshots(context.Background(), events); recorded != 1 {
		t.Errorf("recorded = %d, want 1", recorded)
	}
}

func TestSummary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker, store := newTestTracker(now)

	store.Append([]models.OddsSnapshot{
		snapshotAt("ev1", "Lakers", 1.80, now.Add(-4*time.Hour)),
		snapshotAt("ev1", "Lakers", 1.75, now.Add(-3*time.Hour)),
		snapshotAt("ev1", "Lakers", 1.85, now.Add(-2*time.Hour)),
		snapshotAt("ev1", "Lakers", 1.90, now.Add(-1*time.Hour)),
	})

	summary := tracker.Summary(context.Background(), "ev1", "Lakers")
	if summary == nil {
		t.Fatal("expected a summary, got nil")
	}

	if summary.OpeningOdds != 1.80 {
		t.Errorf("OpeningOdds = %v, want 1.80", summary.OpeningOdds)
	}
	if summary.CurrentOdds != 1.90 {
		t.Errorf("CurrentOdds = %v, want 1.90", summary.CurrentOdds)
	}
	if summary.PeakOdds != 1.90 {
		t.Errorf("PeakOdds = %v, want 1.90", summary.PeakOdds)
	}
	if summary.LowestOdds != 1.75 {
		t.Errorf("LowestOdds = %v, want 1.75", summary.LowestOdds)
	}
	if !summary.IsFavorable {
		t.Error("IsFavorable = false, want true (current above opening)")
	}

	wantChange := (1.90 - 1.80) / 1.80 * 100
	if diff := summary.ChangePercent - wantChange; diff > 0.001 || diff < -0.001 {
		t.Errorf("ChangePercent = %v, want %v", summary.ChangePercent, wantChange)
	}
	if summary.TimeSpanHours != 3 {
		t.Errorf("TimeSpanHours = %v, want 3", summary.TimeSpanHours)
	}
	if summary.SnapshotCount != 4 {
		t.Errorf("SnapshotCount = %d, want 4", summary.SnapshotCount)
	}
}

func TestSummaryRequiresTwoSnapshots(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker, store := newTestTracker(now)

	store.Append([]models.OddsSnapshot{snapshotAt("ev1", "Lakers", 1.80, now)})

	if summary := tracker.Summary(context.Background(), "ev1", "Lakers"); summary != nil {
		t.Error("expected nil summary for a single snapshot")
	}
	if summary := tracker.Summary(context.Background(), "missing", "Lakers"); summary != nil {
		t.Error("expected nil summary for unknown event")
	}
}

func TestClassifyTrend(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	series := func(odds ...float64) []models.OddsSnapshot {
		snaps := make([]models.OddsSnapshot, len(odds))
		for i, o := range odds {
			snaps[i] = snapshotAt("ev1", "Lakers", o, base.Add(time.Duration(i)*time.Hour))
		}
		return snaps
	}

	tests := []struct {
		name  string
		snaps []models.OddsSnapshot
		want  models.Trend
	}{
		{"strictly rising", series(1.80, 1.85, 1.90), models.TrendDrifting},
		{"strictly falling", series(1.90, 1.85, 1.80), models.TrendShortening},
		{"flat tail", series(1.80, 1.85, 1.85), models.TrendStable},
		{"zigzag", series(1.80, 1.90, 1.85), models.TrendStable},
		{"only last three count", series(1.95, 1.80, 1.85, 1.90), models.TrendDrifting},
		{"too few points", series(1.80, 1.85), models.TrendInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyTrend(tt.snaps); got != tt.want {
				t.Errorf("classifyTrend = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSteamMovesThresholdBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		from, to float64
		want     int
	}{
		// 2.00 -> 2.11: +5.5% change, flagged
		{"above threshold", 2.00, 2.11, 1},
		// 2.00 -> 2.10: exactly 5.0%, flagged (>= threshold)
		{"exactly at threshold", 2.00, 2.10, 1},
		// 2.00 -> 2.09: 4.5%, not flagged
		{"below threshold", 2.00, 2.09, 0},
		// shortening counts too: -6%
		{"sharp drop", 2.00, 1.88, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker, store := newTestTracker(now)
			store.Append([]models.OddsSnapshot{
				snapshotAt("ev1", "Lakers", tt.from, now.Add(-20*time.Minute)),
				snapshotAt("ev1", "Lakers", tt.to, now.Add(-5*time.Minute)),
			})

			moves := tracker.SteamMoves("ev1", 5.0)
			if len(moves) != tt.want {
				t.Fatalf("got %d steam moves, want %d", len(moves), tt.want)
			}
			if tt.want == 1 {
				move := moves[0]
				if move.InitialOdds != tt.from || move.CurrentOdds != tt.to {
					t.Errorf("move odds = %v -> %v, want %v -> %v", move.InitialOdds, move.CurrentOdds, tt.from, tt.to)
				}
				wantDir := models.TrendDrifting
				if tt.to < tt.from {
					wantDir = models.TrendShortening
				}
				if move.Direction != wantDir {
					t.Errorf("direction = %v, want %v", move.Direction, wantDir)
				}
			}
		})
	}
}

func TestSteamMovesIgnoresOldSnapshots(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	tracker, store := newTestTracker(now)

	// Large move, but it happened over an hour ago
	store.Append([]models.OddsSnapshot{
		snapshotAt("ev1", "Lakers", 2.00, now.Add(-90*time.Minute)),
		snapshotAt("ev1", "Lakers", 2.30, now.Add(-70*time.Minute)),
	})

	if moves := tracker.SteamMoves("ev1", 5.0); len(moves) != 0 {
		t.Errorf("got %d steam moves outside the 30m window, want 0", len(moves))
	}
}

func TestReverseLineMovement(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	buildTracker := func(open, current float64) *Tracker {
		tracker, store := newTestTracker(now)
		store.Append([]models.OddsSnapshot{
			snapshotAt("ev1", "Lakers", open, now.Add(-3*time.Hour)),
			snapshotAt("ev1", "Lakers", current, now.Add(-1*time.Hour)),
		})
		return tracker
	}

	events := []models.Event{{ID: "ev1", SportKey: "basketball_nba", HomeTeam: "Lakers", AwayTeam: "Celtics"}}

	t.Run("improvement above 2 percent flags medium", func(t *testing.T) {
		// 2.00 -> 2.06: +3%
		opps := buildTracker(2.00, 2.06).ReverseLineMovement(context.Background(), events)
		if len(opps) != 1 {
			t.Fatalf("got %d opportunities, want 1", len(opps))
		}
		if opps[0].Confidence != models.ConfidenceMedium {
			t.Errorf("confidence = %v, want medium", opps[0].Confidence)
		}
	})

	t.Run("improvement above 5 percent flags high", func(t *testing.T) {
		// 2.00 -> 2.12: +6%
		opps := buildTracker(2.00, 2.12).ReverseLineMovement(context.Background(), events)
		if len(opps) != 1 {
			t.Fatalf("got %d opportunities, want 1", len(opps))
		}
		if opps[0].Confidence != models.ConfidenceHigh {
			t.Errorf("confidence = %v, want high", opps[0].Confidence)
		}
	})

	t.Run("small improvement not flagged", func(t *testing.T) {
		// 2.00 -> 2.03: +1.5%
		if opps := buildTracker(2.00, 2.03).ReverseLineMovement(context.Background(), events); len(opps) != 0 {
			t.Errorf("got %d opportunities, want 0", len(opps))
		}
	})

	t.Run("unfavorable movement not flagged", func(t *testing.T) {
		if opps := buildTracker(2.00, 1.90).ReverseLineMovement(context.Background(), events); len(opps) != 0 {
			t.Errorf("got %d opportunities, want 0", len(opps))
		}
	})
}

func TestBestOddsTiming(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	buildTracker := func(odds ...float64) *Tracker {
		tracker, store := newTestTracker(now)
		snaps := make([]models.OddsSnapshot, len(odds))
		for i, o := range odds {
			snaps[i] = snapshotAt("ev1", "Lakers", o, now.Add(time.Duration(i-len(odds))*time.Hour))
		}
		store.Append(snaps)
		return tracker
	}

	tests := []struct {
		name string
		odds []float64
		want models.TimingRecommendation
	}{
		{"drifting near peak", []float64{1.80, 1.85, 1.90}, models.TimingBetNow},
		{"shortening back to open", []float64{1.80, 1.78, 1.76}, models.TimingBetSoon},
		{"stable", []float64{1.80, 1.82, 1.82}, models.TimingWaitAndWatch},
		{"no history", nil, models.TimingInsufficientData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := buildTracker(tt.odds...).BestOddsTiming(context.Background(), "ev1", "Lakers"); got != tt.want {
				t.Errorf("BestOddsTiming = %v, want %v", got, tt.want)
			}
		})
	}
}
