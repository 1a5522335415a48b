package movement

import (
	"context"
	"log"
	"time"

	"github.com/valuehound/valuehound/pkg/contracts"
	"github.com/valuehound/valuehound/pkg/models"
)

// steamWindow restricts steam move detection to recent movement
const steamWindow = 30 * time.Minute

// rlmImprovementPct is the minimum favorable change to flag reverse line movement
const rlmImprovementPct = 2.0

// rlmHighConfidencePct upgrades an RLM flag to high confidence
const rlmHighConfidencePct = 5.0

// Tracker records odds snapshots and analyzes line movement: summaries,
// steam moves and reverse line movement. Analytics failures degrade to
// empty results and never block the scan cycle.
type Tracker struct {
	store     *Store
	persister contracts.SnapshotPersister
	now       func() time.Time
}

// NewTracker creates a tracker over the given store. The persister may be
// nil, in which case snapshots are kept in memory only.
func NewTracker(store *Store, persister contracts.SnapshotPersister) *Tracker {
	return &Tracker{
		store:     store,
		persister: persister,
		now:       time.Now,
	}
}

// WithClock replaces the tracker's clock. For tests.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	t.store.WithClock(now)
	return t
}

// RecordSnapshots captures one snapshot per bookmaker/market/outcome of the
// supplied events, tagged with the capture time, batch-persists them, then
// purges snapshots past retention. Returns the number recorded.
func (t *Tracker) RecordSnapshots(ctx context.Context, events []models.Event) int {
	now := t.now().UTC()
	var batch []models.OddsSnapshot

	for _, event := range events {
		if event.ID == "" {
			continue
		}
		for _, book := range event.Bookmakers {
			bookName := book.Title
			if bookName == "" {
				bookName = book.Key
			}
			for _, market := range book.Markets {
				for _, outcome := range market.Outcomes {
					if outcome.Name == "" || outcome.Price <= 0 {
						continue
					}
					batch = append(batch, models.OddsSnapshot{
						Timestamp: now,
						EventID:   event.ID,
						SportKey:  event.SportKey,
						Bookmaker: bookName,
						Market:    market.Key,
						Selection: outcome.Name,
						Odds:      outcome.Price,
						Point:     outcome.Point,
					})
				}
			}
		}
	}

	if len(batch) == 0 {
		return 0
	}

	t.store.Append(batch)

	if t.persister != nil {
		if _, err := t.persister.SaveSnapshotsBatch(ctx, batch); err != nil {
			log.Printf("[movement] snapshot batch persist failed: %v", err)
		}
	}

	t.store.Purge()

	log.Printf("[movement] recorded %d odds snapshots", len(batch))
	return len(batch)
}

// Summary computes the line movement view for one selection of an event.
// Returns nil when fewer than 2 snapshots exist in memory and in the
// persisted history.
func (t *Tracker) Summary(ctx context.Context, eventID, selection string) *models.LineMovementSummary {
	snaps := t.store.SelectionSnapshots(eventID, selection)

	if len(snaps) < 2 && t.persister != nil {
		persisted, err := t.persister.OddsHistory(ctx, eventID, int(t.store.retention.Hours()))
		if err != nil {
			log.Printf("[movement] odds history query failed for %s: %v", eventID, err)
		} else {
			snaps = snaps[:0]
			for _, snap := range persisted {
				if snap.Selection == selection {
					snaps = append(snaps, snap)
				}
			}
		}
	}

	if len(snaps) < 2 {
		return nil
	}

	opening := snaps[0].Odds
	current := snaps[len(snaps)-1].Odds
	peak, lowest := opening, opening
	for _, snap := range snaps {
		if snap.Odds > peak {
			peak = snap.Odds
		}
		if snap.Odds < lowest {
			lowest = snap.Odds
		}
	}

	return &models.LineMovementSummary{
		EventID:       eventID,
		Selection:     selection,
		OpeningOdds:   opening,
		CurrentOdds:   current,
		PeakOdds:      peak,
		LowestOdds:    lowest,
		ChangePercent: (current - opening) / opening * 100,
		Trend:         classifyTrend(snaps),
		IsFavorable:   current > opening,
		SnapshotCount: len(snaps),
		TimeSpanHours: snaps[len(snaps)-1].Timestamp.Sub(snaps[0].Timestamp).Hours(),
	}
}

// classifyTrend looks at the last 3 points: strictly rising is drifting,
// strictly falling is shortening, anything else is stable.
func classifyTrend(snaps []models.OddsSnapshot) models.Trend {
	if len(snaps) < 3 {
		return models.TrendInsufficientData
	}

	last := snaps[len(snaps)-3:]
	rising := last[0].Odds < last[1].Odds && last[1].Odds < last[2].Odds
	falling := last[0].Odds > last[1].Odds && last[1].Odds > last[2].Odds

	switch {
	case rising:
		return models.TrendDrifting
	case falling:
		return models.TrendShortening
	default:
		return models.TrendStable
	}
}

// SteamMoves detects rapid odds moves for an event: per
// (bookmaker, market, selection) group, the percent change between the
// first and last snapshot of the past 30 minutes, flagged when
// |change| >= thresholdPct.
func (t *Tracker) SteamMoves(eventID string, thresholdPct float64) []models.SteamMove {
	snaps := t.store.Snapshots(eventID)
	if len(snaps) < 2 {
		return nil
	}

	type groupKey struct {
		bookmaker, market, selection string
	}
	grouped := make(map[groupKey][]models.OddsSnapshot)
	for _, snap := range snaps {
		k := groupKey{snap.Bookmaker, snap.Market, snap.Selection}
		grouped[k] = append(grouped[k], snap)
	}

	windowStart := t.now().Add(-steamWindow)
	var moves []models.SteamMove

	for k, series := range grouped {
		var recent []models.OddsSnapshot
		for _, snap := range series {
			if snap.Timestamp.After(windowStart) {
				recent = append(recent, snap)
			}
		}
		if len(recent) < 2 {
			continue
		}

		first := recent[0].Odds
		last := recent[len(recent)-1].Odds
		changePct := (last - first) / first * 100

		if abs(changePct) < thresholdPct {
			continue
		}

		direction := models.TrendDrifting
		if changePct < 0 {
			direction = models.TrendShortening
		}

		moves = append(moves, models.SteamMove{
			EventID:       eventID,
			Bookmaker:     k.bookmaker,
			Market:        k.market,
			Selection:     k.selection,
			InitialOdds:   first,
			CurrentOdds:   last,
			ChangePercent: changePct,
			Direction:     direction,
			DetectedAt:    t.now().UTC(),
		})
	}

	if len(moves) > 0 {
		log.Printf("[movement] detected %d steam moves for event %s", len(moves), eventID)
	}
	return moves
}

// ReverseLineMovement scans home/away selections of the given events for
// odds drifting in the bettor's favor: flagged when the improvement since
// opening exceeds 2%, with high confidence above 5%.
func (t *Tracker) ReverseLineMovement(ctx context.Context, events []models.Event) []models.RLMOpportunity {
	var opportunities []models.RLMOpportunity

	for _, event := range events {
		if event.ID == "" {
			continue
		}
		for _, selection := range []string{event.HomeTeam, event.AwayTeam} {
			if selection == "" {
				continue
			}

			summary := t.Summary(ctx, event.ID, selection)
			if summary == nil || !summary.IsFavorable {
				continue
			}
			if summary.ChangePercent <= rlmImprovementPct {
				continue
			}

			confidence := models.ConfidenceMedium
			if summary.ChangePercent > rlmHighConfidencePct {
				confidence = models.ConfidenceHigh
			}

			opportunities = append(opportunities, models.RLMOpportunity{
				EventID:            event.ID,
				Selection:          selection,
				SportKey:           event.SportKey,
				OpeningOdds:        summary.OpeningOdds,
				CurrentOdds:        summary.CurrentOdds,
				ImprovementPercent: summary.ChangePercent,
				Trend:              summary.Trend,
				Confidence:         confidence,
			})
		}
	}

	if len(opportunities) > 0 {
		log.Printf("[movement] found %d RLM opportunities", len(opportunities))
	}
	return opportunities
}

// BestOddsTiming recommends when to place a bet from the line history:
// near the recent peak and still drifting means bet now; shortening back
// toward the open means bet soon before the price is gone.
func (t *Tracker) BestOddsTiming(ctx context.Context, eventID, selection string) models.TimingRecommendation {
	summary := t.Summary(ctx, eventID, selection)
	if summary == nil {
		return models.TimingInsufficientData
	}

	switch {
	case summary.Trend == models.TrendDrifting && summary.CurrentOdds >= summary.PeakOdds*0.98:
		return models.TimingBetNow
	case summary.Trend == models.TrendShortening && summary.CurrentOdds <= summary.OpeningOdds*1.02:
		return models.TimingBetSoon
	case summary.Trend == models.TrendStable:
		return models.TimingWaitAndWatch
	default:
		return models.TimingAnalyzeCarefully
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
