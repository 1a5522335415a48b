package tracker

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/valuehound/valuehound/pkg/contracts"
	"github.com/valuehound/valuehound/pkg/models"
)

// minVerifyAge leaves completed games time to post final scores before we
// try to settle their alerts
const minVerifyAge = 3 * time.Hour

// ScoresProvider fetches completed-game scores for a sport
type ScoresProvider interface {
	Scores(ctx context.Context, sportKey string, daysFrom int) ([]models.EventScore, error)
}

// SettleStats summarizes one verification pass
type SettleStats struct {
	Checked     int
	Settled     int
	Won         int
	Lost        int
	Push        int
	Deferred    int
	TotalProfit float64
}

// Settler runs the periodic verification pass: it fetches completed-event
// scores and transitions pending alerts to won/lost/push. Events not yet
// completed or with incomplete score data are deferred, never settled
// speculatively.
type Settler struct {
	store  contracts.AlertStore
	scores ScoresProvider
}

// NewSettler creates a settler
func NewSettler(store contracts.AlertStore, scores ScoresProvider) *Settler {
	return &Settler{store: store, scores: scores}
}

// VerifyPending settles every pending alert whose event has completed.
// A panic in settlement logic is contained to the pass.
func (s *Settler) VerifyPending(ctx context.Context) (stats SettleStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in verification pass: %v", r)
			log.Printf("[settler] PANIC: %v", r)
		}
	}()

	pending, err := s.store.PendingAlerts(ctx, minVerifyAge)
	if err != nil {
		return stats, fmt.Errorf("query pending alerts: %w", err)
	}
	if len(pending) == 0 {
		return stats, nil
	}

	log.Printf("[settler] verifying %d pending alerts", len(pending))

	// One scores fetch per sport, shared by every alert of that sport
	scoresBySport := make(map[string]map[string]models.EventScore)

	for _, alert := range pending {
		stats.Checked++

		bySport, ok := scoresBySport[alert.SportKey]
		if !ok {
			fetched, ferr := s.scores.Scores(ctx, alert.SportKey, 3)
			if ferr != nil {
				log.Printf("[settler] scores fetch failed for %s: %v", alert.SportKey, ferr)
				scoresBySport[alert.SportKey] = map[string]models.EventScore{}
				stats.Deferred++
				continue
			}
			bySport = make(map[string]models.EventScore, len(fetched))
			for _, score := range fetched {
				bySport[score.ID] = score
			}
			scoresBySport[alert.SportKey] = bySport
		}

		score, found := bySport[alert.EventID]
		if !found || !score.Completed {
			stats.Deferred++
			continue
		}

		status, profitLoss, ok := SettleAlert(alert, score)
		if !ok {
			stats.Deferred++
			continue
		}

		if uerr := s.store.UpdateAlertResult(ctx, alert.ID, status, profitLoss); uerr != nil {
			log.Printf("[settler] failed to update alert %s: %v", alert.ID, uerr)
			continue
		}

		stats.Settled++
		stats.TotalProfit += profitLoss
		switch status {
		case models.AlertWon:
			stats.Won++
		case models.AlertLost:
			stats.Lost++
		case models.AlertPush:
			stats.Push++
		}
	}

	log.Printf("[settler] pass complete: settled=%d won=%d lost=%d push=%d deferred=%d profit=%+.2f",
		stats.Settled, stats.Won, stats.Lost, stats.Push, stats.Deferred, stats.TotalProfit)
	return stats, nil
}

// SettleAlert determines the terminal status and profit/loss for an alert
// given its event's final score. Profit/loss always uses the odds stored
// on the alert. ok is false when the score data is incomplete and the
// alert must stay pending.
func SettleAlert(alert models.Alert, score models.EventScore) (models.AlertStatus, float64, bool) {
	homeScore, awayScore, ok := teamScores(score)
	if !ok {
		return models.AlertPending, 0, false
	}

	var status models.AlertStatus
	switch alert.PickType {
	case models.MarketH2H:
		status = settleH2H(alert, score, homeScore, awayScore)
	case models.MarketSpreads:
		status = settleSpreads(alert, score, homeScore, awayScore)
	case models.MarketTotals:
		status = settleTotals(alert, homeScore, awayScore)
	default:
		// Unknown market: leave pending rather than guess
		return models.AlertPending, 0, false
	}

	return status, profitLoss(alert, status), true
}

// profitLoss computes P/L from the stored stake and odds:
// won stake*(odds-1), lost -stake, push 0.
func profitLoss(alert models.Alert, status models.AlertStatus) float64 {
	switch status {
	case models.AlertWon:
		return alert.Stake * (alert.Odds - 1)
	case models.AlertLost:
		return -alert.Stake
	default:
		return 0
	}
}

// settleH2H: the draw selection wins iff scores are equal; a team
// selection needs its side to win outright.
func settleH2H(alert models.Alert, score models.EventScore, homeScore, awayScore int) models.AlertStatus {
	sel := strings.ToLower(alert.Selection)

	if strings.Contains(sel, "draw") || sel == "x" {
		if homeScore == awayScore {
			return models.AlertWon
		}
		return models.AlertLost
	}

	if matchesTeam(alert.Selection, score.HomeTeam) {
		if homeScore > awayScore {
			return models.AlertWon
		}
		return models.AlertLost
	}
	if matchesTeam(alert.Selection, score.AwayTeam) {
		if awayScore > homeScore {
			return models.AlertWon
		}
		return models.AlertLost
	}

	return models.AlertLost
}

// settleSpreads: add the stored point to the picked team's score before
// comparing; landing exactly on the line is a push.
func settleSpreads(alert models.Alert, score models.EventScore, homeScore, awayScore int) models.AlertStatus {
	if alert.Point == nil {
		return models.AlertLost
	}
	point := *alert.Point

	var adjusted, opponent float64
	if matchesTeam(alert.Selection, score.HomeTeam) {
		adjusted = float64(homeScore) + point
		opponent = float64(awayScore)
	} else {
		adjusted = float64(awayScore) + point
		opponent = float64(homeScore)
	}

	switch {
	case adjusted > opponent:
		return models.AlertWon
	case adjusted == opponent:
		return models.AlertPush
	default:
		return models.AlertLost
	}
}

// settleTotals: compare the combined score to the stored line for
// over/under; landing exactly on the line is a push.
func settleTotals(alert models.Alert, homeScore, awayScore int) models.AlertStatus {
	if alert.Point == nil {
		return models.AlertLost
	}

	total := float64(homeScore + awayScore)
	line := *alert.Point
	over := strings.Contains(strings.ToLower(alert.Selection), "over")

	if total == line {
		return models.AlertPush
	}
	if over == (total > line) {
		return models.AlertWon
	}
	return models.AlertLost
}

// teamScores extracts integer home/away scores from the feed record.
// ok is false when either side is missing or unparseable.
func teamScores(score models.EventScore) (home, away int, ok bool) {
	foundHome, foundAway := false, false
	for _, ts := range score.Scores {
		n, err := strconv.Atoi(strings.TrimSpace(ts.Score))
		if err != nil {
			continue
		}
		switch ts.Name {
		case score.HomeTeam:
			home, foundHome = n, true
		case score.AwayTeam:
			away, foundAway = n, true
		}
	}
	return home, away, foundHome && foundAway
}

func matchesTeam(selection, team string) bool {
	if team == "" {
		return false
	}
	return strings.Contains(strings.ToLower(selection), strings.ToLower(team))
}
