package estimator

import (
	"context"
	"fmt"
	"strings"

	"github.com/valuehound/valuehound/pkg/contracts"
	"github.com/valuehound/valuehound/pkg/models"
	"github.com/valuehound/valuehound/pkg/oddsmath"
)

// MarketImplied estimates outcome probabilities from the event's own h2h
// quotes: each book's implied probabilities are de-vigged, then averaged
// across books. This is the documented fallback strategy when no model
// estimate is available.
type MarketImplied struct{}

// NewMarketImplied creates the market-implied estimator
func NewMarketImplied() *MarketImplied {
	return &MarketImplied{}
}

// Name identifies the strategy in logs
func (m *MarketImplied) Name() string { return "market_implied" }

// Estimate averages no-vig h2h probabilities across the event's bookmakers
func (m *MarketImplied) Estimate(_ context.Context, event models.Event) (contracts.OutcomeProbabilities, error) {
	var sumHome, sumAway, sumDraw float64
	books := 0

	for _, book := range event.Bookmakers {
		for _, market := range book.Markets {
			if market.Key != models.MarketH2H {
				continue
			}

			home, away, draw, ok := devigH2H(event, market)
			if !ok {
				continue
			}

			sumHome += home
			sumAway += away
			sumDraw += draw
			books++
		}
	}

	if books == 0 {
		return contracts.OutcomeProbabilities{}, fmt.Errorf("no usable h2h market for event %s", event.ID)
	}

	return contracts.OutcomeProbabilities{
		Home:   sumHome / float64(books),
		Away:   sumAway / float64(books),
		Draw:   sumDraw / float64(books),
		Source: m.Name(),
	}, nil
}

// devigH2H removes the vig from one book's h2h market and maps the fair
// probabilities onto home/away/draw by outcome name.
func devigH2H(event models.Event, market models.Market) (home, away, draw float64, ok bool) {
	implied := make([]float64, 0, len(market.Outcomes))
	for _, outcome := range market.Outcomes {
		p, err := oddsmath.ImpliedProbability(outcome.Price)
		if err != nil {
			return 0, 0, 0, false
		}
		implied = append(implied, p)
	}
	if len(implied) < 2 {
		return 0, 0, 0, false
	}

	fair, err := oddsmath.RemoveVigMultiplicative(implied)
	if err != nil {
		// Zero-vig books are rare but valid: use the raw implied numbers
		fair = implied
	}

	for i, outcome := range market.Outcomes {
		switch ClassifySelection(outcome.Name, event.HomeTeam, event.AwayTeam) {
		case SelectionHome:
			home = fair[i]
		case SelectionAway:
			away = fair[i]
		case SelectionDraw:
			draw = fair[i]
		}
	}

	return home, away, draw, home > 0 || away > 0
}

// SelectionSide classifies an outcome name against the event's teams
type SelectionSide int

const (
	SelectionUnknown SelectionSide = iota
	SelectionHome
	SelectionAway
	SelectionDraw
)

// ClassifySelection maps an outcome name to home/away/draw. Matching is
// case-insensitive and tolerates the name embedding the team name.
func ClassifySelection(name, homeTeam, awayTeam string) SelectionSide {
	lower := strings.ToLower(strings.TrimSpace(name))

	if lower == "draw" || lower == "x" || strings.Contains(lower, "draw") {
		return SelectionDraw
	}
	if homeTeam != "" && strings.Contains(lower, strings.ToLower(homeTeam)) {
		return SelectionHome
	}
	if awayTeam != "" && strings.Contains(lower, strings.ToLower(awayTeam)) {
		return SelectionAway
	}
	if lower == "home" {
		return SelectionHome
	}
	if lower == "away" {
		return SelectionAway
	}
	return SelectionUnknown
}
