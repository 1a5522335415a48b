package stake

import (
	"math"

	"github.com/valuehound/valuehound/internal/config"
)

// Kelly sizes stakes with fractional Kelly Criterion:
//
//	f* = (b*p - q) / b
//
// where b is net decimal odds, p the win probability and q = 1-p. The
// fraction (quarter Kelly by default) trades growth for drawdown control,
// and the stake is capped at a maximum share of bankroll.
type Kelly struct {
	fraction    float64
	maxStakePct float64
}

// NewKelly creates a Kelly sizer
func NewKelly(cfg config.StakeConfig) *Kelly {
	return &Kelly{
		fraction:    cfg.KellyFraction,
		maxStakePct: cfg.MaxStakePct,
	}
}

// Stake returns the recommended stake for the given bankroll, decimal
// odds and win probability. Zero when inputs are invalid or the bet has
// no edge (negative Kelly).
func (k *Kelly) Stake(bankroll, odds, probability float64) float64 {
	return k.stake(bankroll, odds, probability, 1.0)
}

// StakeWithConfidence scales the Kelly percentage by a multiplier derived
// from the pick's confidence score before the fraction and cap apply, so
// high-confidence picks size up and marginal ones size down.
func (k *Kelly) StakeWithConfidence(bankroll, odds, probability, confidenceScore float64) float64 {
	return k.stake(bankroll, odds, probability, ConfidenceMultiplier(confidenceScore))
}

func (k *Kelly) stake(bankroll, odds, probability, multiplier float64) float64 {
	if bankroll <= 0 || odds <= 1.0 || probability <= 0 || probability >= 1 {
		return 0
	}

	b := odds - 1.0
	p := probability
	q := 1.0 - p

	kellyPct := (b*p - q) / b
	if kellyPct <= 0 {
		return 0
	}

	pct := kellyPct * multiplier * k.fraction
	if pct > k.maxStakePct {
		pct = k.maxStakePct
	}

	return round2(bankroll * pct)
}

// ConfidenceMultiplier maps a 0-100 confidence score to a stake multiplier
// in [0.5, 1.5]. A score of 50 is neutral (1.0).
func ConfidenceMultiplier(score float64) float64 {
	m := 0.5 + score/100
	if m < 0.5 {
		return 0.5
	}
	if m > 1.5 {
		return 1.5
	}
	return m
}

// KellyPercent returns the full-Kelly bankroll fraction for display.
// Negative values mean no edge.
func (k *Kelly) KellyPercent(odds, probability float64) float64 {
	if odds <= 1.0 || probability <= 0 || probability >= 1 {
		return 0
	}
	b := odds - 1.0
	return (b*probability - (1.0 - probability)) / b
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
