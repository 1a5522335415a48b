package oddsmath

import (
	"fmt"
	"math"
)

// ImpliedProbability converts decimal odds to implied probability.
// Decimal 2.00 → 0.50, decimal 1.50 → 0.667.
func ImpliedProbability(decimal float64) (float64, error) {
	if decimal <= 0 {
		return 0, fmt.Errorf("invalid decimal odds: must be > 0")
	}
	return 1.0 / decimal, nil
}

// ProbabilityToDecimal converts probability to fair decimal odds
func ProbabilityToDecimal(probability float64) (float64, error) {
	if probability <= 0 || probability >= 1 {
		return 0, fmt.Errorf("invalid probability: must be between 0 and 1")
	}
	return 1.0 / probability, nil
}

// AmericanToDecimal converts American odds to decimal odds.
// +150 → 2.50, -150 → 1.67.
func AmericanToDecimal(american int) (float64, error) {
	if american == 0 {
		return 0, fmt.Errorf("invalid American odds: cannot be 0")
	}
	if american > 0 {
		return (float64(american) / 100.0) + 1.0, nil
	}
	return (100.0 / float64(-american)) + 1.0, nil
}

// DecimalToAmerican converts decimal odds to American odds.
// 2.50 → +150, 1.67 → -150.
func DecimalToAmerican(decimal float64) (int, error) {
	if decimal < 1.0 {
		return 0, fmt.Errorf("invalid decimal odds: must be >= 1.0")
	}
	if decimal >= 2.0 {
		return int(math.Round((decimal - 1.0) * 100.0)), nil
	}
	return int(math.Round(-100.0 / (decimal - 1.0))), nil
}

// RemoveVigMultiplicative removes vig from a market by normalizing implied
// probabilities so they sum to 1.0. Works for two- and three-way markets.
//
// Example: -110/-110 quotes imply 52.38%/52.38% (4.76% overround); the fair
// probabilities after normalization are 50%/50%.
func RemoveVigMultiplicative(probabilities []float64) ([]float64, error) {
	if len(probabilities) < 2 {
		return nil, fmt.Errorf("need at least 2 outcomes")
	}

	total := 0.0
	for _, p := range probabilities {
		if p <= 0 || p >= 1 {
			return nil, fmt.Errorf("all probabilities must be between 0 and 1")
		}
		total += p
	}

	if total <= 1.0 {
		return nil, fmt.Errorf("no vig detected: probabilities sum to <= 1.0")
	}

	fair := make([]float64, len(probabilities))
	for i, p := range probabilities {
		fair[i] = p / total
	}
	return fair, nil
}

// VigPercentage returns the market overround as a percentage.
// Returns 0 when the probabilities sum to 1.0 or less.
func VigPercentage(probabilities []float64) (float64, error) {
	if len(probabilities) == 0 {
		return 0, fmt.Errorf("no probabilities provided")
	}

	total := 0.0
	for _, p := range probabilities {
		if p <= 0 || p >= 1 {
			return 0, fmt.Errorf("all probabilities must be between 0 and 1")
		}
		total += p
	}

	if total <= 1.0 {
		return 0, nil
	}
	return (total - 1.0) * 100.0, nil
}

// ExpectedValue computes EV per unit stake for decimal odds and win probability.
// Positive means +EV: probability*odds - 1.
func ExpectedValue(decimal, probability float64) float64 {
	return probability*decimal - 1.0
}
