package estimator

import (
	"context"
	"fmt"
	"log"

	"github.com/valuehound/valuehound/pkg/contracts"
	"github.com/valuehound/valuehound/pkg/models"
)

// Chain tries estimators in order and returns the first successful
// estimate. The standard wiring is model first, market-implied last, so a
// missing or failing model degrades to market-implied numbers instead of
// aborting the scan.
type Chain struct {
	strategies []contracts.ProbabilityEstimator
}

// NewChain builds a fallback chain from the given strategies, tried in order
func NewChain(strategies ...contracts.ProbabilityEstimator) *Chain {
	return &Chain{strategies: strategies}
}

// Name identifies the chain in logs
func (c *Chain) Name() string { return "chain" }

// Estimate returns the first strategy's successful estimate
func (c *Chain) Estimate(ctx context.Context, event models.Event) (contracts.OutcomeProbabilities, error) {
	for i, strategy := range c.strategies {
		probs, err := strategy.Estimate(ctx, event)
		if err == nil {
			return probs, nil
		}
		if i < len(c.strategies)-1 {
			log.Printf("[estimator] %s failed for event %s, falling back: %v", strategy.Name(), event.ID, err)
		}
	}
	return contracts.OutcomeProbabilities{}, fmt.Errorf("no strategy could estimate event %s", event.ID)
}

// Fixed returns preset probabilities for every event. Used in tests and as
// an injection point for external model outputs.
type Fixed struct {
	Probs contracts.OutcomeProbabilities
}

// Name identifies the strategy in logs
func (f *Fixed) Name() string { return "fixed" }

// Estimate returns the preset probabilities
func (f *Fixed) Estimate(_ context.Context, _ models.Event) (contracts.OutcomeProbabilities, error) {
	return f.Probs, nil
}
