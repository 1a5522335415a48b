package stake

import (
	"math"
	"testing"

	"github.com/valuehound/valuehound/internal/config"
)

func newTestKelly() *Kelly {
	return NewKelly(config.StakeConfig{KellyFraction: 0.25, MaxStakePct: 0.05})
}

func TestKellyStake(t *testing.T) {
	k := newTestKelly()

	tests := []struct {
		name        string
		bankroll    float64
		odds        float64
		probability float64
		want        float64
	}{
		// f* = (0.8*0.62 - 0.38) / 0.8 = 0.145; quarter = 0.03625
		{"typical value pick", 1000, 1.80, 0.62, 36.25},
		// full Kelly 0.29 quarters to 0.0725, capped at 5%
		{"capped at max stake", 1000, 2.00, 0.645, 50.00},
		{"no edge", 1000, 1.60, 0.60, 0},
		{"zero bankroll", 0, 1.80, 0.62, 0},
		{"invalid odds", 1000, 1.00, 0.62, 0},
		{"invalid probability", 1000, 1.80, 1.0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := k.Stake(tt.bankroll, tt.odds, tt.probability)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("Stake(%v, %v, %v) = %v, want %v", tt.bankroll, tt.odds, tt.probability, got, tt.want)
			}
		})
	}
}

func TestKellyStakeWithConfidence(t *testing.T) {
	k := newTestKelly()

	tests := []struct {
		name       string
		confidence float64
		want       float64
	}{
		// base quarter-Kelly stake at 1000/1.80/0.62 is 36.25
		{"neutral score leaves the stake unchanged", 50, 36.25},
		// multiplier 1.25: 0.145 * 1.25 / 4 = 0.0453125
		{"high confidence sizes up", 75, 45.31},
		// multiplier 0.5: 0.145 * 0.5 / 4 = 0.018125
		{"low confidence sizes down", 0, 18.13},
		// multiplier 1.5: 0.145 * 1.5 / 4 = 0.054375, capped at 5%
		{"maximum confidence still respects the cap", 100, 50.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := k.StakeWithConfidence(1000, 1.80, 0.62, tt.confidence)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("StakeWithConfidence(confidence=%v) = %v, want %v", tt.confidence, got, tt.want)
			}
		})
	}
}

func TestConfidenceMultiplier(t *testing.T) {
	tests := []struct {
		score float64
		want  float64
	}{
		{0, 0.5},
		{50, 1.0},
		{75, 1.25},
		{100, 1.5},
		{140, 1.5},
		{-10, 0.5},
	}

	for _, tt := range tests {
		if got := ConfidenceMultiplier(tt.score); math.Abs(got-tt.want) > 0.0001 {
			t.Errorf("ConfidenceMultiplier(%v) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

func TestKellyStakeScalesWithBankroll(t *testing.T) {
	k := newTestKelly()

	small := k.Stake(100, 1.80, 0.62)
	large := k.Stake(10000, 1.80, 0.62)

	if math.Abs(large-small*100) > 0.5 {
		t.Errorf("stake should scale linearly with bankroll: small=%v large=%v", small, large)
	}
}

func TestKellyPercent(t *testing.T) {
	k := newTestKelly()

	got := k.KellyPercent(1.80, 0.62)
	want := (0.8*0.62 - 0.38) / 0.8
	if math.Abs(got-want) > 0.0001 {
		t.Errorf("KellyPercent(1.80, 0.62) = %v, want %v", got, want)
	}

	if got := k.KellyPercent(1.60, 0.50); got >= 0 {
		t.Errorf("KellyPercent with no edge = %v, want negative", got)
	}

	if got := k.KellyPercent(1.00, 0.62); got != 0 {
		t.Errorf("KellyPercent with invalid odds = %v, want 0", got)
	}
}
