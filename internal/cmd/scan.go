package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valuehound/valuehound/internal/config"
)

// ScanCommand runs a single scan cycle and prints the candidates without
// dispatching any alerts. Useful for tuning thresholds against live odds.
func ScanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Run one scan cycle and print candidates (no alerts sent)",
		RunE:  runScan,
	}
}

func runScan(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx := context.Background()
	app, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.close()

	events, outcomes := app.feed.FetchAllOdds(ctx)
	for _, o := range outcomes {
		if o.Success() {
			fmt.Printf("✓ %s: %d events\n", o.Source, o.Events)
		} else {
			fmt.Printf("❌ %s: %v\n", o.Source, o.Err)
		}
	}

	app.movement.RecordSnapshots(ctx, events)

	best, result, stats := app.selector.SelectBest(ctx, events)

	fmt.Printf("\nChecked %d outcomes across %d events: %d candidates emitted\n",
		stats.TotalChecked, len(events), stats.Emitted)
	fmt.Printf("Discarded: window=%d odds=%d probability=%d value=%d missing=%d\n",
		stats.TimeRange, stats.OddsRange, stats.Probability, stats.BelowValue, stats.MissingFields)

	for _, c := range result.Primary {
		fmt.Printf("  [primary]  %-30s @ %.2f value=%.3f conf=%.0f (%s)\n",
			c.Selection, c.Odds, c.Value, c.ConfidenceScore, c.ConfidenceLevel)
	}
	for _, c := range result.Fallback {
		fmt.Printf("  [fallback] %-30s @ %.2f value=%.3f conf=%.0f (%s)\n",
			c.Selection, c.Odds, c.Value, c.ConfidenceScore, c.ConfidenceLevel)
	}

	if best == nil {
		fmt.Println("\nNo pick this cycle")
		return nil
	}

	fmt.Printf("\nBest pick: %s vs %s — %s @ %.2f (value %.3f, confidence %.0f)\n",
		best.HomeTeam, best.AwayTeam, best.Selection, best.Odds, best.Value, best.ConfidenceScore)
	return nil
}
