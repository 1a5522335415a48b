package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/valuehound/valuehound/internal/config"
)

// VerifyCommand runs a single settlement pass over pending alerts
func VerifyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Run one settlement pass over pending alerts",
		RunE:  runVerify,
	}
}

func runVerify(cmd *cobra.Command, args []string) error {
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

	stats, err := app.settler.VerifyPending(ctx)
	if err != nil {
		return fmt.Errorf("verification pass: %w", err)
	}

	fmt.Printf("✓ Checked %d alerts: settled=%d (won=%d lost=%d push=%d) deferred=%d profit=%+.2f\n",
		stats.Checked, stats.Settled, stats.Won, stats.Lost, stats.Push, stats.Deferred, stats.TotalProfit)
	return nil
}
