package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/valuehound/valuehound/internal/cmd"
)

var rootCmd = &cobra.Command{
	Use:   "valuehound",
	Short: "Value bet scanner with line movement analytics",
	Long: `valuehound scans bookmaker odds for value bets, tracks line movement,
selects the best pick per cycle and settles alerts against final scores.`,
}

func init() {
	rootCmd.AddCommand(cmd.ServeCommand())
	rootCmd.AddCommand(cmd.ScanCommand())
	rootCmd.AddCommand(cmd.VerifyCommand())
}

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
