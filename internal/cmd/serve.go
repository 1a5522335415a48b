package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/spf13/cobra"
	"github.com/valuehound/valuehound/internal/config"
	"github.com/valuehound/valuehound/internal/handlers"
)

// ServeCommand runs the full pipeline: scan loop, settlement loop and the
// HTTP surface, until interrupted.
func ServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scanner, settlement loop and HTTP API",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	fmt.Println("=== valuehound ===")

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.close()

	fmt.Printf("✓ Scanning %d sports every %v (settle every %v)\n",
		len(cfg.Feed.Sports), cfg.ScanInterval, cfg.SettleInterval)

	handler := handlers.NewHandler(app.db, app.movement, app.store, app.monitor, cfg.Movement.SteamThresholdPct)

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", handler.HealthCheck)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/stats", handler.GetStatus)
		r.Get("/alerts/pending", handler.GetPendingAlerts)
		r.Get("/users/{userID}/stats", handler.GetUserStats)
		r.Get("/movement/{eventID}", handler.GetMovement)
		r.Get("/movement/{eventID}/summary", handler.GetMovementSummary)
	})

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go app.monitor.Run(ctx)
	go app.monitor.RunSettlement(ctx)

	errChan := make(chan error, 1)
	go func() {
		fmt.Printf("✓ HTTP API listening on %s\n", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		fmt.Printf("\nReceived %v, shutting down...\n", sig)
	case err := <-errChan:
		return fmt.Errorf("http server: %w", err)
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}

	fmt.Println("✓ Shutdown complete")
	return nil
}
