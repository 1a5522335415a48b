package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/valuehound/valuehound/internal/config"
	"github.com/valuehound/valuehound/internal/dedup"
	"github.com/valuehound/valuehound/internal/estimator"
	"github.com/valuehound/valuehound/internal/feed"
	"github.com/valuehound/valuehound/internal/monitor"
	"github.com/valuehound/valuehound/internal/movement"
	"github.com/valuehound/valuehound/internal/publisher"
	"github.com/valuehound/valuehound/internal/quota"
	"github.com/valuehound/valuehound/internal/scanner"
	"github.com/valuehound/valuehound/internal/selector"
	"github.com/valuehound/valuehound/internal/stake"
	"github.com/valuehound/valuehound/internal/storage"
	"github.com/valuehound/valuehound/internal/tracker"
)

// app holds the wired component graph shared by the serve, scan and
// verify commands
type app struct {
	cfg      *config.Config
	db       *storage.Postgres
	redis    *redis.Client
	feed     *feed.Client
	store    *movement.Store
	movement *movement.Tracker
	scanner  *scanner.Enhanced
	selector *selector.Selector
	alerts   *tracker.Tracker
	settler  *tracker.Settler
	monitor  *monitor.Monitor
}

// buildApp connects external services and wires the pipeline
func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := storage.Connect(cfg.Database.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	fmt.Println("✓ Connected to Postgres")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	redisClient := redis.NewClient(redisOpts)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	fmt.Println("✓ Connected to Redis")

	feedClient := feed.NewClient(cfg.Feed)

	store := movement.NewStore(cfg.Movement.RetentionHours)
	movementTracker := movement.NewTracker(store, db)

	probEstimator := estimator.NewChain(estimator.NewMarketImplied())
	baseScanner := scanner.New(cfg.Scanner, probEstimator)
	enhanced := scanner.NewEnhanced(baseScanner, movementTracker, cfg.Movement.SteamThresholdPct, cfg.Scanner.LineAdjustEnabled)

	sel := selector.New(enhanced, cfg.Selector).
		WithImminentWindow(time.Duration(cfg.Movement.ImminentWindowHours * float64(time.Hour)))
	alertTracker := tracker.New(db)
	settler := tracker.NewSettler(db, feedClient)

	mon := monitor.New(
		feedClient,
		movementTracker,
		store,
		sel,
		db,
		quota.New(redisClient),
		dedup.New(redisClient, cfg.DedupTTL),
		stake.NewKelly(cfg.Stake),
		alertTracker,
		settler,
		publisher.New(redisClient),
		cfg.ScanInterval,
		cfg.SettleInterval,
	)

	return &app{
		cfg:      cfg,
		db:       db,
		redis:    redisClient,
		feed:     feedClient,
		store:    store,
		movement: movementTracker,
		scanner:  enhanced,
		selector: sel,
		alerts:   alertTracker,
		settler:  settler,
		monitor:  mon,
	}, nil
}

func (a *app) close() {
	a.redis.Close()
	a.db.Close()
}
