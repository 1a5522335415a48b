package monitor

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/valuehound/valuehound/internal/dedup"
	"github.com/valuehound/valuehound/internal/feed"
	"github.com/valuehound/valuehound/internal/movement"
	"github.com/valuehound/valuehound/internal/quota"
	"github.com/valuehound/valuehound/internal/selector"
	"github.com/valuehound/valuehound/internal/stake"
	"github.com/valuehound/valuehound/internal/tracker"
	"github.com/valuehound/valuehound/pkg/contracts"
	"github.com/valuehound/valuehound/pkg/models"
)

// CycleStatus is the last-cycle view exposed on the HTTP surface
type CycleStatus struct {
	CyclesRun     int64                 `json:"cycles_run"`
	AlertsSent    int64                 `json:"alerts_sent"`
	LastCycleAt   time.Time             `json:"last_cycle_at"`
	LastScanStats models.ScanStats      `json:"last_scan_stats"`
	LastFetches   []FetchSummary        `json:"last_fetches"`
	TrackedEvents int                   `json:"tracked_events"`
	LastPick      *models.Candidate     `json:"last_pick,omitempty"`
	LastSettle    *tracker.SettleStats  `json:"last_settle,omitempty"`
}

// FetchSummary is a JSON-friendly view of one source's fetch outcome
type FetchSummary struct {
	Source  string `json:"source"`
	Events  int    `json:"events"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Monitor drives the timer-driven pipeline: each scan tick fetches odds,
// records snapshots, scans and selects at most one pick, then fans it out
// to eligible users. A separate settlement tick verifies pending alerts.
// All steps within a tick run sequentially; each tick is independent.
type Monitor struct {
	feed      *feed.Client
	movement  *movement.Tracker
	store     *movement.Store
	selector  *selector.Selector
	users     contracts.UserProvider
	quota     *quota.DailyQuota
	dedup     *dedup.Deduplicator
	kelly     *stake.Kelly
	alerts    *tracker.Tracker
	settler   *tracker.Settler
	publisher contracts.AlertPublisher

	scanInterval   time.Duration
	settleInterval time.Duration

	mu     sync.Mutex
	status CycleStatus
}

// New wires the monitor
func New(
	feedClient *feed.Client,
	movementTracker *movement.Tracker,
	store *movement.Store,
	sel *selector.Selector,
	users contracts.UserProvider,
	dailyQuota *quota.DailyQuota,
	deduplicator *dedup.Deduplicator,
	kelly *stake.Kelly,
	alertTracker *tracker.Tracker,
	settler *tracker.Settler,
	pub contracts.AlertPublisher,
	scanInterval, settleInterval time.Duration,
) *Monitor {
	return &Monitor{
		feed:           feedClient,
		movement:       movementTracker,
		store:          store,
		selector:       sel,
		users:          users,
		quota:          dailyQuota,
		dedup:          deduplicator,
		kelly:          kelly,
		alerts:         alertTracker,
		settler:        settler,
		publisher:      pub,
		scanInterval:   scanInterval,
		settleInterval: settleInterval,
	}
}

// Run starts the scan loop, blocking until the context is cancelled
func (m *Monitor) Run(ctx context.Context) {
	log.Printf("[monitor] scan loop starting, interval %v", m.scanInterval)

	ticker := time.NewTicker(m.scanInterval)
	defer ticker.Stop()

	m.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[monitor] scan loop stopping")
			return
		case <-ticker.C:
			m.runCycle(ctx)
		}
	}
}

// RunSettlement starts the settlement loop, blocking until cancelled
func (m *Monitor) RunSettlement(ctx context.Context) {
	log.Printf("[monitor] settlement loop starting, interval %v", m.settleInterval)

	ticker := time.NewTicker(m.settleInterval)
	defer ticker.Stop()

	m.runSettlement(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Printf("[monitor] settlement loop stopping")
			return
		case <-ticker.C:
			m.runSettlement(ctx)
		}
	}
}

// runCycle performs one full scan tick. A failed fetch degrades to "no
// new snapshots this cycle"; nothing here crashes the loop.
func (m *Monitor) runCycle(ctx context.Context) {
	start := time.Now()

	events, outcomes := m.feed.FetchAllOdds(ctx)
	for _, o := range outcomes {
		if o.Success() {
			log.Printf("[monitor] fetched %s: %d events in %v", o.Source, o.Events, o.Elapsed.Round(time.Millisecond))
		}
	}

	if len(events) > 0 {
		m.movement.RecordSnapshots(ctx, events)
	}

	best, _, stats := m.selector.SelectBest(ctx, events)

	sent := 0
	if best != nil {
		if err := m.selector.Revalidate(*best); err != nil {
			log.Printf("[monitor] pick went stale before dispatch, skipping: %v", err)
			best = nil
		} else {
			sent = m.fanOut(ctx, *best)
		}
	}

	m.mu.Lock()
	m.status.CyclesRun++
	m.status.AlertsSent += int64(sent)
	m.status.LastCycleAt = start.UTC()
	m.status.LastScanStats = stats
	m.status.LastFetches = summarizeFetches(outcomes)
	m.status.TrackedEvents = m.store.EventCount()
	m.status.LastPick = best
	m.mu.Unlock()

	log.Printf("[monitor] cycle done in %v: %d events, %d candidates, %d alerts sent",
		time.Since(start).Round(time.Millisecond), len(events), stats.Emitted, sent)
}

// fanOut sends the selected pick to every eligible user, each gated by
// their own daily quota and duplicate-send protection. Returns the number
// of alerts dispatched.
func (m *Monitor) fanOut(ctx context.Context, pick models.Candidate) int {
	users, err := m.users.ActiveUsers(ctx)
	if err != nil {
		log.Printf("[monitor] cannot list users: %v", err)
		return 0
	}

	sent := 0
	for _, user := range users {
		ok, err := m.dedup.ShouldSend(ctx, user.ID, pick)
		if err != nil {
			log.Printf("[monitor] dedup check failed for user %s: %v", user.ID, err)
			continue
		}
		if !ok {
			continue
		}

		allowed, err := m.quota.Allow(ctx, user.ID, user.DailyQuota)
		if err != nil {
			log.Printf("[monitor] quota check failed for user %s: %v", user.ID, err)
			continue
		}
		if !allowed {
			continue
		}

		amount := m.kelly.StakeWithConfidence(user.Bankroll, pick.Odds, pick.Probability, pick.ConfidenceScore)
		if amount <= 0 {
			continue
		}

		alert, err := m.alerts.RecordAlert(ctx, pick, user, amount)
		if err != nil {
			log.Printf("[monitor] failed to record alert for user %s: %v", user.ID, err)
			continue
		}

		if err := m.publisher.Publish(ctx, alert); err != nil {
			log.Printf("[monitor] failed to publish alert %s: %v", alert.ID, err)
			continue
		}

		sent++
	}

	if sent > 0 {
		log.Printf("[monitor] dispatched %s @ %.2f (value %.3f, confidence %.0f) to %d users",
			pick.Selection, pick.Odds, pick.Value, pick.ConfidenceScore, sent)
	}
	return sent
}

func (m *Monitor) runSettlement(ctx context.Context) {
	stats, err := m.settler.VerifyPending(ctx)
	if err != nil {
		log.Printf("[monitor] settlement pass failed: %v", err)
		return
	}

	m.mu.Lock()
	m.status.LastSettle = &stats
	m.mu.Unlock()
}

// Status returns a copy of the last-cycle view
func (m *Monitor) Status() CycleStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func summarizeFetches(outcomes []models.FetchOutcome) []FetchSummary {
	out := make([]FetchSummary, 0, len(outcomes))
	for _, o := range outcomes {
		s := FetchSummary{Source: o.Source, Events: o.Events, Success: o.Success()}
		if o.Err != nil {
			s.Error = o.Err.Error()
		}
		out = append(out, s)
	}
	return out
}
