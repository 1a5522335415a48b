package feed

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/valuehound/valuehound/internal/config"
	"github.com/valuehound/valuehound/pkg/models"
)

// Client talks to the odds-aggregation API (The Odds API v4 shape): event
// odds across bookmakers, and completed-game scores for settlement.
type Client struct {
	http    *resty.Client
	apiKey  string
	sports  []string
	markets string
}

// NewClient creates a feed client with a bounded per-request timeout
func NewClient(cfg config.FeedConfig) *Client {
	http := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(2 * time.Second)

	return &Client{
		http:    http,
		apiKey:  cfg.APIKey,
		sports:  cfg.Sports,
		markets: "h2h,spreads,totals",
	}
}

// FetchOdds fetches current odds for one sport
func (c *Client) FetchOdds(ctx context.Context, sportKey string) ([]models.Event, error) {
	var events []models.Event

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apiKey":     c.apiKey,
			"regions":    "us,eu",
			"markets":    c.markets,
			"oddsFormat": "decimal",
		}).
		SetResult(&events).
		Get(fmt.Sprintf("/sports/%s/odds", sportKey))
	if err != nil {
		return nil, fmt.Errorf("fetch odds for %s: %w", sportKey, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch odds for %s: API returned %d", sportKey, resp.StatusCode())
	}

	// The feed omits sport_key on some payloads; stamp it so downstream
	// threshold lookup always has it
	for i := range events {
		if events[i].SportKey == "" {
			events[i].SportKey = sportKey
		}
	}

	return events, nil
}

// FetchAllOdds fetches odds for every configured sport. A failed source
// degrades to "no events from that source this cycle"; the outcomes slice
// records per-source success and failure for the cycle log.
func (c *Client) FetchAllOdds(ctx context.Context) ([]models.Event, []models.FetchOutcome) {
	var all []models.Event
	outcomes := make([]models.FetchOutcome, 0, len(c.sports))

	for _, sport := range c.sports {
		start := time.Now()
		events, err := c.FetchOdds(ctx, sport)
		outcome := models.FetchOutcome{
			Source:  sport,
			Events:  len(events),
			Elapsed: time.Since(start),
			Err:     err,
		}
		outcomes = append(outcomes, outcome)

		if err != nil {
			log.Printf("[feed] %s fetch failed: %v", sport, err)
			continue
		}
		all = append(all, events...)
	}

	return all, outcomes
}

// Scores fetches completed-game scores for a sport going back daysFrom days
func (c *Client) Scores(ctx context.Context, sportKey string, daysFrom int) ([]models.EventScore, error) {
	var scores []models.EventScore

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apiKey":   c.apiKey,
			"daysFrom": fmt.Sprintf("%d", daysFrom),
		}).
		SetResult(&scores).
		Get(fmt.Sprintf("/sports/%s/scores", sportKey))
	if err != nil {
		return nil, fmt.Errorf("fetch scores for %s: %w", sportKey, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch scores for %s: API returned %d", sportKey, resp.StatusCode())
	}

	return scores, nil
}
