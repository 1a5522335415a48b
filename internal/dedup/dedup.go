package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/valuehound/valuehound/pkg/models"
)

// Deduplicator prevents sending the same pick to the same user twice,
// keyed by (user_id, event_id, selection) with a TTL in Redis.
type Deduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a deduplicator
func New(client *redis.Client, ttl time.Duration) *Deduplicator {
	return &Deduplicator{client: client, ttl: ttl}
}

// ShouldSend returns true if this (user, event, selection) has not been
// alerted within the TTL, and marks it as sent.
func (d *Deduplicator) ShouldSend(ctx context.Context, userID string, candidate models.Candidate) (bool, error) {
	key := d.key(userID, candidate)

	// SETNX makes check-and-mark atomic across instances
	set, err := d.client.SetNX(ctx, key, "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return set, nil
}

// Clear removes a dedup entry (for testing)
func (d *Deduplicator) Clear(ctx context.Context, userID string, candidate models.Candidate) error {
	return d.client.Del(ctx, d.key(userID, candidate)).Err()
}

func (d *Deduplicator) key(userID string, candidate models.Candidate) string {
	return fmt.Sprintf("alert:dedup:%s:%s:%s", userID, candidate.EventID, candidate.Selection)
}
