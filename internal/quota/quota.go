package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DailyQuota caps alerts per user per day using a Redis counter that
// expires at the next day boundary. Each user is gated independently.
type DailyQuota struct {
	client *redis.Client
	now    func() time.Time
}

// New creates a daily quota gate
func New(client *redis.Client) *DailyQuota {
	return &DailyQuota{client: client, now: time.Now}
}

// WithClock replaces the quota's clock. For tests.
func (q *DailyQuota) WithClock(now func() time.Time) *DailyQuota {
	q.now = now
	return q
}

// Allow consumes one slot of the user's daily quota. Returns false when
// the user has already received their limit today. The counter is rolled
// back when the limit is exceeded so a denied attempt costs nothing.
func (q *DailyQuota) Allow(ctx context.Context, userID string, limit int) (bool, error) {
	if limit <= 0 {
		return false, nil
	}

	key := q.key(userID)

	count, err := q.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("quota incr: %w", err)
	}

	// First increment of the day sets the expiry at the day boundary
	if count == 1 {
		if err := q.client.ExpireAt(ctx, key, q.nextReset()).Err(); err != nil {
			return false, fmt.Errorf("quota expire: %w", err)
		}
	}

	if count > int64(limit) {
		q.client.Decr(ctx, key)
		return false, nil
	}

	return true, nil
}

// Used returns how many alerts the user has received today
func (q *DailyQuota) Used(ctx context.Context, userID string) (int, error) {
	count, err := q.client.Get(ctx, q.key(userID)).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("quota get: %w", err)
	}
	return count, nil
}

func (q *DailyQuota) key(userID string) string {
	return fmt.Sprintf("alert:quota:%s:%s", userID, q.now().UTC().Format("2006-01-02"))
}

func (q *DailyQuota) nextReset() time.Time {
	now := q.now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
