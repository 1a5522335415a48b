package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/valuehound/valuehound/pkg/models"
)

// StreamPublisher hands dispatched alerts to the external messaging layer
// via Redis Streams. The messaging layer owns rendering and delivery; the
// published record carries everything settlement will later rely on.
type StreamPublisher struct {
	client *redis.Client
}

// New creates a stream publisher
func New(client *redis.Client) *StreamPublisher {
	return &StreamPublisher{client: client}
}

// Publish writes the alert to the global and sport-specific streams
func (p *StreamPublisher) Publish(ctx context.Context, alert models.Alert) error {
	payload, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("marshal alert: %w", err)
	}

	for _, stream := range []string{"alerts.dispatched", fmt.Sprintf("alerts.dispatched.%s", alert.SportKey)} {
		_, err := p.client.XAdd(ctx, &redis.XAddArgs{
			Stream: stream,
			Values: map[string]interface{}{
				"alert": string(payload),
			},
		}).Result()
		if err != nil {
			return fmt.Errorf("publish to stream %s: %w", stream, err)
		}
	}

	return nil
}
