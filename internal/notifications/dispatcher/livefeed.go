package dispatcher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/collabhub-dev/collab-backend/internal/notifications/domain"
)

const userChannelPrefix = "notify:user:" // notify:user:{user_id}

// UserChannel is the per-recipient live channel name. The SSE handler
// subscribes to it; the dispatcher publishes after the durable write,
// so a replayed publish only ever duplicates what the store already
// holds.
func UserChannel(userID string) string {
	return userChannelPrefix + userID
}

// RedisFeed implements LiveFeed on redis pub/sub.
type RedisFeed struct {
	client *redis.Client
}

func NewRedisFeed(client *redis.Client) *RedisFeed {
	return &RedisFeed{client: client}
}

func (f *RedisFeed) Push(ctx context.Context, userID string, n *domain.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := f.client.Publish(ctx, UserChannel(userID), payload).Err(); err != nil {
		return fmt.Errorf("publish notification: %w", err)
	}
	return nil
}
