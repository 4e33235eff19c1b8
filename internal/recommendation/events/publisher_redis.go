package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher broadcasts events over Redis pub/sub. Delivery matches the
// channel contract exactly: subscribers connected at publish time receive the
// message once, everyone else never sees it.
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher constructs a publisher on the given channel. An empty
// channel name falls back to DefaultChannel.
func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{client: client, channel: channel}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %q: %w", p.channel, err)
	}
	return nil
}
