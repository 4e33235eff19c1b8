package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"carepath/internal/recommendation/events"
)

// Subscriber bridges Redis pub/sub onto the worker's inbox channel. Malformed
// messages are logged and dropped; the channel offers no redelivery anyway.
type Subscriber struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewSubscriber constructs a subscriber on the given channel. An empty
// channel name falls back to events.DefaultChannel.
func NewSubscriber(client *redis.Client, channel string, logger *slog.Logger) *Subscriber {
	if channel == "" {
		channel = events.DefaultChannel
	}
	return &Subscriber{client: client, channel: channel, logger: logger}
}

// Run subscribes and forwards decoded events to inbox until the context is
// cancelled. The inbox is closed on return so the worker drains and exits.
func (s *Subscriber) Run(ctx context.Context, inbox chan<- events.Event) error {
	pubsub := s.client.Subscribe(ctx, s.channel)
	defer pubsub.Close()
	defer close(inbox)

	// Force the subscription before announcing readiness.
	if _, err := pubsub.Receive(ctx); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "listening for recommendation events", "channel", s.channel)

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			var event events.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				s.logger.WarnContext(ctx, "dropping malformed event", "error", err)
				continue
			}
			select {
			case inbox <- event:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}
}
