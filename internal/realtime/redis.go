package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// redisChannelPrefix namespaces our pub/sub traffic on a shared redis.
const redisChannelPrefix = "staffd:events:"

// RedisBroker fans events out across server instances via redis pub/sub.
// Emit publishes to redis only; the subscriber loop forwards incoming
// messages into the local hub, so locally emitted events take the same
// path as remote ones.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
}

// NewRedisBroker creates a broker on top of the given redis client and
// local hub.
func NewRedisBroker(client *redis.Client, hub *Hub) *RedisBroker {
	return &RedisBroker{
		client: client,
		hub:    hub,
	}
}

// Emit publishes the event to redis. Delivery to local connections
// happens when the message comes back through the subscriber loop.
func (b *RedisBroker) Emit(ctx context.Context, channel string, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, redisChannelPrefix+channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}

// Start runs the subscriber loop until the context is cancelled. It
// pattern-subscribes to the full event namespace and forwards every
// message into the local hub.
func (b *RedisBroker) Start(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, redisChannelPrefix+"*")
	defer pubsub.Close() //nolint:errcheck

	log.Info().Msg("Redis event subscriber started")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-ch:
			if !ok {
				return fmt.Errorf("redis subscription closed")
			}

			channel := strings.TrimPrefix(msg.Channel, redisChannelPrefix)

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("Dropping malformed event payload")
				continue
			}

			if err := b.hub.Emit(ctx, channel, event); err != nil {
				log.Warn().Err(err).Str("channel", channel).Msg("Local event delivery failed")
			}
		}
	}
}
