package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ascend/internal/metrics"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// RedisRelay forwards slot changes between instances sharing a Redis server.
// Local writes are published on the channel; changes from other instances
// are republished on the bus.
type RedisRelay struct {
	client  *redis.Client
	channel string
	origin  string
	bus     *Bus
	logger  zerolog.Logger
}

func NewRedisRelay(client *redis.Client, channel string, bus *Bus, logger *zerolog.Logger) *RedisRelay {
	l := zerolog.Nop()
	if logger != nil {
		l = logger.With().Str("component", "relay").Logger()
	}
	return &RedisRelay{
		client:  client,
		channel: channel,
		origin:  uuid.NewString(),
		bus:     bus,
		logger:  l,
	}
}

// Origin identifies this instance in published changes.
func (r *RedisRelay) Origin() string {
	return r.origin
}

// Notify publishes a change for key to other instances.
func (r *RedisRelay) Notify(ctx context.Context, key string) error {
	payload, err := json.Marshal(Change{Key: key, Origin: r.origin, At: time.Now()})
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}
	if err := r.client.Publish(ctx, r.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish change: %w", err)
	}
	return nil
}

// Run subscribes to the channel and republishes foreign changes until ctx
// is done. The subscription is confirmed before ready is closed.
func (r *RedisRelay) Run(ctx context.Context, ready chan<- struct{}) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		if ready != nil {
			close(ready)
		}
		return fmt.Errorf("subscribe %s: %w", r.channel, err)
	}
	if ready != nil {
		close(ready)
	}
	r.logger.Info().Str("channel", r.channel).Str("origin", r.origin).Msg("change relay subscribed")

	msgs := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return nil
			}
			var change Change
			if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
				r.logger.Warn().Err(err).Msg("discarding malformed change")
				continue
			}
			if change.Origin == r.origin {
				continue
			}
			metrics.IncChangeNotification("redis")
			r.bus.Publish(change)
		}
	}
}
