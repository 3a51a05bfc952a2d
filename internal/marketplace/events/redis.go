package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultPrefix is used when no key prefix is configured
const DefaultPrefix = "harvest:"

// Channel returns the Pub/Sub channel carrying request events under prefix,
// so deployments sharing one Redis stay apart.
func Channel(prefix string) string {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return prefix + "events:requests"
}

// RedisBus publishes and subscribes over Redis Pub/Sub
type RedisBus struct {
	client  *redis.Client
	channel string
	log     zerolog.Logger
}

func NewRedisBus(client *redis.Client, prefix string, log zerolog.Logger) *RedisBus {
	return &RedisBus{client: client, channel: Channel(prefix), log: log}
}

func (b *RedisBus) Publish(ctx context.Context, e RequestEvent) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}

func (b *RedisBus) Subscribe(ctx context.Context) (<-chan RequestEvent, error) {
	ps := b.client.Subscribe(ctx, b.channel)
	// wait for the subscription to be confirmed so no event published after
	// Subscribe returns is missed
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	out := make(chan RequestEvent)
	go func() {
		defer close(out)
		defer ps.Close()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e RequestEvent
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					b.log.Warn().Err(err).Msg("dropping malformed request event")
					continue
				}
				select {
				case out <- e:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
