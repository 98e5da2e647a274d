package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/roomify-app/roomify/internal/logging"
)

const channelPrefix = "roomify:session:v1:"

// RedisBroker publishes events on a per-user redis pub/sub channel.
type RedisBroker struct {
	client *redis.Client
	logger logging.Logger
}

// NewRedisBroker connects to redisURL and verifies the connection.
func NewRedisBroker(ctx context.Context, redisURL string, logger logging.Logger) (*RedisBroker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisBroker{client: client, logger: logger.With("module", "events")}, nil
}

func channelFor(userID string) string { return channelPrefix + userID }

func (b *RedisBroker) Publish(ctx context.Context, e Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	return b.client.Publish(ctx, channelFor(e.UserID), payload).Err()
}

func (b *RedisBroker) Subscribe(ctx context.Context, userID string) (<-chan Event, func(), error) {
	channel := channelFor(userID)
	pubsub := b.client.Subscribe(ctx, channel)

	// Wait for subscription confirmation
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	ctx, stop := context.WithCancel(ctx)
	out := make(chan Event, subscriberBuffer)
	msgs := pubsub.Channel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var e Event
				if err := json.Unmarshal([]byte(msg.Payload), &e); err != nil {
					b.logger.Warn(ctx, "dropping malformed session event", "channel", channel, "error", err)
					continue
				}
				select {
				case out <- e:
				default:
				}
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			stop()
			_ = pubsub.Close()
			wg.Wait()
		})
	}

	return out, cancel, nil
}

func (b *RedisBroker) Close() error {
	return b.client.Close()
}
