package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/providers"
	redisclient "github.com/medassist/offline-triage/internal/infrastructure/clients/redis"
	"github.com/medassist/offline-triage/internal/infrastructure/observability"
)

// RedisLifecycleNotifier implements LifecycleNotifier using Redis Pub/Sub.
// One Redis subscription fans out to every local subscriber.
type RedisLifecycleNotifier struct {
	client      *redisclient.Client
	channel     string
	pubsub      *redis.PubSub
	subscribers map[chan *entities.LifecycleEvent]struct{}
	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
}

// NewRedisLifecycleNotifier creates a notifier on the lifecycle channel of prefix
func NewRedisLifecycleNotifier(client *redisclient.Client, prefix string) providers.LifecycleNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	return &RedisLifecycleNotifier{
		client:      client,
		channel:     providers.LifecycleChannel(prefix),
		subscribers: make(map[chan *entities.LifecycleEvent]struct{}),
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Publish announces an event to every subscribed edge instance
func (n *RedisLifecycleNotifier) Publish(ctx context.Context, event *entities.LifecycleEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal lifecycle event: %w", err)
	}

	if err := n.client.Client().Publish(ctx, n.channel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish lifecycle event: %w", err)
	}

	observability.LoggerFromContext(ctx).Debug().
		Str("channel", n.channel).
		Str("event_type", string(event.Type)).
		Str("version", event.Version).
		Msg("Published cache lifecycle event")
	return nil
}

// Subscribe returns a channel of events that closes when ctx is done
func (n *RedisLifecycleNotifier) Subscribe(ctx context.Context) (<-chan *entities.LifecycleEvent, error) {
	n.mu.Lock()
	if n.ctx.Err() != nil {
		n.mu.Unlock()
		return nil, fmt.Errorf("lifecycle notifier closed")
	}

	if n.pubsub == nil {
		pubsub := n.client.Client().Subscribe(n.ctx, n.channel)
		// Wait for the subscription to be confirmed so no event published
		// after Subscribe returns is missed.
		if _, err := pubsub.Receive(ctx); err != nil {
			n.mu.Unlock()
			_ = pubsub.Close()
			return nil, fmt.Errorf("failed to subscribe to %s: %w", n.channel, err)
		}
		n.pubsub = pubsub
		go n.receiveMessages(pubsub)
	}

	events := make(chan *entities.LifecycleEvent, 16)
	n.subscribers[events] = struct{}{}
	n.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-n.ctx.Done():
		}
		n.removeSubscriber(events)
	}()

	return events, nil
}

func (n *RedisLifecycleNotifier) receiveMessages(pubsub *redis.PubSub) {
	logger := observability.GetLogger()
	ch := pubsub.Channel()
	for {
		select {
		case <-n.ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}

			var event entities.LifecycleEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				logger.Warn().Err(err).Str("channel", n.channel).Msg("Dropping malformed lifecycle event")
				continue
			}

			n.mu.RLock()
			for subscriber := range n.subscribers {
				select {
				case subscriber <- &event:
				default:
					logger.Warn().Str("version", event.Version).Msg("Lifecycle subscriber full, skipping event")
				}
			}
			n.mu.RUnlock()
		}
	}
}

func (n *RedisLifecycleNotifier) removeSubscriber(events chan *entities.LifecycleEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.subscribers[events]; !ok {
		return
	}
	delete(n.subscribers, events)
	close(events)

	if len(n.subscribers) == 0 && n.pubsub != nil {
		_ = n.pubsub.Close()
		n.pubsub = nil
	}
}

// Close closes the notifier and all subscriptions
func (n *RedisLifecycleNotifier) Close() error {
	n.cancel()

	n.mu.Lock()
	defer n.mu.Unlock()

	for subscriber := range n.subscribers {
		close(subscriber)
		delete(n.subscribers, subscriber)
	}
	if n.pubsub != nil {
		err := n.pubsub.Close()
		n.pubsub = nil
		if err != nil {
			return fmt.Errorf("failed to close lifecycle subscription: %w", err)
		}
	}
	return nil
}
