package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/medassist/offline-triage/internal/domain/entities"
	"github.com/medassist/offline-triage/internal/domain/providers"
)

// LocalLifecycleNotifier fans lifecycle events out inside one process. It
// backs the in-memory cache store, which no other instance can see anyway.
type LocalLifecycleNotifier struct {
	mu          sync.RWMutex
	subscribers map[chan *entities.LifecycleEvent]struct{}
	closed      bool
}

// NewLocalLifecycleNotifier creates an in-process notifier
func NewLocalLifecycleNotifier() providers.LifecycleNotifier {
	return &LocalLifecycleNotifier{
		subscribers: make(map[chan *entities.LifecycleEvent]struct{}),
	}
}

// Publish delivers the event to current subscribers without blocking
func (n *LocalLifecycleNotifier) Publish(ctx context.Context, event *entities.LifecycleEvent) error {
	n.mu.RLock()
	defer n.mu.RUnlock()

	for subscriber := range n.subscribers {
		select {
		case subscriber <- event:
		default:
		}
	}
	return nil
}

// Subscribe returns a channel that closes when ctx is done
func (n *LocalLifecycleNotifier) Subscribe(ctx context.Context) (<-chan *entities.LifecycleEvent, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, fmt.Errorf("lifecycle notifier closed")
	}

	events := make(chan *entities.LifecycleEvent, 16)
	n.subscribers[events] = struct{}{}

	go func() {
		<-ctx.Done()
		n.mu.Lock()
		defer n.mu.Unlock()
		if _, ok := n.subscribers[events]; ok {
			delete(n.subscribers, events)
			close(events)
		}
	}()

	return events, nil
}

// Close closes every subscription
func (n *LocalLifecycleNotifier) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	for subscriber := range n.subscribers {
		delete(n.subscribers, subscriber)
		close(subscriber)
	}
	return nil
}
