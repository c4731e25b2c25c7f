package providers

import (
	"context"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// LifecycleNotifier broadcasts cache lifecycle transitions to every edge
// instance sharing a cache store.
type LifecycleNotifier interface {
	// Publish announces an event to all subscribers
	Publish(ctx context.Context, event *entities.LifecycleEvent) error

	// Subscribe delivers events until ctx is done
	Subscribe(ctx context.Context) (<-chan *entities.LifecycleEvent, error)

	// Close releases all subscriptions
	Close() error
}

// LifecycleChannel returns the channel name for a cache prefix
func LifecycleChannel(prefix string) string {
	return prefix + ":cache:lifecycle"
}
