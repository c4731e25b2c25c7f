package providers

import (
	"context"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// CacheStore holds named namespaces of stored responses.
type CacheStore interface {
	// Namespaces lists every namespace that currently exists.
	Namespaces(ctx context.Context) ([]string, error)

	// Put stores resp under key, creating the namespace if needed. Last write wins.
	Put(ctx context.Context, namespace, key string, resp *entities.CachedResponse) error

	// Match returns the stored entry, or nil without error on a miss.
	Match(ctx context.Context, namespace, key string) (*entities.CachedResponse, error)

	// Keys lists the keys stored in a namespace.
	Keys(ctx context.Context, namespace string) ([]string, error)

	// DeleteNamespace removes a namespace and reports whether it existed.
	// Deleting an absent namespace is not an error.
	DeleteNamespace(ctx context.Context, namespace string) (bool, error)
}
