package providers

import (
	"context"

	"github.com/medassist/offline-triage/internal/domain/entities"
)

// Fetcher performs a network round trip. Any response that arrives, whatever
// its status, is returned without error; an error means the network failed.
type Fetcher interface {
	Fetch(ctx context.Context, req *entities.FetchRequest) (*entities.FetchResponse, error)
}
