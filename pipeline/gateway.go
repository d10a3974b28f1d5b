package pipeline

import (
	"context"

	"github.com/poiesic/docuchat/core"
)

// StoreResult reports the outcome of persisting a job's chunks.
type StoreResult struct {
	// Success is false when any chunk failed to persist. Partial writes
	// must not be visible to readers of the resource.
	Success bool

	// StoredCount is the number of chunks persisted.
	StoredCount int

	// IDs are the storage identifiers of the persisted chunks.
	IDs []core.ID

	// Err carries the failure cause when Success is false.
	Err error
}

// Gateway embeds and persists chunks. Concurrent stores for different
// resources must not interfere; a store for one resource must be
// all-or-nothing from a reader's perspective. Stores are idempotent under
// at-least-once dispatch.
type Gateway interface {
	Store(ctx context.Context, resourceID string, chunks []*core.Chunk) *StoreResult
}
