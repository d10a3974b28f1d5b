package storage

import (
	"context"

	"github.com/poiesic/docuchat/core"
)

// ChunkRepository provides resource-scoped storage and similarity search for
// embedded chunks. Implementations must be thread-safe, must keep chunks of
// different resources isolated from each other, and must not expose a
// resource's chunks to readers while a store for that resource is in flight.
type ChunkRepository interface {
	// PutChunks upserts chunks by their content-derived IDs.
	// Re-storing an identical chunk overwrites it in place, which makes
	// ingestion idempotent under at-least-once delivery.
	// Returns the IDs of all stored chunks.
	PutChunks(ctx context.Context, chunks ...*core.Chunk) ([]core.ID, error)

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error)

	// CountByResource returns the number of chunks stored for a resource.
	CountByResource(ctx context.Context, resourceID string) (int, error)

	// DeleteByResource removes all chunks belonging to a resource.
	DeleteByResource(ctx context.Context, resourceID string) error

	// IterateChunks calls fn for every stored chunk, across all
	// resources. Iteration stops at the first error fn returns.
	IterateChunks(ctx context.Context, fn func(*core.Chunk) error) error

	// FindSimilar finds the chunks of one resource most similar to the
	// given vector, ordered by similarity score (highest first), up to
	// limit results. Chunks of other resources are never returned.
	FindSimilar(ctx context.Context, resourceID string, vector []float32, limit int) ([]*core.ScoredChunk, error)

	// Close closes the repository and releases resources.
	Close() error
}

// CheckpointStore persists conversation history keyed by thread ID.
//
// Append is atomic with respect to Load for the same thread: a
// read-modify-append-write cycle never loses concurrently committed
// messages. Implementations may rely on transaction conflict detection or
// on internal locking to provide this.
type CheckpointStore interface {
	// Load returns the ordered message sequence for a thread.
	// An unknown thread yields an empty sequence, not an error.
	Load(ctx context.Context, threadID string) ([]core.Message, error)

	// Append atomically appends messages to a thread's history and
	// returns the updated sequence.
	Append(ctx context.Context, threadID string, msgs ...core.Message) ([]core.Message, error)

	// Delete removes a thread's history.
	Delete(ctx context.Context, threadID string) error

	// Durable reports whether checkpoints survive a process restart.
	Durable() bool

	// Close closes the store and releases resources.
	Close() error
}

// ThreadRepository manages durable conversation thread identities.
// Exactly one thread is active per (user, resource) pair at any time.
type ThreadRepository interface {
	// GetOrCreate returns the active thread for (userID, resourceID),
	// creating one with a fresh thread ID if none is active.
	GetOrCreate(ctx context.Context, userID, resourceID string) (*core.Thread, error)

	// Get retrieves a thread by its thread ID.
	// Returns ErrNotFound if the thread doesn't exist.
	Get(ctx context.Context, threadID string) (*core.Thread, error)

	// Touch records message activity on a thread, bumping its message
	// count by delta and updating its last-message timestamp.
	Touch(ctx context.Context, threadID string, delta int) error

	// Deactivate marks a thread inactive. Deactivation is terminal; a new
	// thread must be created to continue the conversation.
	Deactivate(ctx context.Context, threadID string) error

	// ListByUser returns all threads belonging to a user, most recently
	// active first.
	ListByUser(ctx context.Context, userID string) ([]*core.Thread, error)

	// Close closes the repository and releases resources.
	Close() error
}
