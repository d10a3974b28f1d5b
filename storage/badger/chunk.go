package badger

import (
	"context"
	"encoding/binary"
	"log/slog"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (storage.ChunkRepository, error) {
	return &ChunkRepository{
		backend: backend,
		logger:  slog.Default().With("component", "chunk-repository"),
	}, nil
}

// Close releases repository resources.
func (r *ChunkRepository) Close() error {
	return nil
}

// PutChunks upserts chunks by their content-derived IDs.
// All chunks are written in one transaction, so a store for a resource is
// never partially visible to concurrent readers of that resource.
func (r *ChunkRepository) PutChunks(ctx context.Context, chunks ...*core.Chunk) ([]core.ID, error) {
	ids := make([]core.ID, len(chunks))

	err := r.backend.WithTxRetry(func(tx *badger.Txn) error {
		for i, chunk := range chunks {
			if err := core.ValidateChunk(chunk); err != nil {
				return err
			}

			if chunk.Id == 0 {
				chunk.Id = core.IDFromContent(chunk.ContentKey())
			}
			if chunk.CreatedAt.IsZero() {
				chunk.CreatedAt = time.Now().UTC()
			}
			ids[i] = chunk.Id

			value, err := storage.MarshalChunk(chunk)
			if err != nil {
				return err
			}
			if err := tx.Set(makeChunkKey(chunk.Id), value); err != nil {
				return err
			}

			// Resource index entry; the value is empty, the key carries
			// both resource and chunk ID.
			if err := tx.Set(makeChunkResourceKey(chunk.ResourceID, chunk.Id), nil); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}

	return ids, nil
}

// GetChunk retrieves a single chunk by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.Chunk, error) {
	var chunk *core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeChunkKey(id))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			var unmarshalErr error
			chunk, unmarshalErr = storage.UnmarshalChunk(val)
			return unmarshalErr
		})
	}, false)
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// CountByResource returns the number of chunks stored for a resource.
func (r *ChunkRepository) CountByResource(ctx context.Context, resourceID string) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkResourceScan(resourceID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// IterateChunks calls fn for every stored chunk, across all resources.
// Iteration stops at the first error fn returns.
func (r *ChunkRepository) IterateChunks(ctx context.Context, fn func(*core.Chunk) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkScan()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var chunk *core.Chunk
			if err := iter.Item().Value(func(val []byte) error {
				var unmarshalErr error
				chunk, unmarshalErr = storage.UnmarshalChunk(val)
				return unmarshalErr
			}); err != nil {
				return err
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// DeleteByResource removes all chunks belonging to a resource.
func (r *ChunkRepository) DeleteByResource(ctx context.Context, resourceID string) error {
	ids, err := r.resourceChunkIDs(resourceID)
	if err != nil {
		return err
	}

	return r.backend.WithTxRetry(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkResourceKey(resourceID, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	})
}

// FindSimilar finds the chunks of one resource most similar to the given
// vector, ordered by similarity score descending, up to limit results.
// Scores are dot products, which equal cosine similarity for normalized
// embedding vectors.
func (r *ChunkRepository) FindSimilar(ctx context.Context, resourceID string, vector []float32, limit int) ([]*core.ScoredChunk, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.ScoredChunk

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkResourceScan(resourceID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		scanPrefix := makeChunkResourceScan(resourceID)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			id := chunkIDFromResourceKey(iter.Item().Key(), len(scanPrefix))

			item, err := tx.Get(makeChunkKey(id))
			if err != nil {
				if err == badger.ErrKeyNotFound {
					continue
				}
				return err
			}

			var chunk *core.Chunk
			if err := item.Value(func(val []byte) error {
				var unmarshalErr error
				chunk, unmarshalErr = storage.UnmarshalChunk(val)
				return unmarshalErr
			}); err != nil {
				return err
			}

			// Skip chunks without embeddings
			if len(chunk.Vector) == 0 {
				continue
			}

			results = append(results, &core.ScoredChunk{
				Chunk: chunk,
				Score: dotProduct(vector, chunk.Vector),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.ScoredChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// resourceChunkIDs collects the chunk IDs of a resource from its index.
func (r *ChunkRepository) resourceChunkIDs(resourceID string) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkResourceScan(resourceID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		scanPrefix := makeChunkResourceScan(resourceID)
		for iter.Rewind(); iter.Valid(); iter.Next() {
			ids = append(ids, chunkIDFromResourceKey(iter.Item().Key(), len(scanPrefix)))
		}
		return nil
	}, false)
	return ids, err
}

// chunkIDFromResourceKey extracts the BigEndian chunk ID suffix of a
// resource index key.
func chunkIDFromResourceKey(key []byte, prefixLen int) core.ID {
	return core.ID(binary.BigEndian.Uint64(key[prefixLen:]))
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
