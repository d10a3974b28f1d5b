// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package reembed

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/poiesic/docuchat/ai"
	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/queue"
	"github.com/poiesic/docuchat/storage"
	"github.com/poiesic/docuchat/vector"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of chunks to embed per API call
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of retry attempts for failed embedding calls
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      100,
		ReportInterval: 100,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Stats summarizes a completed reembedding run.
type Stats struct {
	Total   int
	Updated int
	Elapsed time.Duration
}

// Reembedder regenerates the embedding vectors of every stored chunk.
// Run this after switching embedding models; stale vectors would
// otherwise score garbage against queries embedded with the new model.
type Reembedder struct {
	chunks   storage.ChunkRepository
	embedder ai.Embedder
	config   *Config
	progress io.Writer
}

// NewReembedder creates a reembedder writing progress to w.
func NewReembedder(chunks storage.ChunkRepository, embedder ai.Embedder, w io.Writer, config *Config) *Reembedder {
	if config == nil {
		config = DefaultConfig()
	}
	return &Reembedder{
		chunks:   chunks,
		embedder: embedder,
		config:   config,
		progress: w,
	}
}

// Run reembeds every chunk in the store. Chunk identity derives from
// content, so rewriting a chunk with a fresh vector is an in-place
// update, not a duplicate.
func (r *Reembedder) Run(ctx context.Context) (*Stats, error) {
	var all []*core.Chunk
	err := r.chunks.IterateChunks(ctx, func(chunk *core.Chunk) error {
		all = append(all, chunk)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan chunks: %w", err)
	}

	tracker := NewProgressTracker(r.progress, len(all), r.config.ReportInterval)
	tracker.Start()

	updated := 0
	for start := 0; start < len(all); start += r.config.BatchSize {
		end := min(start+r.config.BatchSize, len(all))

		if err := r.processBatch(ctx, all[start:end]); err != nil {
			return nil, err
		}
		updated += end - start
		tracker.Update(updated)
	}
	tracker.Finish()

	return &Stats{
		Total:   len(all),
		Updated: updated,
		Elapsed: tracker.Elapsed(),
	}, nil
}

// processBatch embeds one batch and writes it back. Embedding calls
// retry with exponential backoff; storage writes do not, their
// transaction retry lives in the repository.
func (r *Reembedder) processBatch(ctx context.Context, chunks []*core.Chunk) error {
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	var embeddings [][]float32
	err := queue.RetryWithBackoff(ctx, func() error {
		var embErr error
		embeddings, embErr = r.embedder.EmbedTexts(ctx, texts)
		return embErr
	}, r.config.MaxRetries, r.config.RetryDelay)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", r.config.MaxRetries, err)
	}

	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	for i := range chunks {
		chunks[i].Vector = vector.NormalizeVector(embeddings[i])
	}

	if _, err := r.chunks.PutChunks(ctx, chunks...); err != nil {
		return fmt.Errorf("failed to update chunks: %w", err)
	}
	return nil
}
