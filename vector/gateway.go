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


// Package vector implements the embedding/storage gateway and the
// similarity retriever over the chunk repository. Chunk IDs are derived
// from content, so storing the same chunks twice upserts rather than
// duplicates — re-delivered ingestion jobs are harmless.
package vector

import (
	"context"
	"log/slog"

	"github.com/poiesic/docuchat/ai"
	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/pipeline"
	"github.com/poiesic/docuchat/storage"
)

// Gateway embeds chunk contents in batch and persists them.
type Gateway struct {
	embedder ai.Embedder
	chunks   storage.ChunkRepository
	logger   *slog.Logger
}

var _ pipeline.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway over an embedder and a chunk repository.
func NewGateway(embedder ai.Embedder, chunks storage.ChunkRepository) *Gateway {
	return &Gateway{
		embedder: embedder,
		chunks:   chunks,
		logger:   slog.Default().With("component", "vector-gateway"),
	}
}

// Store embeds all chunk contents in one batch and writes the chunks in a
// single transaction, so readers of the resource never see a partial
// store. An empty chunk slice succeeds with a zero count.
func (g *Gateway) Store(ctx context.Context, resourceID string, chunks []*core.Chunk) *pipeline.StoreResult {
	if len(chunks) == 0 {
		return &pipeline.StoreResult{Success: true}
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	vectors, err := g.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return &pipeline.StoreResult{
			Success: false,
			Err:     core.NewError(core.KindStorage, "failed to embed chunks", err),
		}
	}
	if len(vectors) != len(chunks) {
		return &pipeline.StoreResult{
			Success: false,
			Err:     core.NewError(core.KindStorage, "embedder returned mismatched vector count", nil),
		}
	}
	// Stored vectors are unit length so dot-product scoring equals
	// cosine similarity.
	for i, c := range chunks {
		c.Vector = NormalizeVector(vectors[i])
	}

	if _, err := g.chunks.PutChunks(ctx, chunks...); err != nil {
		return &pipeline.StoreResult{
			Success: false,
			Err:     core.NewError(core.KindStorage, "failed to persist chunks", err),
		}
	}

	ids := make([]core.ID, len(chunks))
	for i, c := range chunks {
		ids[i] = c.Id
	}
	g.logger.Debug("chunks stored", "resourceId", resourceID, "count", len(chunks))

	return &pipeline.StoreResult{
		Success:     true,
		StoredCount: len(chunks),
		IDs:         ids,
	}
}
