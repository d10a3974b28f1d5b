package vector

import (
	"context"
	"log/slog"

	"github.com/poiesic/docuchat/ai"
	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/storage"
)

// DefaultTopK is the retrieval depth when none is configured.
const DefaultTopK = 10

// Retriever finds the chunks of one resource most similar to a query.
type Retriever struct {
	embedder ai.Embedder
	chunks   storage.ChunkRepository
	topK     int
	logger   *slog.Logger
}

// NewRetriever creates a retriever with the default depth.
func NewRetriever(embedder ai.Embedder, chunks storage.ChunkRepository) *Retriever {
	return &Retriever{
		embedder: embedder,
		chunks:   chunks,
		topK:     DefaultTopK,
		logger:   slog.Default().With("component", "retriever"),
	}
}

// Retrieve embeds the query and returns up to topK chunks of the
// resource ranked by similarity. No similarity cutoff is applied: a
// resource with any chunks always yields results, and an empty resource
// yields an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, resourceID, query string) ([]core.ScoredChunk, error) {
	if resourceID == "" {
		return nil, core.NewError(core.KindInvalidInput, "resource ID is required", core.ErrMissingResourceID)
	}

	vec, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, core.NewError(core.KindRetrieval, "failed to embed query", err)
	}

	scored, err := r.chunks.FindSimilar(ctx, resourceID, NormalizeVector(vec), r.topK)
	if err != nil {
		return nil, core.NewError(core.KindRetrieval, "similarity search failed", err)
	}

	results := make([]core.ScoredChunk, len(scored))
	for i, s := range scored {
		results[i] = *s
	}

	r.logger.Debug("chunks retrieved", "resourceId", resourceID, "count", len(results))
	return results, nil
}
