package vector

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/poiesic/docuchat/ai/mock"
	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/storage/badger"
)

func newTestChunks(t *testing.T) *badger.Repositories {
	t.Helper()
	repos, err := badger.NewMemoryRepositories()
	if err != nil {
		t.Fatalf("NewMemoryRepositories failed: %v", err)
	}
	t.Cleanup(func() { repos.Close() })
	return repos
}

func testChunks(resourceID string, contents ...string) []*core.Chunk {
	chunks := make([]*core.Chunk, len(contents))
	for i, content := range contents {
		chunks[i] = &core.Chunk{
			ResourceID: resourceID,
			SourceFile: "report.pdf",
			Index:      i,
			Content:    content,
		}
	}
	return chunks
}

func TestGateway_StoreAndCount(t *testing.T) {
	repos := newTestChunks(t)
	gateway := NewGateway(mock.NewMockEmbedder(), repos.Chunks)

	res := gateway.Store(context.Background(), "res-1", testChunks("res-1", "first chunk", "second chunk"))

	if !res.Success {
		t.Fatalf("Store failed: %v", res.Err)
	}
	if res.StoredCount != 2 || len(res.IDs) != 2 {
		t.Errorf("result = %+v, want 2 stored", res)
	}

	count, err := repos.Chunks.CountByResource(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("CountByResource failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestGateway_StoreIsIdempotent(t *testing.T) {
	repos := newTestChunks(t)
	gateway := NewGateway(mock.NewMockEmbedder(), repos.Chunks)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res := gateway.Store(ctx, "res-1", testChunks("res-1", "same chunk content"))
		if !res.Success {
			t.Fatalf("Store attempt %d failed: %v", i, res.Err)
		}
	}

	count, err := repos.Chunks.CountByResource(ctx, "res-1")
	if err != nil {
		t.Fatalf("CountByResource failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1 after re-delivery", count)
	}
}

func TestGateway_EmptyStore(t *testing.T) {
	repos := newTestChunks(t)
	gateway := NewGateway(mock.NewMockEmbedder(), repos.Chunks)

	res := gateway.Store(context.Background(), "res-1", nil)
	if !res.Success || res.StoredCount != 0 {
		t.Errorf("result = %+v, want empty success", res)
	}
}

func TestGateway_EmbedderFailure(t *testing.T) {
	repos := newTestChunks(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, errors.New("embedding backend down")
	}
	gateway := NewGateway(embedder, repos.Chunks)

	res := gateway.Store(context.Background(), "res-1", testChunks("res-1", "chunk"))

	if res.Success {
		t.Fatal("Store should fail when embedding fails")
	}
	if core.KindOf(res.Err) != core.KindStorage {
		t.Errorf("kind = %v, want KindStorage", core.KindOf(res.Err))
	}

	// Nothing may be visible after a failed store.
	count, err := repos.Chunks.CountByResource(context.Background(), "res-1")
	if err != nil {
		t.Fatalf("CountByResource failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count = %d, want 0", count)
	}
}

func TestRetriever_TopK(t *testing.T) {
	repos := newTestChunks(t)
	embedder := mock.NewMockEmbedder()
	gateway := NewGateway(embedder, repos.Chunks)
	ctx := context.Background()

	contents := make([]string, 15)
	for i := range contents {
		contents[i] = "chunk number " + string(rune('a'+i))
	}
	if res := gateway.Store(ctx, "res-1", testChunks("res-1", contents...)); !res.Success {
		t.Fatalf("Store failed: %v", res.Err)
	}

	scored, err := NewRetriever(embedder, repos.Chunks).Retrieve(ctx, "res-1", "chunk number a")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(scored) != DefaultTopK {
		t.Errorf("len(scored) = %d, want %d", len(scored), DefaultTopK)
	}
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Errorf("results not ranked: score[%d]=%v > score[%d]=%v", i, scored[i].Score, i-1, scored[i-1].Score)
		}
	}
}

func TestRetriever_EmptyResource(t *testing.T) {
	repos := newTestChunks(t)
	retriever := NewRetriever(mock.NewMockEmbedder(), repos.Chunks)

	scored, err := retriever.Retrieve(context.Background(), "res-empty", "anything")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	if len(scored) != 0 {
		t.Errorf("len(scored) = %d, want 0", len(scored))
	}
}

func TestRetriever_ScopedToResource(t *testing.T) {
	repos := newTestChunks(t)
	embedder := mock.NewMockEmbedder()
	gateway := NewGateway(embedder, repos.Chunks)
	ctx := context.Background()

	if res := gateway.Store(ctx, "res-1", testChunks("res-1", "about apples")); !res.Success {
		t.Fatalf("Store failed: %v", res.Err)
	}
	if res := gateway.Store(ctx, "res-2", testChunks("res-2", "about oranges")); !res.Success {
		t.Fatalf("Store failed: %v", res.Err)
	}

	scored, err := NewRetriever(embedder, repos.Chunks).Retrieve(ctx, "res-1", "fruit")
	if err != nil {
		t.Fatalf("Retrieve failed: %v", err)
	}
	for _, s := range scored {
		if s.Chunk.ResourceID != "res-1" {
			t.Errorf("retrieved chunk from resource %q", s.Chunk.ResourceID)
		}
	}
}

func TestRetriever_EmbedFailure(t *testing.T) {
	repos := newTestChunks(t)
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("backend down")
	}

	_, err := NewRetriever(embedder, repos.Chunks).Retrieve(context.Background(), "res-1", "query")
	if core.KindOf(err) != core.KindRetrieval {
		t.Errorf("kind = %v, want KindRetrieval", core.KindOf(err))
	}
}

func TestNormalizeVector(t *testing.T) {
	normalized := NormalizeVector([]float32{3, 4})
	if math.Abs(float64(normalized[0])-0.6) > 1e-6 || math.Abs(float64(normalized[1])-0.8) > 1e-6 {
		t.Errorf("normalized = %v, want [0.6 0.8]", normalized)
	}

	zero := NormalizeVector([]float32{0, 0, 0})
	for _, v := range zero {
		if v != 0 {
			t.Errorf("zero vector changed: %v", zero)
		}
	}

	if got := NormalizeVector(nil); got != nil {
		t.Errorf("nil vector = %v, want nil", got)
	}
}
