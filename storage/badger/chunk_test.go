package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/storage"
)

func newTestRepos(t *testing.T) *Repositories {
	t.Helper()
	repos, err := NewMemoryRepositories()
	if err != nil {
		t.Fatalf("NewMemoryRepositories failed: %v", err)
	}
	t.Cleanup(func() { repos.Close() })
	return repos
}

func testChunk(resourceID, sourceFile string, index int, content string) *core.Chunk {
	return &core.Chunk{
		ResourceID: resourceID,
		SourceFile: sourceFile,
		Index:      index,
		Content:    content,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestChunkRepository_PutAndGet(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	chunk := testChunk("res-1", "report.pdf", 0, "quarterly revenue grew")
	if _, err := repos.Chunks.PutChunks(ctx, chunk); err != nil {
		t.Fatalf("PutChunks failed: %v", err)
	}
	if chunk.Id == 0 {
		t.Fatal("expected content-derived ID to be assigned")
	}

	got, err := repos.Chunks.GetChunk(ctx, chunk.Id)
	if err != nil {
		t.Fatalf("GetChunk failed: %v", err)
	}
	if got.Content != chunk.Content {
		t.Errorf("content = %q, want %q", got.Content, chunk.Content)
	}
	if got.ResourceID != "res-1" {
		t.Errorf("resourceID = %q, want res-1", got.ResourceID)
	}
}

func TestChunkRepository_PutIsIdempotent(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	// Storing the same logical chunk twice must not duplicate it: the ID
	// is derived from (resource, file, index, content).
	for i := 0; i < 2; i++ {
		chunk := testChunk("res-1", "report.pdf", 0, "same content")
		if _, err := repos.Chunks.PutChunks(ctx, chunk); err != nil {
			t.Fatalf("PutChunks attempt %d failed: %v", i, err)
		}
	}

	count, err := repos.Chunks.CountByResource(ctx, "res-1")
	if err != nil {
		t.Fatalf("CountByResource failed: %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestChunkRepository_GetMissing(t *testing.T) {
	repos := newTestRepos(t)

	_, err := repos.Chunks.GetChunk(context.Background(), 42)
	if err != storage.ErrNotFound {
		t.Errorf("err = %v, want storage.ErrNotFound", err)
	}
}

func TestChunkRepository_CountAndDeleteByResource(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	chunks := []*core.Chunk{
		testChunk("res-1", "a.pdf", 0, "first"),
		testChunk("res-1", "a.pdf", 1, "second"),
		testChunk("res-2", "b.txt", 0, "other resource"),
	}
	if _, err := repos.Chunks.PutChunks(ctx, chunks...); err != nil {
		t.Fatalf("PutChunks failed: %v", err)
	}

	count, err := repos.Chunks.CountByResource(ctx, "res-1")
	if err != nil {
		t.Fatalf("CountByResource failed: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}

	if err := repos.Chunks.DeleteByResource(ctx, "res-1"); err != nil {
		t.Fatalf("DeleteByResource failed: %v", err)
	}

	count, err = repos.Chunks.CountByResource(ctx, "res-1")
	if err != nil {
		t.Fatalf("CountByResource after delete failed: %v", err)
	}
	if count != 0 {
		t.Errorf("count after delete = %d, want 0", count)
	}

	// The other resource is untouched.
	count, err = repos.Chunks.CountByResource(ctx, "res-2")
	if err != nil {
		t.Fatalf("CountByResource res-2 failed: %v", err)
	}
	if count != 1 {
		t.Errorf("res-2 count = %d, want 1", count)
	}
}

func TestChunkRepository_FindSimilar(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	near := testChunk("res-1", "a.txt", 0, "near")
	near.Vector = []float32{1, 0, 0}
	far := testChunk("res-1", "a.txt", 1, "far")
	far.Vector = []float32{0, 1, 0}
	other := testChunk("res-2", "b.txt", 0, "wrong resource")
	other.Vector = []float32{1, 0, 0}

	if _, err := repos.Chunks.PutChunks(ctx, near, far, other); err != nil {
		t.Fatalf("PutChunks failed: %v", err)
	}

	results, err := repos.Chunks.FindSimilar(ctx, "res-1", []float32{1, 0, 0}, 10)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("len(results) = %d, want 2", len(results))
	}
	if results[0].Chunk.Content != "near" {
		t.Errorf("top result = %q, want %q", results[0].Chunk.Content, "near")
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("results not sorted by score: %v then %v", results[0].Score, results[1].Score)
	}
	for _, r := range results {
		if r.Chunk.ResourceID != "res-1" {
			t.Errorf("result leaked from resource %q", r.Chunk.ResourceID)
		}
	}
}

func TestChunkRepository_FindSimilarLimit(t *testing.T) {
	repos := newTestRepos(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		chunk := testChunk("res-1", "a.txt", i, "chunk")
		chunk.Content = chunk.Content + string(rune('a'+i))
		chunk.Vector = []float32{float32(i + 1)}
		if _, err := repos.Chunks.PutChunks(ctx, chunk); err != nil {
			t.Fatalf("PutChunks failed: %v", err)
		}
	}

	results, err := repos.Chunks.FindSimilar(ctx, "res-1", []float32{1}, 3)
	if err != nil {
		t.Fatalf("FindSimilar failed: %v", err)
	}
	if len(results) != 3 {
		t.Errorf("len(results) = %d, want 3", len(results))
	}
}
