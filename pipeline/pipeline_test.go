package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/docuchat/core"
	"github.com/poiesic/docuchat/extract"
)

// stubFetcher serves files from a map of fileKey to content, staging
// them under a temp directory like a real fetcher would.
type stubFetcher struct {
	t     *testing.T
	files map[string]string
}

func (f *stubFetcher) Fetch(ctx context.Context, fileKey string) (string, *FileMetadata, error) {
	content, ok := f.files[fileKey]
	if !ok {
		return "", nil, core.NewError(core.KindFetch, "file not available: "+fileKey, nil)
	}
	path := filepath.Join(f.t.TempDir(), filepath.Base(fileKey))
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		f.t.Fatalf("failed to stage stub file: %v", err)
	}
	return path, &FileMetadata{Size: int64(len(content)), Extension: filepath.Ext(fileKey)}, nil
}

// stubGateway records stores and answers with a scripted result.
type stubGateway struct {
	calls  int
	chunks []*core.Chunk
	fail   error
}

func (g *stubGateway) Store(ctx context.Context, resourceID string, chunks []*core.Chunk) *StoreResult {
	g.calls++
	g.chunks = chunks
	if g.fail != nil {
		return &StoreResult{Success: false, Err: g.fail}
	}
	ids := make([]core.ID, len(chunks))
	for i := range chunks {
		ids[i] = core.ID(i + 1)
	}
	return &StoreResult{Success: true, StoredCount: len(chunks), IDs: ids}
}

func newTestPipeline(t *testing.T, files map[string]string, gateway *stubGateway, opts ...Option) *Pipeline {
	t.Helper()
	fetcher := &stubFetcher{t: t, files: files}
	return New(fetcher, extract.NewRegistry(), NewChunker(), gateway, opts...)
}

func TestPipeline_StoresSupportedFile(t *testing.T) {
	gateway := &stubGateway{}
	p := newTestPipeline(t, map[string]string{
		"uploads/notes.txt": "some meaningful document content",
	}, gateway)

	result := p.Run(context.Background(), NewJob("uploads/notes.txt", "res-1"))

	if result.Status != core.StatusStored {
		t.Fatalf("status = %v, want stored (message %q)", result.Status, result.Message)
	}
	if result.ChunkCount == 0 || len(result.StoredIDs) == 0 {
		t.Errorf("result = %+v, want stored chunks", result)
	}
	if result.FileType != "txt" {
		t.Errorf("fileType = %q, want txt", result.FileType)
	}
	if gateway.calls != 1 {
		t.Errorf("gateway calls = %d, want 1", gateway.calls)
	}
}

func TestPipeline_UnsupportedReachesSkippedNotFailed(t *testing.T) {
	gateway := &stubGateway{}
	p := newTestPipeline(t, map[string]string{
		"uploads/archive.zip": "binary junk",
	}, gateway)

	result := p.Run(context.Background(), NewJob("uploads/archive.zip", "res-1"))

	if result.Status != core.StatusSkipped {
		t.Fatalf("status = %v, want skipped", result.Status)
	}
	if !strings.Contains(result.Message, "not supported") {
		t.Errorf("message = %q, want not-supported text", result.Message)
	}
	if !strings.Contains(result.Message, "zip") {
		t.Errorf("message = %q, want file type included", result.Message)
	}
	// The gateway is never invoked for skipped jobs.
	if gateway.calls != 0 {
		t.Errorf("gateway calls = %d, want 0", gateway.calls)
	}
}

func TestPipeline_FetchFailure(t *testing.T) {
	gateway := &stubGateway{}
	p := newTestPipeline(t, map[string]string{}, gateway)

	result := p.Run(context.Background(), NewJob("uploads/missing.pdf", "res-1"))

	if result.Status != core.StatusFailed {
		t.Fatalf("status = %v, want failed", result.Status)
	}
	if !strings.HasPrefix(result.Message, "Processing failed: ") {
		t.Errorf("message = %q, want Processing failed prefix", result.Message)
	}
	if gateway.calls != 0 {
		t.Errorf("gateway calls = %d, want 0", gateway.calls)
	}
}

func TestPipeline_CorruptFileFails(t *testing.T) {
	gateway := &stubGateway{}
	// A .docx key whose payload is not a zip archive fails extraction.
	p := newTestPipeline(t, map[string]string{
		"uploads/fake.docx": "this is not a word document",
	}, gateway)

	result := p.Run(context.Background(), NewJob("uploads/fake.docx", "res-1"))

	if result.Status != core.StatusFailed {
		t.Fatalf("status = %v, want failed", result.Status)
	}
	if result.Message == "" {
		t.Error("failed result must carry a message")
	}
	if gateway.calls != 0 {
		t.Errorf("gateway calls = %d, want 0", gateway.calls)
	}
}

func TestPipeline_GatewayFailure(t *testing.T) {
	gateway := &stubGateway{fail: errors.New("embedding backend down")}
	p := newTestPipeline(t, map[string]string{
		"uploads/notes.txt": "document content",
	}, gateway)

	result := p.Run(context.Background(), NewJob("uploads/notes.txt", "res-1"))

	if result.Status != core.StatusFailed {
		t.Fatalf("status = %v, want failed", result.Status)
	}
	if !strings.Contains(result.Message, "Processing failed") {
		t.Errorf("message = %q", result.Message)
	}
}

func TestPipeline_ProgressEvents(t *testing.T) {
	var stages []string
	gateway := &stubGateway{}
	p := newTestPipeline(t, map[string]string{
		"uploads/notes.txt": "document content",
	}, gateway, WithProgress(func(resourceID, stage string, percent int) {
		if resourceID != "res-progress" {
			t.Errorf("progress resourceID = %q, want %q", resourceID, "res-progress")
		}
		stages = append(stages, stage)
		if percent < 0 || percent > 100 {
			t.Errorf("percent %d out of range for stage %s", percent, stage)
		}
	}))

	p.Run(context.Background(), NewJob("uploads/notes.txt", "res-progress"))

	want := []string{"fetch", "route", "extract", "chunk", "store", "done"}
	if len(stages) != len(want) {
		t.Fatalf("stages = %v, want %v", stages, want)
	}
	for i := range want {
		if stages[i] != want[i] {
			t.Errorf("stages[%d] = %q, want %q", i, stages[i], want[i])
		}
	}
}

func TestPipeline_CleansUpStagedFile(t *testing.T) {
	gateway := &stubGateway{}
	fetcher := &stubFetcher{t: t, files: map[string]string{"uploads/notes.txt": "content"}}
	p := New(fetcher, extract.NewRegistry(), NewChunker(), gateway)

	job := NewJob("uploads/notes.txt", "res-1")
	p.Run(context.Background(), job)

	if job.FilePath != "" {
		t.Errorf("FilePath = %q, want cleared", job.FilePath)
	}
}

func TestPipeline_RerunIsDeterministic(t *testing.T) {
	files := map[string]string{"uploads/notes.txt": "stable document content"}

	first := newTestPipeline(t, files, &stubGateway{}).
		Run(context.Background(), NewJob("uploads/notes.txt", "res-1"))
	second := newTestPipeline(t, files, &stubGateway{}).
		Run(context.Background(), NewJob("uploads/notes.txt", "res-1"))

	if first.Status != second.Status || first.ChunkCount != second.ChunkCount {
		t.Errorf("reruns differ: %+v vs %+v", first, second)
	}
}

func TestLocalFetcher_MissingFile(t *testing.T) {
	fetcher, err := NewLocalFetcher(t.TempDir(), "")
	if err != nil {
		t.Fatalf("NewLocalFetcher failed: %v", err)
	}

	_, _, err = fetcher.Fetch(context.Background(), "nope.pdf")
	if core.KindOf(err) != core.KindFetch {
		t.Errorf("kind = %v, want KindFetch", core.KindOf(err))
	}
}

func TestLocalFetcher_StagesCopy(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "doc.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatalf("failed to write source: %v", err)
	}

	fetcher, err := NewLocalFetcher(root, t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFetcher failed: %v", err)
	}

	path, meta, err := fetcher.Fetch(context.Background(), "doc.txt")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	defer os.Remove(path)

	staged, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read staged file: %v", err)
	}
	if string(staged) != "hello" {
		t.Errorf("staged content = %q", staged)
	}
	if meta.Size != 5 || meta.Extension != ".txt" {
		t.Errorf("meta = %+v", meta)
	}
	if path == filepath.Join(root, "doc.txt") {
		t.Error("staged path should not be the source path")
	}
}
