package pipeline

import (
	"strings"
	"testing"

	"github.com/poiesic/docuchat/core"
)

func proseJob(text string) *Job {
	job := NewJob("uploads/report.txt", "res-1")
	job.Route = core.RouteText
	job.Segments = []core.Segment{{Text: text}}
	return job
}

func TestChunker_SmallSegmentSingleChunk(t *testing.T) {
	chunks, err := NewChunker().Chunk(proseJob("short paragraph of text"))
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("len(chunks) = %d, want 1", len(chunks))
	}
	if chunks[0].Content != "short paragraph of text" {
		t.Errorf("content = %q", chunks[0].Content)
	}
	if chunks[0].ResourceID != "res-1" || chunks[0].SourceFile != "uploads/report.txt" {
		t.Errorf("chunk provenance = %q/%q", chunks[0].ResourceID, chunks[0].SourceFile)
	}
}

func TestChunker_LongProseSplits(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("The quick brown fox jumps over the lazy dog. ")
	}

	chunks, err := NewChunker().Chunk(proseJob(sb.String()))
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("len(chunks) = %d, want multiple", len(chunks))
	}
	for _, c := range chunks {
		if len(c.Content) > proseChunkSize {
			t.Errorf("chunk length %d exceeds prose window", len(c.Content))
		}
	}
}

func TestChunker_DenseRouteTighterWindow(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 100; i++ {
		sb.WriteString("col1\tcol2\tcol3\n")
	}

	job := NewJob("uploads/data.xlsx", "res-1")
	job.Route = core.RouteExcel
	job.Segments = []core.Segment{{Text: sb.String()}}

	chunks, err := NewChunker().Chunk(job)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	for _, c := range chunks {
		if len(c.Content) > denseChunkSize {
			t.Errorf("chunk length %d exceeds dense window", len(c.Content))
		}
	}
}

func TestChunker_IndexesStrictlyIncreasing(t *testing.T) {
	job := NewJob("uploads/report.pdf", "res-1")
	job.Route = core.RoutePDF
	job.Segments = []core.Segment{
		{Text: "page one content", Metadata: map[string]string{"page": "1"}},
		{Text: "page two content", Metadata: map[string]string{"page": "2"}},
	}

	chunks, err := NewChunker().Chunk(job)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	for i, c := range chunks {
		if c.Index != i {
			t.Errorf("chunks[%d].Index = %d", i, c.Index)
		}
	}
}

func TestChunker_SegmentMetadataPropagates(t *testing.T) {
	job := NewJob("uploads/report.pdf", "res-1")
	job.Route = core.RoutePDF
	job.Segments = []core.Segment{
		{Text: "page content", Metadata: map[string]string{"page": "3"}},
	}

	chunks, err := NewChunker().Chunk(job)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	if chunks[0].Metadata["page"] != "3" {
		t.Errorf("metadata = %v, want page 3", chunks[0].Metadata)
	}
}

func TestChunker_EmptySegments(t *testing.T) {
	job := NewJob("uploads/empty.txt", "res-1")
	job.Route = core.RouteText

	chunks, err := NewChunker().Chunk(job)
	if err != nil {
		t.Fatalf("Chunk failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("len(chunks) = %d, want 0", len(chunks))
	}
}
