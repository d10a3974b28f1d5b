package pipeline

import (
	"time"

	"github.com/poiesic/docuchat/core"
	"github.com/tmc/langchaingo/textsplitter"
)

// Default splitting windows. Prose holds context across larger spans;
// tabular and OCR-derived text loses coherence past a few hundred
// characters, so those routes get a tighter window.
const (
	proseChunkSize    = 1000
	proseChunkOverlap = 150
	denseChunkSize    = 400
	denseChunkOverlap = 50
)

// Chunker splits extracted segments into chunk records using a
// route-aware recursive character strategy.
type Chunker struct {
	prose textsplitter.RecursiveCharacter
	dense textsplitter.RecursiveCharacter
}

// NewChunker creates a chunker with the default windows.
func NewChunker() *Chunker {
	return &Chunker{
		prose: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(proseChunkSize),
			textsplitter.WithChunkOverlap(proseChunkOverlap),
		),
		dense: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(denseChunkSize),
			textsplitter.WithChunkOverlap(denseChunkOverlap),
		),
	}
}

// Chunk splits the job's segments in order. Chunk indexes are strictly
// increasing across all segments of the file, so (resource, file, index)
// identifies a chunk stably across re-runs.
func (c *Chunker) Chunk(job *Job) ([]*core.Chunk, error) {
	splitter := c.prose
	if job.Route == core.RouteExcel || job.Route == core.RouteImage {
		splitter = c.dense
	}

	now := time.Now().UTC()
	var chunks []*core.Chunk
	index := 0
	for _, segment := range job.Segments {
		parts, err := splitter.SplitText(segment.Text)
		if err != nil {
			return nil, core.NewError(core.KindChunking, "failed to split segment", err)
		}
		for _, part := range parts {
			if part == "" {
				continue
			}
			chunk := &core.Chunk{
				ResourceID: job.ResourceID,
				SourceFile: job.FileKey,
				Index:      index,
				Content:    part,
				CreatedAt:  now,
			}
			if len(segment.Metadata) > 0 {
				chunk.Metadata = make(map[string]string, len(segment.Metadata))
				for k, v := range segment.Metadata {
					chunk.Metadata[k] = v
				}
			}
			chunks = append(chunks, chunk)
			index++
		}
	}
	return chunks, nil
}
