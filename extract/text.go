package extract

import (
	"context"
	"os"

	"github.com/poiesic/docuchat/core"
	"github.com/tmc/langchaingo/documentloaders"
)

// TextAdapter extracts plain text and markdown files.
type TextAdapter struct{}

var _ Adapter = (*TextAdapter)(nil)

// NewTextAdapter creates a text file adapter.
func NewTextAdapter() *TextAdapter {
	return &TextAdapter{}
}

// Extract reads the whole file as a single segment.
func (a *TextAdapter) Extract(ctx context.Context, path string) ([]core.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, extractionError("failed to open text file", err)
	}
	defer f.Close()

	docs, err := documentloaders.NewText(f).Load(ctx)
	if err != nil {
		return nil, extractionError("failed to load text file", err)
	}

	segments := make([]core.Segment, 0, len(docs))
	for _, doc := range docs {
		if doc.PageContent == "" {
			continue
		}
		segments = append(segments, core.Segment{Text: doc.PageContent})
	}
	return segments, nil
}
