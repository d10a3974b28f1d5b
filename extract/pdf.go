package extract

import (
	"context"
	"os"
	"strconv"

	"github.com/poiesic/docuchat/core"
	"github.com/tmc/langchaingo/documentloaders"
)

// PDFAdapter extracts text from PDF files page by page.
type PDFAdapter struct{}

var _ Adapter = (*PDFAdapter)(nil)

// NewPDFAdapter creates a PDF adapter.
func NewPDFAdapter() *PDFAdapter {
	return &PDFAdapter{}
}

// Extract returns one segment per page, with the page number recorded in
// segment metadata.
func (a *PDFAdapter) Extract(ctx context.Context, path string) ([]core.Segment, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, extractionError("failed to open PDF file", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, extractionError("failed to stat PDF file", err)
	}

	docs, err := documentloaders.NewPDF(f, info.Size()).Load(ctx)
	if err != nil {
		return nil, extractionError("failed to parse PDF file", err)
	}

	segments := make([]core.Segment, 0, len(docs))
	for i, doc := range docs {
		if doc.PageContent == "" {
			continue
		}
		page := i + 1
		if p, ok := doc.Metadata["page"]; ok {
			if n, ok := p.(int); ok {
				page = n
			}
		}
		segments = append(segments, core.Segment{
			Text:     doc.PageContent,
			Metadata: map[string]string{"page": strconv.Itoa(page)},
		})
	}
	return segments, nil
}
