package extract

import (
	"context"

	"github.com/poiesic/docuchat/core"
)

// Adapter extracts text segments from a staged file. Implementations are
// format-specific and must be safe for concurrent use.
type Adapter interface {
	// Extract reads the file at path and returns its text content as
	// ordered segments. Returns a core.ProcessingError of kind
	// KindExtraction when the file cannot be parsed.
	Extract(ctx context.Context, path string) ([]core.Segment, error)
}

// extractionError wraps a parse failure in the processing error taxonomy.
func extractionError(msg string, err error) error {
	return core.NewError(core.KindExtraction, msg, err)
}
