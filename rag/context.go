package rag

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/poiesic/docuchat/core"
)

// NoDocumentsContext is the context string used when retrieval returns
// nothing: generation proceeds with this sentinel instead of failing.
const NoDocumentsContext = "No relevant documents found in the resource."

// BuildContext renders retrieved chunks into the grounding context.
// Chunks appear in retrieval-rank order, each introduced by a source
// reference line and separated by a blank line. The reference prefers
// the original filename over internal identifiers and includes page and
// chunk index when available.
func BuildContext(chunks []core.ScoredChunk) string {
	if len(chunks) == 0 {
		return NoDocumentsContext
	}

	parts := make([]string, 0, len(chunks))
	for i, sc := range chunks {
		parts = append(parts, fmt.Sprintf("Document %d (%s):\n%s", i+1, sourceRef(sc.Chunk), sc.Chunk.Content))
	}
	return strings.Join(parts, "\n\n")
}

func sourceRef(chunk *core.Chunk) string {
	name := filepath.Base(chunk.SourceFile)
	if name == "" || name == "." {
		name = "Unknown"
	}

	ref := "File: " + name
	if page, ok := chunk.Metadata["page"]; ok {
		ref += ", Page: " + page
	}
	ref += fmt.Sprintf(", Chunk: %d", chunk.Index)
	return ref
}
