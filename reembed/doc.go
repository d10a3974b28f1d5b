// Package reembed regenerates the embedding vectors of stored chunks.
// It exists for embedding model migrations: vectors produced by
// different models are not comparable, so after a model switch every
// chunk must be reembedded before retrieval gives meaningful rankings.
package reembed
