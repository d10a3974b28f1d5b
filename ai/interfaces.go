package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity search.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// StreamFunc receives incremental response text during streaming generation.
// Returning an error aborts the generation.
type StreamFunc func(ctx context.Context, chunk []byte) error

// Generator produces chat completions grounded in a conversation.
// Implementations must be thread-safe for concurrent use.
type Generator interface {
	// Generate produces a complete response for the request.
	// Returns an error if generation fails.
	Generate(ctx context.Context, req *GenerationRequest) (string, error)

	// GenerateStream produces a response incrementally, invoking fn for
	// each text fragment as the model emits it, and returns the full
	// accumulated response. If fn returns an error, generation stops and
	// that error is returned.
	GenerateStream(ctx context.Context, req *GenerationRequest, fn StreamFunc) (string, error)
}

// ImageDescriber produces a text description of an image, for indexing
// image content alongside text. Implemented by generators whose backing
// model accepts image input.
type ImageDescriber interface {
	// DescribeImage returns a textual description of the image data.
	DescribeImage(ctx context.Context, mimeType string, data []byte) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages Embedder and Generator instances,
// ensuring they share configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	// The returned Embedder is safe for concurrent use.
	Embedder() Embedder

	// Generator returns the chat completion service.
	// The returned Generator is safe for concurrent use.
	Generator() Generator

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
