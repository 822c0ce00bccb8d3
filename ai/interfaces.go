package ai

import "context"

// Embedder generates vector embeddings from text for semantic similarity
// matching. Implementations must be thread-safe for concurrent use and
// must preserve input order in batch results.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// Returns an error wrapping ErrEmbedding if generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in
	// a single batched call. Batching is both a throughput optimization
	// and a requirement: embedding backends parallelize internally across
	// a batch. The returned slice contains embeddings in the same order
	// as the input texts, one per input, all of equal dimensionality.
	// Returns an error wrapping ErrEmbedding if generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}
