package ai

import "errors"

var (
	// ErrEmbedding is the base error for embedding capability failures:
	// timeouts, malformed responses, count or dimensionality mismatches.
	// Requests that hit it fail cleanly; retry policy belongs to the caller.
	ErrEmbedding = errors.New("embedding failed")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")
)
