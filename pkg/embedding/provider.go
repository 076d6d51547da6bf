package embedding

import (
	"context"
	"fmt"
)

const (
	// Dimension must match the vector index configuration.
	Dimension = 1536

	// Inputs longer than this are truncated before embedding. Truncation
	// is silent: the tail of an oversized chunk is the least useful part.
	MaxInputChars = 8000

	// Sub-batch size for EmbedBatch, keeps single requests under provider
	// throughput limits.
	BatchSize = 20
)

// EmbeddingError wraps any provider failure.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// Provider converts text into fixed-dimension vectors.
type Provider interface {
	// Embed returns the embedding vector for a single text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per input text, in input order.
	// A provider failure on any sub-batch aborts the whole call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

func truncate(text string) string {
	if len(text) > MaxInputChars {
		return text[:MaxInputChars]
	}
	return text
}
