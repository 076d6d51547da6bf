package contract

import (
	"context"
	"fmt"

	"axonflow-be/internal/entity"

	"github.com/google/uuid"
)

// IndexError reports a vector index failure (store unavailable, malformed
// statement). Batched operations never partially apply: a batch either
// fully succeeds or the whole call fails with this.
type IndexError struct {
	Op  string
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("vector index %s: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error {
	return e.Err
}

// VectorFilter is a conjunction of exact-match predicates over vector
// record fields. Nil fields are unconstrained.
type VectorFilter struct {
	DocumentId *uuid.UUID
	UserId     *uuid.UUID
}

// ScoredVector wraps a DocumentVector with its cosine similarity to the
// query vector (1.0 = identical direction).
type ScoredVector struct {
	Record *entity.DocumentVector
	Score  float64
}

// DocumentVectorRepository is the vector index boundary: id-addressed
// upsert, filtered top-k similarity search and filtered deletion.
type DocumentVectorRepository interface {
	// EnsureIndex idempotently creates the backing index with the fixed
	// dimensionality and cosine metric. Safe to call repeatedly.
	EnsureIndex(ctx context.Context) error

	// UpsertBulk writes records in bounded batches, overwriting records
	// that share an id.
	UpsertBulk(ctx context.Context, vectors []*entity.DocumentVector) error

	// Search returns up to topK records matching the filter, ordered by
	// descending similarity to the query embedding.
	Search(ctx context.Context, embedding []float32, topK int, filter VectorFilter) ([]*ScoredVector, error)

	// DeleteByFilter removes every record matching the filter.
	DeleteByFilter(ctx context.Context, filter VectorFilter) error

	Count(ctx context.Context, filter VectorFilter) (int64, error)
}
