package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"axonflow-be/internal/entity"
	"axonflow-be/internal/repository/contract"
)

// DocumentVectorRepository is an in-process vector index with
// brute-force cosine search. It backs local development and tests;
// production uses the pgvector implementation.
type DocumentVectorRepository struct {
	mu      sync.RWMutex
	records map[string]*entity.DocumentVector
}

func NewDocumentVectorRepository() *DocumentVectorRepository {
	return &DocumentVectorRepository{
		records: make(map[string]*entity.DocumentVector),
	}
}

func (r *DocumentVectorRepository) EnsureIndex(ctx context.Context) error {
	return nil
}

func (r *DocumentVectorRepository) UpsertBulk(ctx context.Context, vectors []*entity.DocumentVector) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range vectors {
		cp := *v
		r.records[v.Id] = &cp
	}
	return nil
}

func matches(v *entity.DocumentVector, filter contract.VectorFilter) bool {
	if filter.DocumentId != nil && v.DocumentId != *filter.DocumentId {
		return false
	}
	if filter.UserId != nil && v.UserId != *filter.UserId {
		return false
	}
	return true
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func (r *DocumentVectorRepository) Search(ctx context.Context, embedding []float32, topK int, filter contract.VectorFilter) ([]*contract.ScoredVector, error) {
	if topK <= 0 {
		topK = 5
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	scored := make([]*contract.ScoredVector, 0, len(r.records))
	for _, v := range r.records {
		if !matches(v, filter) {
			continue
		}
		cp := *v
		scored = append(scored, &contract.ScoredVector{
			Record: &cp,
			Score:  cosineSimilarity(embedding, v.Embedding),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func (r *DocumentVectorRepository) DeleteByFilter(ctx context.Context, filter contract.VectorFilter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, v := range r.records {
		if matches(v, filter) {
			delete(r.records, id)
		}
	}
	return nil
}

func (r *DocumentVectorRepository) Count(ctx context.Context, filter contract.VectorFilter) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count int64
	for _, v := range r.records {
		if matches(v, filter) {
			count++
		}
	}
	return count, nil
}
