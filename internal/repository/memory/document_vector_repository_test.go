package memory

import (
	"context"
	"fmt"
	"testing"

	"axonflow-be/internal/entity"
	"axonflow-be/internal/repository/contract"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(id string, documentId, userId uuid.UUID, embedding []float32) *entity.DocumentVector {
	return &entity.DocumentVector{
		Id:         id,
		Embedding:  embedding,
		DocumentId: documentId,
		UserId:     userId,
		Text:       "text for " + id,
	}
}

func TestEnsureIndexIsIdempotent(t *testing.T) {
	repo := NewDocumentVectorRepository()

	require.NoError(t, repo.EnsureIndex(context.Background()))
	require.NoError(t, repo.EnsureIndex(context.Background()))

	documentId, userId := uuid.New(), uuid.New()
	v := record("v1", documentId, userId, []float32{1, 0})
	require.NoError(t, repo.UpsertBulk(context.Background(), []*entity.DocumentVector{v}))

	count, err := repo.Count(context.Background(), contract.VectorFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestUpsertOverwritesById(t *testing.T) {
	repo := NewDocumentVectorRepository()
	documentId, userId := uuid.New(), uuid.New()

	first := record("v1", documentId, userId, []float32{1, 0})
	require.NoError(t, repo.UpsertBulk(context.Background(), []*entity.DocumentVector{first}))

	updated := record("v1", documentId, userId, []float32{0, 1})
	updated.Text = "updated"
	require.NoError(t, repo.UpsertBulk(context.Background(), []*entity.DocumentVector{updated}))

	count, err := repo.Count(context.Background(), contract.VectorFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	results, err := repo.Search(context.Background(), []float32{0, 1}, 1, contract.VectorFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "updated", results[0].Record.Text)
}

func TestSearchOrdersByDescendingSimilarity(t *testing.T) {
	repo := NewDocumentVectorRepository()
	documentId, userId := uuid.New(), uuid.New()

	var records []*entity.DocumentVector
	for i := 0; i < 4; i++ {
		records = append(records, record(fmt.Sprintf("v%d", i), documentId, userId, []float32{1, float32(i)}))
	}
	require.NoError(t, repo.UpsertBulk(context.Background(), records))

	results, err := repo.Search(context.Background(), []float32{1, 0}, 4, contract.VectorFilter{})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "v0", results[0].Record.Id)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	for i := 1; i < len(results); i++ {
		assert.GreaterOrEqual(t, results[i-1].Score, results[i].Score)
	}
}

func TestSearchRespectsTopK(t *testing.T) {
	repo := NewDocumentVectorRepository()
	documentId, userId := uuid.New(), uuid.New()

	var records []*entity.DocumentVector
	for i := 0; i < 10; i++ {
		records = append(records, record(fmt.Sprintf("v%d", i), documentId, userId, []float32{1, float32(i)}))
	}
	require.NoError(t, repo.UpsertBulk(context.Background(), records))

	results, err := repo.Search(context.Background(), []float32{1, 0}, 3, contract.VectorFilter{})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestSearchIsolatesUsers(t *testing.T) {
	repo := NewDocumentVectorRepository()
	userA, userB := uuid.New(), uuid.New()

	require.NoError(t, repo.UpsertBulk(context.Background(), []*entity.DocumentVector{
		record("a", uuid.New(), userA, []float32{1, 0}),
		record("b", uuid.New(), userB, []float32{1, 0}),
	}))

	results, err := repo.Search(context.Background(), []float32{1, 0}, 10, contract.VectorFilter{UserId: &userA})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "a", results[0].Record.Id)
}

func TestDeleteByFilterScopesToDocument(t *testing.T) {
	repo := NewDocumentVectorRepository()
	userId := uuid.New()
	keepDoc, dropDoc := uuid.New(), uuid.New()

	require.NoError(t, repo.UpsertBulk(context.Background(), []*entity.DocumentVector{
		record("keep", keepDoc, userId, []float32{1, 0}),
		record("drop1", dropDoc, userId, []float32{1, 0}),
		record("drop2", dropDoc, userId, []float32{0, 1}),
	}))

	require.NoError(t, repo.DeleteByFilter(context.Background(), contract.VectorFilter{DocumentId: &dropDoc}))

	count, err := repo.Count(context.Background(), contract.VectorFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	remaining, err := repo.Search(context.Background(), []float32{1, 0}, 10, contract.VectorFilter{})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "keep", remaining[0].Record.Id)
}

func TestSearchZeroVectorScoresZero(t *testing.T) {
	repo := NewDocumentVectorRepository()
	require.NoError(t, repo.UpsertBulk(context.Background(), []*entity.DocumentVector{
		record("v", uuid.New(), uuid.New(), []float32{0, 0}),
	}))

	results, err := repo.Search(context.Background(), []float32{1, 0}, 1, contract.VectorFilter{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Zero(t, results[0].Score)
}
