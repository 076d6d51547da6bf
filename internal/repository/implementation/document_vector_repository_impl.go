package implementation

import (
	"context"

	"axonflow-be/internal/entity"
	"axonflow-be/internal/mapper"
	"axonflow-be/internal/model"
	"axonflow-be/internal/repository/contract"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const upsertBatchSize = 100

type DocumentVectorRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.DocumentVectorMapper
}

func NewDocumentVectorRepository(db *gorm.DB) contract.DocumentVectorRepository {
	return &DocumentVectorRepositoryImpl{
		db:     db,
		mapper: mapper.NewDocumentVectorMapper(),
	}
}

func (r *DocumentVectorRepositoryImpl) EnsureIndex(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return &contract.IndexError{Op: "ensure", Err: err}
	}
	if err := r.db.WithContext(ctx).AutoMigrate(&model.DocumentVector{}); err != nil {
		return &contract.IndexError{Op: "ensure", Err: err}
	}
	err := r.db.WithContext(ctx).Exec(
		"CREATE INDEX IF NOT EXISTS idx_document_vectors_embedding ON document_vectors USING ivfflat (embedding vector_cosine_ops)",
	).Error
	if err != nil {
		return &contract.IndexError{Op: "ensure", Err: err}
	}
	return nil
}

func (r *DocumentVectorRepositoryImpl) UpsertBulk(ctx context.Context, vectors []*entity.DocumentVector) error {
	if len(vectors) == 0 {
		return nil
	}
	models := make([]*model.DocumentVector, len(vectors))
	for i, v := range vectors {
		models[i] = r.mapper.ToModel(v)
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for start := 0; start < len(models); start += upsertBatchSize {
			end := start + upsertBatchSize
			if end > len(models) {
				end = len(models)
			}
			batch := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				UpdateAll: true,
			}).Create(models[start:end])
			if batch.Error != nil {
				return batch.Error
			}
		}
		return nil
	})
	if err != nil {
		return &contract.IndexError{Op: "upsert", Err: err}
	}
	return nil
}

func (r *DocumentVectorRepositoryImpl) applyFilter(db *gorm.DB, filter contract.VectorFilter) *gorm.DB {
	if filter.DocumentId != nil {
		db = db.Where("document_id = ?", *filter.DocumentId)
	}
	if filter.UserId != nil {
		db = db.Where("user_id = ?", *filter.UserId)
	}
	return db
}

func (r *DocumentVectorRepositoryImpl) Search(ctx context.Context, embedding []float32, topK int, filter contract.VectorFilter) ([]*contract.ScoredVector, error) {
	if topK <= 0 {
		topK = 5
	}

	// Cosine distance in pgvector is 1 - cosine_similarity, so the score
	// column is 1 - (embedding <=> query_vector).
	type result struct {
		model.DocumentVector
		Score float64
	}
	var results []result

	queryVector := pgvector.NewVector(embedding)

	query := r.db.WithContext(ctx).
		Table("document_vectors").
		Select("document_vectors.*, 1 - (embedding <=> ?) as score", queryVector)
	query = r.applyFilter(query, filter)

	err := query.
		Order("score DESC").
		Limit(topK).
		Scan(&results).Error
	if err != nil {
		return nil, &contract.IndexError{Op: "search", Err: err}
	}

	scored := make([]*contract.ScoredVector, len(results))
	for i, res := range results {
		scored[i] = &contract.ScoredVector{
			Record: r.mapper.ToEntity(&res.DocumentVector),
			Score:  res.Score,
		}
	}
	return scored, nil
}

func (r *DocumentVectorRepositoryImpl) DeleteByFilter(ctx context.Context, filter contract.VectorFilter) error {
	query := r.applyFilter(r.db.WithContext(ctx), filter)
	if err := query.Delete(&model.DocumentVector{}).Error; err != nil {
		return &contract.IndexError{Op: "delete", Err: err}
	}
	return nil
}

func (r *DocumentVectorRepositoryImpl) Count(ctx context.Context, filter contract.VectorFilter) (int64, error) {
	var count int64
	query := r.applyFilter(r.db.WithContext(ctx).Model(&model.DocumentVector{}), filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, &contract.IndexError{Op: "count", Err: err}
	}
	return count, nil
}
