package mapper

import (
	"axonflow-be/internal/entity"
	"axonflow-be/internal/model"

	"github.com/pgvector/pgvector-go"
)

type DocumentVectorMapper struct{}

func NewDocumentVectorMapper() *DocumentVectorMapper {
	return &DocumentVectorMapper{}
}

func (m *DocumentVectorMapper) ToEntity(v *model.DocumentVector) *entity.DocumentVector {
	if v == nil {
		return nil
	}
	return &entity.DocumentVector{
		Id:            v.Id,
		Embedding:     v.Embedding.Slice(),
		DocumentId:    v.DocumentId,
		DocumentTitle: v.DocumentTitle,
		UserId:        v.UserId,
		ChunkIndex:    v.ChunkIndex,
		Text:          v.Text,
		StartChar:     v.StartChar,
		EndChar:       v.EndChar,
		CreatedAt:     v.CreatedAt,
	}
}

func (m *DocumentVectorMapper) ToModel(v *entity.DocumentVector) *model.DocumentVector {
	if v == nil {
		return nil
	}
	return &model.DocumentVector{
		Id:            v.Id,
		Embedding:     pgvector.NewVector(v.Embedding),
		DocumentId:    v.DocumentId,
		DocumentTitle: v.DocumentTitle,
		UserId:        v.UserId,
		ChunkIndex:    v.ChunkIndex,
		Text:          v.Text,
		StartChar:     v.StartChar,
		EndChar:       v.EndChar,
		CreatedAt:     v.CreatedAt,
	}
}
