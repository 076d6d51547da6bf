package mapper

import (
	"axonflow-be/internal/entity"
	"axonflow-be/internal/model"
)

type DocumentMapper struct{}

func NewDocumentMapper() *DocumentMapper {
	return &DocumentMapper{}
}

func (m *DocumentMapper) ToEntity(d *model.Document) *entity.Document {
	if d == nil {
		return nil
	}
	return &entity.Document{
		Id:               d.Id,
		Title:            d.Title,
		FilePath:         d.FilePath,
		UserId:           d.UserId,
		ProcessingStatus: d.ProcessingStatus,
		ErrorMessage:     d.ErrorMessage,
		PageCount:        d.PageCount,
		UploadedAt:       d.UploadedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}

func (m *DocumentMapper) ToModel(d *entity.Document) *model.Document {
	if d == nil {
		return nil
	}
	return &model.Document{
		Id:               d.Id,
		Title:            d.Title,
		FilePath:         d.FilePath,
		UserId:           d.UserId,
		ProcessingStatus: d.ProcessingStatus,
		ErrorMessage:     d.ErrorMessage,
		PageCount:        d.PageCount,
		UploadedAt:       d.UploadedAt,
		UpdatedAt:        d.UpdatedAt,
	}
}
