package model

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id               uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title            string    `gorm:"size:255;not null"`
	FilePath         string    `gorm:"not null"`
	UserId           uuid.UUID `gorm:"type:uuid;not null;index"`
	ProcessingStatus string    `gorm:"size:20;not null;default:PENDING"`
	ErrorMessage     *string   `gorm:"type:text"`
	PageCount        int       `gorm:"default:0"`
	UploadedAt       time.Time `gorm:"autoCreateTime"`
	UpdatedAt        *time.Time
}

func (Document) TableName() string {
	return "documents"
}
