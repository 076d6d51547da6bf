package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type DocumentVector struct {
	Id            string          `gorm:"primaryKey"` // doc_<document_id>_chunk_<index>
	Embedding     pgvector.Vector `gorm:"type:vector(1536)"` // OpenAI ada-002 dimension
	DocumentId    uuid.UUID       `gorm:"type:uuid;not null;index"`
	DocumentTitle string          `gorm:"size:255;not null"`
	UserId        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ChunkIndex    int             `gorm:"not null"`
	Text          string          `gorm:"type:text;not null"`
	StartChar     int             `gorm:"not null"`
	EndChar       int             `gorm:"not null"`
	CreatedAt     time.Time       `gorm:"autoCreateTime"`
}

func (DocumentVector) TableName() string {
	return "document_vectors"
}
