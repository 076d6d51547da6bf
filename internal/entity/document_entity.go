package entity

import (
	"time"

	"github.com/google/uuid"
)

type Document struct {
	Id               uuid.UUID
	Title            string
	FilePath         string
	UserId           uuid.UUID
	ProcessingStatus string
	ErrorMessage     *string
	PageCount        int
	UploadedAt       time.Time
	UpdatedAt        *time.Time
}
