package dto

import (
	"time"

	"github.com/google/uuid"
)

type UploadDocumentRequest struct {
	Title string `json:"title"`
}

type UploadDocumentResponse struct {
	Id               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	ProcessingStatus string    `json:"processing_status"`
}

type ShowDocumentResponse struct {
	Id               uuid.UUID  `json:"id"`
	Title            string     `json:"title"`
	ProcessingStatus string     `json:"processing_status"`
	ErrorMessage     *string    `json:"error_message,omitempty"`
	PageCount        int        `json:"page_count"`
	ChunkCount       int64      `json:"chunk_count"`
	UploadedAt       time.Time  `json:"uploaded_at"`
	UpdatedAt        *time.Time `json:"updated_at"`
}

type ListDocumentsResponse struct {
	Id               uuid.UUID `json:"id"`
	Title            string    `json:"title"`
	ProcessingStatus string    `json:"processing_status"`
	PageCount        int       `json:"page_count"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// ProcessDocumentMessage is the queue payload that triggers one
// pipeline run.
type ProcessDocumentMessage struct {
	DocumentId uuid.UUID `json:"document_id"`
	Reprocess  bool      `json:"reprocess"`
}

type ReprocessDocumentResponse struct {
	Id               uuid.UUID `json:"id"`
	ProcessingStatus string    `json:"processing_status"`
}
