package contract

import (
	"context"

	"axonflow-be/internal/entity"
	"axonflow-be/internal/repository/specification"

	"github.com/google/uuid"
)

type DocumentRepository interface {
	Create(ctx context.Context, document *entity.Document) error
	Update(ctx context.Context, document *entity.Document) error
	// UpdateStatus persists a status transition (and the matching error
	// message) without touching the rest of the row. The pipeline calls
	// this before and after every run stage.
	UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
