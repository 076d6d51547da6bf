package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"axonflow-be/internal/constant"
	"axonflow-be/internal/dto"
	"axonflow-be/internal/entity"
	"axonflow-be/internal/pkg/logger"
	"axonflow-be/internal/repository/contract"
	"axonflow-be/internal/repository/specification"
	"axonflow-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IDocumentService interface {
	Upload(ctx context.Context, userId uuid.UUID, title string, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error)
	List(ctx context.Context, userId uuid.UUID) ([]*dto.ListDocumentsResponse, error)
	Show(ctx context.Context, userId, documentId uuid.UUID) (*dto.ShowDocumentResponse, error)
	Delete(ctx context.Context, userId, documentId uuid.UUID) error
	Reprocess(ctx context.Context, userId, documentId uuid.UUID) (*dto.ReprocessDocumentResponse, error)
}

type documentService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	uploadDir        string
	logger           logger.ILogger
}

func NewDocumentService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	uploadDir string,
	log logger.ILogger,
) IDocumentService {
	return &documentService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		uploadDir:        uploadDir,
		logger:           log,
	}
}

func (s *documentService) Upload(ctx context.Context, userId uuid.UUID, title string, file *multipart.FileHeader) (*dto.UploadDocumentResponse, error) {
	if !strings.EqualFold(filepath.Ext(file.Filename), ".pdf") {
		return nil, errors.New("only PDF files are supported")
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	}

	documentId := uuid.New()
	destination := filepath.Join(s.uploadDir, documentId.String()+".pdf")

	if err := s.saveFile(file, destination); err != nil {
		return nil, err
	}

	document := &entity.Document{
		Id:               documentId,
		Title:            title,
		FilePath:         destination,
		UserId:           userId,
		ProcessingStatus: constant.DocumentStatusPending,
		UploadedAt:       time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.DocumentRepository().Create(ctx, document); err != nil {
		// Keep the filesystem consistent with the failed insert.
		os.Remove(destination)
		return nil, err
	}

	if err := s.publishProcess(ctx, document.Id, false); err != nil {
		return nil, err
	}

	return &dto.UploadDocumentResponse{
		Id:               document.Id,
		Title:            document.Title,
		ProcessingStatus: document.ProcessingStatus,
	}, nil
}

func (s *documentService) saveFile(file *multipart.FileHeader, destination string) error {
	if err := os.MkdirAll(s.uploadDir, 0o755); err != nil {
		return err
	}

	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(destination)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, src)
	return err
}

func (s *documentService) publishProcess(ctx context.Context, documentId uuid.UUID, reprocess bool) error {
	payload := dto.ProcessDocumentMessage{
		DocumentId: documentId,
		Reprocess:  reprocess,
	}
	payloadJson, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return s.publisherService.Publish(ctx, payloadJson)
}

func (s *documentService) List(ctx context.Context, userId uuid.UUID) ([]*dto.ListDocumentsResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	documents, err := uow.DocumentRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "uploaded_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.ListDocumentsResponse, len(documents))
	for i, d := range documents {
		responses[i] = &dto.ListDocumentsResponse{
			Id:               d.Id,
			Title:            d.Title,
			ProcessingStatus: d.ProcessingStatus,
			PageCount:        d.PageCount,
			UploadedAt:       d.UploadedAt,
		}
	}
	return responses, nil
}

func (s *documentService) findOwned(ctx context.Context, uow unitofwork.UnitOfWork, userId, documentId uuid.UUID) (*entity.Document, error) {
	document, err := uow.DocumentRepository().FindOne(ctx,
		specification.ByID{ID: documentId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if document == nil {
		return nil, ErrNotFound
	}
	return document, nil
}

func (s *documentService) Show(ctx context.Context, userId, documentId uuid.UUID) (*dto.ShowDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := s.findOwned(ctx, uow, userId, documentId)
	if err != nil {
		return nil, err
	}

	chunkCount, err := uow.DocumentVectorRepository().Count(ctx, contract.VectorFilter{DocumentId: &document.Id})
	if err != nil {
		s.logger.Warn("document", "Failed to count vectors", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       err.Error(),
		})
		chunkCount = 0
	}

	return &dto.ShowDocumentResponse{
		Id:               document.Id,
		Title:            document.Title,
		ProcessingStatus: document.ProcessingStatus,
		ErrorMessage:     document.ErrorMessage,
		PageCount:        document.PageCount,
		ChunkCount:       chunkCount,
		UploadedAt:       document.UploadedAt,
		UpdatedAt:        document.UpdatedAt,
	}, nil
}

func (s *documentService) Delete(ctx context.Context, userId, documentId uuid.UUID) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := s.findOwned(ctx, uow, userId, documentId)
	if err != nil {
		return err
	}

	// Vectors first. If this fails the row survives and the user can
	// retry the delete.
	if err := uow.DocumentVectorRepository().DeleteByFilter(ctx, contract.VectorFilter{DocumentId: &document.Id}); err != nil {
		return err
	}

	if err := uow.DocumentRepository().Delete(ctx, document.Id); err != nil {
		return err
	}

	if err := os.Remove(document.FilePath); err != nil && !os.IsNotExist(err) {
		s.logger.Warn("document", "Failed to remove file from disk", map[string]interface{}{
			"document_id": document.Id.String(),
			"path":        document.FilePath,
			"error":       err.Error(),
		})
	}
	return nil
}

func (s *documentService) Reprocess(ctx context.Context, userId, documentId uuid.UUID) (*dto.ReprocessDocumentResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	document, err := s.findOwned(ctx, uow, userId, documentId)
	if err != nil {
		return nil, err
	}

	if err := uow.DocumentRepository().UpdateStatus(ctx, document.Id, constant.DocumentStatusPending, nil); err != nil {
		return nil, err
	}

	if err := s.publishProcess(ctx, document.Id, true); err != nil {
		return nil, err
	}

	return &dto.ReprocessDocumentResponse{
		Id:               document.Id,
		ProcessingStatus: constant.DocumentStatusPending,
	}, nil
}
