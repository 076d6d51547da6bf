package docproc

import (
	"context"
	"fmt"
	"time"

	"axonflow-be/internal/constant"
	"axonflow-be/internal/entity"
	"axonflow-be/internal/pkg/logger"
	"axonflow-be/internal/repository/contract"
	"axonflow-be/internal/repository/specification"
	"axonflow-be/pkg/embedding"
	"axonflow-be/pkg/events"
	"axonflow-be/pkg/textchunk"

	"github.com/google/uuid"
)

// EventPublisher emits document lifecycle events. Publish failures are
// logged and never fail a pipeline run.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// TextExtractor yields a document file's plain text and page count.
// Satisfied by pdfextract.Extractor.
type TextExtractor interface {
	ExtractText(path string) (string, error)
	PageCount(path string) (int, error)
}

// Processor runs the full ingestion pipeline for one document:
// extract, clean, chunk, embed, upsert. Stages are strictly sequential
// and the run either reaches COMPLETED or FAILED.
type Processor struct {
	documentRepo contract.DocumentRepository
	vectorRepo   contract.DocumentVectorRepository
	extractor    TextExtractor
	chunker      *textchunk.Chunker
	embedder     embedding.Provider
	publisher    EventPublisher
	logger       logger.ILogger
}

func NewProcessor(
	documentRepo contract.DocumentRepository,
	vectorRepo contract.DocumentVectorRepository,
	extractor TextExtractor,
	chunker *textchunk.Chunker,
	embedder embedding.Provider,
	publisher EventPublisher,
	log logger.ILogger,
) *Processor {
	return &Processor{
		documentRepo: documentRepo,
		vectorRepo:   vectorRepo,
		extractor:    extractor,
		chunker:      chunker,
		embedder:     embedder,
		publisher:    publisher,
		logger:       log,
	}
}

// Process runs the pipeline for the given document id. A missing
// document is logged and ignored. Pipeline failures are recorded on the
// document row and not returned, so queue consumers ack the message.
func (p *Processor) Process(ctx context.Context, documentId uuid.UUID) error {
	document, err := p.documentRepo.FindOne(ctx, specification.ByID{ID: documentId})
	if err != nil {
		return err
	}
	if document == nil {
		p.logger.Warn("docproc", "Document not found, skipping", map[string]interface{}{
			"document_id": documentId.String(),
		})
		return nil
	}

	// Persisted before extraction starts so a crash mid-run shows up as
	// a document stuck in PROCESSING.
	if err := p.documentRepo.UpdateStatus(ctx, document.Id, constant.DocumentStatusProcessing, nil); err != nil {
		return err
	}

	if runErr := p.run(ctx, document); runErr != nil {
		message := runErr.Error()
		if err := p.documentRepo.UpdateStatus(ctx, document.Id, constant.DocumentStatusFailed, &message); err != nil {
			p.logger.Error("docproc", "Failed to record FAILED status", map[string]interface{}{
				"document_id": document.Id.String(),
				"error":       err.Error(),
			})
		}
		p.logger.Error("docproc", "Document processing failed", map[string]interface{}{
			"document_id": document.Id.String(),
			"error":       message,
		})
		p.publish(ctx, events.NewDocumentFailed(document.Id, document.UserId, message))
		return nil
	}

	if err := p.documentRepo.UpdateStatus(ctx, document.Id, constant.DocumentStatusCompleted, nil); err != nil {
		return err
	}
	return nil
}

// Reprocess drops the document's existing vectors, then re-runs the
// pipeline. The delete is best effort: stale vectors are overwritten by
// id on the next upsert anyway.
func (p *Processor) Reprocess(ctx context.Context, documentId uuid.UUID) error {
	if err := p.vectorRepo.DeleteByFilter(ctx, contract.VectorFilter{DocumentId: &documentId}); err != nil {
		p.logger.Warn("docproc", "Failed to delete existing vectors before reprocess", map[string]interface{}{
			"document_id": documentId.String(),
			"error":       err.Error(),
		})
	}
	return p.Process(ctx, documentId)
}

func (p *Processor) run(ctx context.Context, document *entity.Document) error {
	text, err := p.extractor.ExtractText(document.FilePath)
	if err != nil {
		return err
	}

	if pages, err := p.extractor.PageCount(document.FilePath); err == nil {
		document.PageCount = pages
		if err := p.documentRepo.Update(ctx, document); err != nil {
			p.logger.Warn("docproc", "Failed to persist page count", map[string]interface{}{
				"document_id": document.Id.String(),
				"error":       err.Error(),
			})
		}
	}

	cleaned := p.chunker.Clean(text)
	chunks := p.chunker.Chunk(cleaned)
	if len(chunks) == 0 {
		return fmt.Errorf("no text content extracted from document")
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return err
	}

	now := time.Now()
	records := make([]*entity.DocumentVector, len(chunks))
	for i, c := range chunks {
		records[i] = &entity.DocumentVector{
			Id:            VectorId(document.Id, c.Index),
			Embedding:     vectors[i],
			DocumentId:    document.Id,
			DocumentTitle: document.Title,
			UserId:        document.UserId,
			ChunkIndex:    c.Index,
			Text:          c.Text,
			StartChar:     c.StartChar,
			EndChar:       c.EndChar,
			CreatedAt:     now,
		}
	}

	if err := p.vectorRepo.UpsertBulk(ctx, records); err != nil {
		return err
	}

	p.logger.Info("docproc", "Document indexed", map[string]interface{}{
		"document_id": document.Id.String(),
		"chunks":      len(records),
	})
	p.publish(ctx, events.NewDocumentCompleted(document.Id, document.UserId, len(records)))
	return nil
}

func (p *Processor) publish(ctx context.Context, event events.Event) {
	if p.publisher == nil {
		return
	}
	if err := p.publisher.Publish(ctx, event); err != nil {
		p.logger.Warn("docproc", "Failed to publish event", map[string]interface{}{
			"event": event.EventType(),
			"error": err.Error(),
		})
	}
}

// VectorId is the stable identifier for one chunk's vector record.
// Namespacing by document id keeps concurrent runs of different
// documents from colliding, and makes reprocessing overwrite in place.
func VectorId(documentId uuid.UUID, chunkIndex int) string {
	return fmt.Sprintf("doc_%s_chunk_%d", documentId, chunkIndex)
}
