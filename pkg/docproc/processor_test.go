package docproc

import (
	"context"
	"errors"
	"testing"
	"time"

	"axonflow-be/internal/constant"
	"axonflow-be/internal/entity"
	"axonflow-be/internal/repository/contract"
	"axonflow-be/internal/repository/memory"
	"axonflow-be/internal/repository/specification"
	"axonflow-be/pkg/events"
	"axonflow-be/pkg/textchunk"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(string, string, map[string]interface{}) {}
func (nopLogger) Info(string, string, map[string]interface{})  {}
func (nopLogger) Warn(string, string, map[string]interface{})  {}
func (nopLogger) Error(string, string, map[string]interface{}) {}
func (nopLogger) Sync() error                                  { return nil }

type fakeDocumentRepo struct {
	documents map[uuid.UUID]*entity.Document
	statuses  []string
}

func newFakeDocumentRepo(docs ...*entity.Document) *fakeDocumentRepo {
	r := &fakeDocumentRepo{documents: make(map[uuid.UUID]*entity.Document)}
	for _, d := range docs {
		r.documents[d.Id] = d
	}
	return r
}

func (r *fakeDocumentRepo) Create(ctx context.Context, d *entity.Document) error {
	r.documents[d.Id] = d
	return nil
}

func (r *fakeDocumentRepo) Update(ctx context.Context, d *entity.Document) error {
	r.documents[d.Id] = d
	return nil
}

func (r *fakeDocumentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status string, errorMessage *string) error {
	d, ok := r.documents[id]
	if !ok {
		return nil
	}
	d.ProcessingStatus = status
	d.ErrorMessage = errorMessage
	r.statuses = append(r.statuses, status)
	return nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	delete(r.documents, id)
	return nil
}

func (r *fakeDocumentRepo) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	for _, spec := range specs {
		if byId, ok := spec.(specification.ByID); ok {
			if d, found := r.documents[byId.ID]; found {
				return d, nil
			}
		}
	}
	return nil, nil
}

func (r *fakeDocumentRepo) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	var out []*entity.Document
	for _, d := range r.documents {
		out = append(out, d)
	}
	return out, nil
}

func (r *fakeDocumentRepo) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	return int64(len(r.documents)), nil
}

type fakeExtractor struct {
	text  string
	pages int
	err   error
}

func (e *fakeExtractor) ExtractText(path string) (string, error) {
	if e.err != nil {
		return "", e.err
	}
	return e.text, nil
}

func (e *fakeExtractor) PageCount(path string) (int, error) {
	return e.pages, nil
}

type fakeEmbedder struct {
	failAfter int
	calls     int
}

func (e *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func (e *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	e.calls++
	if e.failAfter > 0 && e.calls > e.failAfter {
		return nil, errors.New("embedding provider unavailable")
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{float32(i + 1), 0}
	}
	return out, nil
}

type recordingPublisher struct {
	published []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.published = append(p.published, event)
	return nil
}

func testDocument() *entity.Document {
	return &entity.Document{
		Id:               uuid.New(),
		Title:            "Quarterly Report",
		FilePath:         "/tmp/report.pdf",
		UserId:           uuid.New(),
		ProcessingStatus: constant.DocumentStatusPending,
		UploadedAt:       time.Now(),
	}
}

func TestProcessHappyPath(t *testing.T) {
	doc := testDocument()
	docRepo := newFakeDocumentRepo(doc)
	vectorRepo := memory.NewDocumentVectorRepository()
	publisher := &recordingPublisher{}

	p := NewProcessor(
		docRepo,
		vectorRepo,
		&fakeExtractor{text: "First sentence here. Second sentence follows.", pages: 3},
		textchunk.NewChunker(textchunk.DefaultChunkSize, textchunk.DefaultChunkOverlap),
		&fakeEmbedder{},
		publisher,
		nopLogger{},
	)

	require.NoError(t, p.Process(context.Background(), doc.Id))

	assert.Equal(t, constant.DocumentStatusCompleted, doc.ProcessingStatus)
	assert.Nil(t, doc.ErrorMessage)
	assert.Equal(t, 3, doc.PageCount)
	// PROCESSING is persisted before any pipeline stage runs.
	assert.Equal(t, []string{constant.DocumentStatusProcessing, constant.DocumentStatusCompleted}, docRepo.statuses)

	count, err := vectorRepo.Count(context.Background(), contract.VectorFilter{DocumentId: &doc.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "DOCUMENT_COMPLETED", publisher.published[0].EventType())
}

func TestProcessVectorsCarryChunkMetadata(t *testing.T) {
	doc := testDocument()
	docRepo := newFakeDocumentRepo(doc)
	vectorRepo := memory.NewDocumentVectorRepository()

	p := NewProcessor(
		docRepo,
		vectorRepo,
		&fakeExtractor{text: "Alpha beta gamma. Delta epsilon zeta.", pages: 1},
		textchunk.NewChunker(textchunk.DefaultChunkSize, textchunk.DefaultChunkOverlap),
		&fakeEmbedder{},
		nil,
		nopLogger{},
	)

	require.NoError(t, p.Process(context.Background(), doc.Id))

	results, err := vectorRepo.Search(context.Background(), []float32{1, 0}, 5, contract.VectorFilter{DocumentId: &doc.Id})
	require.NoError(t, err)
	require.Len(t, results, 1)

	record := results[0].Record
	assert.Equal(t, VectorId(doc.Id, 0), record.Id)
	assert.Equal(t, doc.Title, record.DocumentTitle)
	assert.Equal(t, doc.UserId, record.UserId)
	assert.Equal(t, 0, record.ChunkIndex)
	assert.NotEmpty(t, record.Text)
}

func TestProcessExtractionFailure(t *testing.T) {
	doc := testDocument()
	docRepo := newFakeDocumentRepo(doc)
	vectorRepo := memory.NewDocumentVectorRepository()
	publisher := &recordingPublisher{}

	p := NewProcessor(
		docRepo,
		vectorRepo,
		&fakeExtractor{err: errors.New("pdf is encrypted")},
		textchunk.NewChunker(textchunk.DefaultChunkSize, textchunk.DefaultChunkOverlap),
		&fakeEmbedder{},
		publisher,
		nopLogger{},
	)

	require.NoError(t, p.Process(context.Background(), doc.Id))

	assert.Equal(t, constant.DocumentStatusFailed, doc.ProcessingStatus)
	require.NotNil(t, doc.ErrorMessage)
	// Error text is captured verbatim.
	assert.Equal(t, "pdf is encrypted", *doc.ErrorMessage)

	count, _ := vectorRepo.Count(context.Background(), contract.VectorFilter{DocumentId: &doc.Id})
	assert.Equal(t, int64(0), count)

	require.Len(t, publisher.published, 1)
	assert.Equal(t, "DOCUMENT_FAILED", publisher.published[0].EventType())
}

func TestProcessEmbeddingFailureLeavesNoVectors(t *testing.T) {
	doc := testDocument()
	docRepo := newFakeDocumentRepo(doc)
	vectorRepo := memory.NewDocumentVectorRepository()

	p := NewProcessor(
		docRepo,
		vectorRepo,
		&fakeExtractor{text: "Some extractable text.", pages: 1},
		textchunk.NewChunker(textchunk.DefaultChunkSize, textchunk.DefaultChunkOverlap),
		&fakeEmbedder{failAfter: 1, calls: 1}, // every call fails
		nil,
		nopLogger{},
	)

	require.NoError(t, p.Process(context.Background(), doc.Id))

	assert.Equal(t, constant.DocumentStatusFailed, doc.ProcessingStatus)
	count, _ := vectorRepo.Count(context.Background(), contract.VectorFilter{DocumentId: &doc.Id})
	assert.Equal(t, int64(0), count)
}

func TestProcessMissingDocumentIsNoOp(t *testing.T) {
	docRepo := newFakeDocumentRepo()
	vectorRepo := memory.NewDocumentVectorRepository()

	p := NewProcessor(
		docRepo,
		vectorRepo,
		&fakeExtractor{text: "unused"},
		textchunk.NewChunker(textchunk.DefaultChunkSize, textchunk.DefaultChunkOverlap),
		&fakeEmbedder{},
		nil,
		nopLogger{},
	)

	require.NoError(t, p.Process(context.Background(), uuid.New()))
	assert.Empty(t, docRepo.statuses)
}

func TestProcessEmptyTextFails(t *testing.T) {
	doc := testDocument()
	docRepo := newFakeDocumentRepo(doc)

	p := NewProcessor(
		docRepo,
		memory.NewDocumentVectorRepository(),
		&fakeExtractor{text: "   "},
		textchunk.NewChunker(textchunk.DefaultChunkSize, textchunk.DefaultChunkOverlap),
		&fakeEmbedder{},
		nil,
		nopLogger{},
	)

	require.NoError(t, p.Process(context.Background(), doc.Id))
	assert.Equal(t, constant.DocumentStatusFailed, doc.ProcessingStatus)
}

func TestReprocessReplacesVectors(t *testing.T) {
	doc := testDocument()
	docRepo := newFakeDocumentRepo(doc)
	vectorRepo := memory.NewDocumentVectorRepository()

	// Stale vector from a previous run with a now-impossible chunk index.
	stale := &entity.DocumentVector{
		Id:         VectorId(doc.Id, 7),
		Embedding:  []float32{1, 0},
		DocumentId: doc.Id,
		UserId:     doc.UserId,
		ChunkIndex: 7,
		Text:       "stale",
	}
	require.NoError(t, vectorRepo.UpsertBulk(context.Background(), []*entity.DocumentVector{stale}))

	p := NewProcessor(
		docRepo,
		vectorRepo,
		&fakeExtractor{text: "Fresh content after an edit.", pages: 1},
		textchunk.NewChunker(textchunk.DefaultChunkSize, textchunk.DefaultChunkOverlap),
		&fakeEmbedder{},
		nil,
		nopLogger{},
	)

	require.NoError(t, p.Reprocess(context.Background(), doc.Id))

	assert.Equal(t, constant.DocumentStatusCompleted, doc.ProcessingStatus)

	results, err := vectorRepo.Search(context.Background(), []float32{1, 0}, 10, contract.VectorFilter{DocumentId: &doc.Id})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, VectorId(doc.Id, 0), results[0].Record.Id)
}

func TestVectorId(t *testing.T) {
	id := uuid.MustParse("2dab7057-59ea-4b4c-b043-422b6a32a3d5")
	assert.Equal(t, "doc_2dab7057-59ea-4b4c-b043-422b6a32a3d5_chunk_3", VectorId(id, 3))
}
