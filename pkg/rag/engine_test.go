package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"axonflow-be/internal/constant"
	"axonflow-be/internal/entity"
	"axonflow-be/internal/repository/memory"
	"axonflow-be/pkg/llm"

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

type stubEmbedder struct {
	vector []float32
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vector, nil
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

type recordingLLM struct {
	reply    string
	err      error
	calls    int
	messages []llm.Message
	opts     llm.Options
}

func (r *recordingLLM) Complete(ctx context.Context, messages []llm.Message, options ...llm.Option) (string, error) {
	r.calls++
	r.messages = messages
	for _, opt := range options {
		opt(&r.opts)
	}
	if r.err != nil {
		return "", r.err
	}
	return r.reply, nil
}

func seedVectors(t *testing.T, repo *memory.DocumentVectorRepository, userId uuid.UUID, n int) {
	t.Helper()
	documentId := uuid.New()
	records := make([]*entity.DocumentVector, n)
	for i := 0; i < n; i++ {
		// Later chunks point further from the query vector, so chunk 0
		// scores highest.
		records[i] = &entity.DocumentVector{
			Id:            fmt.Sprintf("doc_%s_chunk_%d", documentId, i),
			Embedding:     []float32{1, float32(i)},
			DocumentId:    documentId,
			DocumentTitle: "Handbook",
			UserId:        userId,
			ChunkIndex:    i,
			Text:          fmt.Sprintf("chunk %d text", i),
		}
	}
	require.NoError(t, repo.UpsertBulk(context.Background(), records))
}

func newTestEngine(repo *memory.DocumentVectorRepository, generator llm.Provider) *Engine {
	return NewEngine(&stubEmbedder{vector: []float32{1, 0}}, repo, generator, nopLogger{})
}

func TestQueryNoResultsSkipsGeneration(t *testing.T) {
	repo := memory.NewDocumentVectorRepository()
	generator := &recordingLLM{reply: "should not be called"}
	engine := newTestEngine(repo, generator)

	result, err := engine.Query(context.Background(), uuid.New(), "anything", nil)
	require.NoError(t, err)

	assert.Equal(t, constant.NoContextReply, result.Answer)
	assert.Empty(t, result.Citations)
	assert.Zero(t, generator.calls)
}

func TestQueryFiltersByUser(t *testing.T) {
	repo := memory.NewDocumentVectorRepository()
	otherUser := uuid.New()
	seedVectors(t, repo, otherUser, 3)

	generator := &recordingLLM{reply: "answer"}
	engine := newTestEngine(repo, generator)

	result, err := engine.Query(context.Background(), uuid.New(), "question", nil)
	require.NoError(t, err)

	// Another user's documents are invisible, so this is a zero-hit query.
	assert.Equal(t, constant.NoContextReply, result.Answer)
	assert.Zero(t, generator.calls)
}

func TestQueryBuildsContextAndCitations(t *testing.T) {
	repo := memory.NewDocumentVectorRepository()
	userId := uuid.New()
	seedVectors(t, repo, userId, 3)

	generator := &recordingLLM{reply: "generated answer"}
	engine := newTestEngine(repo, generator)

	result, err := engine.Query(context.Background(), userId, "question", nil)
	require.NoError(t, err)

	assert.Equal(t, "generated answer", result.Answer)
	require.Len(t, result.Citations, 3)
	// Citations follow descending retrieval score.
	assert.Equal(t, 0, result.Citations[0].ChunkIndex)
	assert.Equal(t, "Handbook", result.Citations[0].DocumentTitle)
	assert.GreaterOrEqual(t, result.Citations[0].Score, result.Citations[1].Score)
	assert.GreaterOrEqual(t, result.Citations[1].Score, result.Citations[2].Score)

	require.Equal(t, 1, generator.calls)
	require.NotEmpty(t, generator.messages)

	system := generator.messages[0]
	assert.Equal(t, constant.ChatMessageRoleSystem, system.Role)
	assert.Contains(t, system.Content, "[Context 1]: chunk 0 text")
	assert.Contains(t, system.Content, "[Context 2]: chunk 1 text")
	assert.Contains(t, system.Content, "[Context 3]: chunk 2 text")
	assert.Less(t,
		strings.Index(system.Content, "[Context 1]"),
		strings.Index(system.Content, "[Context 2]"),
	)

	last := generator.messages[len(generator.messages)-1]
	assert.Equal(t, constant.ChatMessageRoleUser, last.Role)
	assert.Equal(t, "question", last.Content)
}

func TestQuerySamplingParameters(t *testing.T) {
	repo := memory.NewDocumentVectorRepository()
	userId := uuid.New()
	seedVectors(t, repo, userId, 1)

	generator := &recordingLLM{reply: "ok"}
	engine := newTestEngine(repo, generator)

	_, err := engine.Query(context.Background(), userId, "question", nil)
	require.NoError(t, err)

	assert.InDelta(t, 0.7, generator.opts.Temperature, 1e-9)
	assert.Equal(t, 1000, generator.opts.MaxTokens)
}

func TestQueryHistoryChronologicalAndBounded(t *testing.T) {
	repo := memory.NewDocumentVectorRepository()
	userId := uuid.New()
	seedVectors(t, repo, userId, 1)

	generator := &recordingLLM{reply: "ok"}
	engine := newTestEngine(repo, generator)

	history := make([]llm.Message, 8)
	for i := range history {
		role := constant.ChatMessageRoleUser
		if i%2 == 1 {
			role = constant.ChatMessageRoleAssistant
		}
		history[i] = llm.Message{Role: role, Content: fmt.Sprintf("turn %d", i)}
	}

	_, err := engine.Query(context.Background(), userId, "current question", history)
	require.NoError(t, err)

	// system + 5 most recent turns + current query
	require.Len(t, generator.messages, 7)
	assert.Equal(t, "turn 3", generator.messages[1].Content)
	assert.Equal(t, "turn 4", generator.messages[2].Content)
	assert.Equal(t, "turn 7", generator.messages[5].Content)
	assert.Equal(t, "current question", generator.messages[6].Content)
}

func TestQueryGenerationErrorPropagates(t *testing.T) {
	repo := memory.NewDocumentVectorRepository()
	userId := uuid.New()
	seedVectors(t, repo, userId, 1)

	genErr := &llm.GenerationError{Err: errors.New("model overloaded")}
	generator := &recordingLLM{err: genErr}
	engine := newTestEngine(repo, generator)

	result, err := engine.Query(context.Background(), userId, "question", nil)
	assert.Nil(t, result)

	var ge *llm.GenerationError
	require.True(t, errors.As(err, &ge))
}

func TestQueryTopKBound(t *testing.T) {
	repo := memory.NewDocumentVectorRepository()
	userId := uuid.New()
	seedVectors(t, repo, userId, 9)

	generator := &recordingLLM{reply: "ok"}
	engine := newTestEngine(repo, generator)

	result, err := engine.Query(context.Background(), userId, "question", nil)
	require.NoError(t, err)
	assert.Len(t, result.Citations, DefaultTopK)
}
