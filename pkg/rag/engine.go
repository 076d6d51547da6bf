package rag

import (
	"context"

	"axonflow-be/internal/constant"
	"axonflow-be/internal/pkg/logger"
	"axonflow-be/internal/repository/contract"
	"axonflow-be/pkg/embedding"
	"axonflow-be/pkg/llm"

	"github.com/google/uuid"
)

const (
	// DefaultTopK bounds retrieval per query.
	DefaultTopK = 5
	// DefaultHistoryTurns bounds how many prior turns reach the model.
	DefaultHistoryTurns = 5

	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// Citation points at one retrieved chunk used as generation context.
type Citation struct {
	DocumentTitle string
	ChunkIndex    int
	Score         float64
}

// Result is one answered query: the generated text plus the citations
// for the chunks handed to the model, in retrieval order.
type Result struct {
	Answer    string
	Citations []Citation
}

// Engine answers a user's question from their own indexed documents:
// embed the query, retrieve the user's top chunks, generate once with
// the chunks as context.
type Engine struct {
	embedder   embedding.Provider
	vectorRepo contract.DocumentVectorRepository
	generator  llm.Provider
	logger     logger.ILogger
	topK       int
}

func NewEngine(
	embedder embedding.Provider,
	vectorRepo contract.DocumentVectorRepository,
	generator llm.Provider,
	log logger.ILogger,
) *Engine {
	return &Engine{
		embedder:   embedder,
		vectorRepo: vectorRepo,
		generator:  generator,
		logger:     log,
		topK:       DefaultTopK,
	}
}

// Query runs one retrieval-augmented generation round trip. History must
// be the prior turns in chronological order, current query excluded; only
// the most recent DefaultHistoryTurns are forwarded. When retrieval comes
// back empty the engine skips generation and returns the fixed fallback
// with no citations.
func (e *Engine) Query(ctx context.Context, userId uuid.UUID, query string, history []llm.Message) (*Result, error) {
	queryEmbedding, err := e.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := e.vectorRepo.Search(ctx, queryEmbedding, e.topK, contract.VectorFilter{UserId: &userId})
	if err != nil {
		return nil, err
	}

	if len(results) == 0 {
		e.logger.Info("rag", "No relevant chunks found, returning fallback", map[string]interface{}{
			"user_id": userId.String(),
		})
		return &Result{Answer: constant.NoContextReply}, nil
	}

	citations := make([]Citation, len(results))
	for i, r := range results {
		citations[i] = Citation{
			DocumentTitle: r.Record.DocumentTitle,
			ChunkIndex:    r.Record.ChunkIndex,
			Score:         r.Score,
		}
	}

	if len(history) > DefaultHistoryTurns {
		history = history[len(history)-DefaultHistoryTurns:]
	}

	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleSystem,
		Content: buildSystemPrompt(buildContextBlock(results)),
	})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{
		Role:    constant.ChatMessageRoleUser,
		Content: query,
	})

	answer, err := e.generator.Complete(ctx, messages,
		llm.WithTemperature(defaultTemperature),
		llm.WithMaxTokens(defaultMaxTokens),
	)
	if err != nil {
		return nil, err
	}

	return &Result{
		Answer:    answer,
		Citations: citations,
	}, nil
}
