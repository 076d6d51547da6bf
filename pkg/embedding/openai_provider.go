package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// OpenAIProvider implements Provider against the OpenAI embeddings API.
type OpenAIProvider struct {
	BaseURL string
	APIKey  string
	Model   string
	Client  *http.Client
}

var _ Provider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	if model == "" {
		model = "text-embedding-ada-002"
	}
	return &OpenAIProvider{
		BaseURL: "https://api.openai.com/v1",
		APIKey:  apiKey,
		Model:   model,
		Client: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

type openAIEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.request(ctx, []string{truncate(text)})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	all := make([][]float32, 0, len(texts))

	for i := 0; i < len(texts); i += BatchSize {
		end := i + BatchSize
		if end > len(texts) {
			end = len(texts)
		}

		batch := make([]string, end-i)
		for j, text := range texts[i:end] {
			batch[j] = truncate(text)
		}

		vectors, err := p.request(ctx, batch)
		if err != nil {
			return nil, err
		}
		all = append(all, vectors...)
	}

	return all, nil
}

func (p *OpenAIProvider) request(ctx context.Context, input []string) ([][]float32, error) {
	payload, err := json.Marshal(openAIEmbeddingRequest{
		Model: p.Model,
		Input: input,
	})
	if err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("marshal request: %w", err)}
	}

	url := p.BaseURL + "/embeddings"
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(payload))
	if err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("openai request failed: %w", err)}
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &EmbeddingError{Err: fmt.Errorf("openai error: status %d, body: %s", resp.StatusCode, string(bodyBytes))}
	}

	var parsed openAIEmbeddingResponse
	if err := json.Unmarshal(bodyBytes, &parsed); err != nil {
		return nil, &EmbeddingError{Err: fmt.Errorf("unmarshal response: %w", err)}
	}

	if len(parsed.Data) != len(input) {
		return nil, &EmbeddingError{Err: fmt.Errorf("openai returned %d embeddings for %d inputs", len(parsed.Data), len(input))}
	}

	// The API documents data as input-ordered, but it also carries an
	// index field. Trust the index.
	vectors := make([][]float32, len(input))
	for _, item := range parsed.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, &EmbeddingError{Err: fmt.Errorf("openai returned out-of-range index %d", item.Index)}
		}
		vectors[item.Index] = normalizeVector(item.Embedding)
	}
	return vectors, nil
}
