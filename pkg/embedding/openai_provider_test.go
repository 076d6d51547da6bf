package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingServerRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

func newEmbeddingServer(t *testing.T, requests *int32, fn func(req embeddingServerRequest, w http.ResponseWriter)) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(requests, 1)
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingServerRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		fn(req, w)
	}))
}

func writeEmbeddings(w http.ResponseWriter, vectors map[int][]float32) {
	type item struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	}
	var data []item
	for i, v := range vectors {
		data = append(data, item{Index: i, Embedding: v})
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"data": data})
}

func TestOpenAIEmbed(t *testing.T) {
	var requests int32
	srv := newEmbeddingServer(t, &requests, func(req embeddingServerRequest, w http.ResponseWriter) {
		require.Len(t, req.Input, 1)
		writeEmbeddings(w, map[int][]float32{0: {3, 4}})
	})
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "")
	p.BaseURL = srv.URL
	assert.Equal(t, "text-embedding-ada-002", p.Model)

	vec, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)

	// Vectors come back L2-normalized.
	require.Len(t, vec, 2)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
}

func TestOpenAIEmbedTruncatesLongInput(t *testing.T) {
	var requests int32
	srv := newEmbeddingServer(t, &requests, func(req embeddingServerRequest, w http.ResponseWriter) {
		require.Len(t, req.Input, 1)
		assert.Len(t, req.Input[0], MaxInputChars)
		writeEmbeddings(w, map[int][]float32{0: {1}})
	})
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "")
	p.BaseURL = srv.URL

	_, err := p.Embed(context.Background(), strings.Repeat("x", MaxInputChars+500))
	require.NoError(t, err)
}

func TestOpenAIEmbedBatchSplitsBatches(t *testing.T) {
	var requests int32
	srv := newEmbeddingServer(t, &requests, func(req embeddingServerRequest, w http.ResponseWriter) {
		assert.LessOrEqual(t, len(req.Input), BatchSize)
		vectors := make(map[int][]float32, len(req.Input))
		for i := range req.Input {
			vectors[i] = []float32{float32(len(req.Input[i]))}
		}
		writeEmbeddings(w, vectors)
	})
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "")
	p.BaseURL = srv.URL

	texts := make([]string, 45)
	for i := range texts {
		texts[i] = strings.Repeat("a", i+1)
	}

	vectors, err := p.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, 45)
	// 45 inputs in sub-batches of 20 is 3 requests.
	assert.Equal(t, int32(3), atomic.LoadInt32(&requests))
}

func TestOpenAIEmbedBatchPreservesInputOrder(t *testing.T) {
	var requests int32
	srv := newEmbeddingServer(t, &requests, func(req embeddingServerRequest, w http.ResponseWriter) {
		vectors := make(map[int][]float32, len(req.Input))
		for i := range req.Input {
			// Distinguishable per input: the ratio of the two
			// components recovers the input length.
			vectors[i] = []float32{float32(len(req.Input[i])), 1}
		}
		writeEmbeddings(w, vectors)
	})
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "")
	p.BaseURL = srv.URL

	texts := make([]string, 25)
	for i := range texts {
		texts[i] = strings.Repeat("a", i+1)
	}

	vectors, err := p.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, vectors, len(texts))

	for i, text := range texts {
		single, err := p.Embed(context.Background(), text)
		require.NoError(t, err)
		assert.Equal(t, single, vectors[i], "batch vector %d must match single embed of the same text", i)
		assert.InDelta(t, float64(i+1), float64(vectors[i][0]/vectors[i][1]), 1e-3)
	}
}

func TestOpenAIEmbedBatchAbortsOnFailure(t *testing.T) {
	var requests int32
	srv := newEmbeddingServer(t, &requests, func(req embeddingServerRequest, w http.ResponseWriter) {
		if atomic.LoadInt32(&requests) > 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		vectors := make(map[int][]float32, len(req.Input))
		for i := range req.Input {
			vectors[i] = []float32{1}
		}
		writeEmbeddings(w, vectors)
	})
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "")
	p.BaseURL = srv.URL

	texts := make([]string, 25)
	for i := range texts {
		texts[i] = "text"
	}

	vectors, err := p.EmbedBatch(context.Background(), texts)
	assert.Nil(t, vectors)

	var embErr *EmbeddingError
	require.True(t, errors.As(err, &embErr))
}

func TestOpenAIEmbedCountMismatch(t *testing.T) {
	var requests int32
	srv := newEmbeddingServer(t, &requests, func(req embeddingServerRequest, w http.ResponseWriter) {
		writeEmbeddings(w, map[int][]float32{})
	})
	defer srv.Close()

	p := NewOpenAIProvider("test-key", "")
	p.BaseURL = srv.URL

	_, err := p.Embed(context.Background(), "hello")
	var embErr *EmbeddingError
	require.True(t, errors.As(err, &embErr))
}
