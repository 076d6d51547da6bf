package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	embedCalls int
	batchCalls int
	err        error
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.embedCalls++
	if p.err != nil {
		return nil, p.err
	}
	return []float32{float32(len(text))}, nil
}

func (p *countingProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	p.batchCalls++
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = []float32{float32(len(t))}
	}
	return out, nil
}

func TestCachedProviderMemoizesEmbed(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachedProvider(inner)

	first, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	second, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.embedCalls)

	_, err = p.Embed(context.Background(), "different")
	require.NoError(t, err)
	assert.Equal(t, 2, inner.embedCalls)
}

func TestCachedProviderDoesNotCacheErrors(t *testing.T) {
	inner := &countingProvider{err: errors.New("provider down")}
	p := NewCachedProvider(inner)

	_, err := p.Embed(context.Background(), "hello")
	require.Error(t, err)

	inner.err = nil
	vec, err := p.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.NotNil(t, vec)
	assert.Equal(t, 2, inner.embedCalls)
}

func TestCachedProviderBatchPassesThrough(t *testing.T) {
	inner := &countingProvider{}
	p := NewCachedProvider(inner)

	_, err := p.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)
	_, err = p.EmbedBatch(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	assert.Equal(t, 2, inner.batchCalls)
	assert.Equal(t, 0, inner.embedCalls)
}
