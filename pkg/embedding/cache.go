package embedding

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// CachedProvider memoizes single-text embeddings. Repeated chat queries
// ("summarize this", follow-ups) hit the same strings often enough that
// skipping the provider round trip is worth an in-process cache.
// EmbedBatch is not cached: document chunks are embedded once.
type CachedProvider struct {
	inner Provider
	cache *cache.Cache
}

var _ Provider = &CachedProvider{}

func NewCachedProvider(inner Provider) *CachedProvider {
	c := cache.New(1*time.Hour, 10*time.Minute)
	return &CachedProvider{
		inner: inner,
		cache: c,
	}
}

func (p *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if x, found := p.cache.Get(text); found {
		return x.([]float32), nil
	}

	vec, err := p.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	p.cache.Set(text, vec, cache.DefaultExpiration)
	return vec, nil
}

func (p *CachedProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	return p.inner.EmbedBatch(ctx, texts)
}
