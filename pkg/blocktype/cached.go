package blocktype

import (
	"context"
	"time"

	"github.com/anchit2000/flowcanvas/pkg/cache"
	"github.com/anchit2000/flowcanvas/pkg/observability"
)

// CachedSource keeps descriptors fetched from an inner source in a cache.
// Cache failures never fail a fetch; they only cost a refetch.
type CachedSource struct {
	inner Source
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewCachedSource wraps inner with c. A nil keyer uses the default keyer.
func NewCachedSource(inner Source, c cache.Cache, keyer cache.Keyer, ttl time.Duration) *CachedSource {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &CachedSource{inner: inner, cache: c, keyer: keyer, ttl: ttl}
}

// Name implements [Source].
func (s *CachedSource) Name() string { return s.inner.Name() }

// Fetch implements [Source].
func (s *CachedSource) Fetch(ctx context.Context, blockType string) ([]byte, error) {
	key := s.keyer.TemplateKey(s.inner.Name(), blockType)
	hooks := observability.Cache()

	if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
		hooks.OnCacheHit(ctx, "template")
		return data, nil
	}
	hooks.OnCacheMiss(ctx, "template")

	data, err := s.inner.Fetch(ctx, blockType)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, key, data, s.ttl); err == nil {
		hooks.OnCacheSet(ctx, "template", len(data))
	}
	return data, nil
}

// List implements [Source]. Listings are not cached.
func (s *CachedSource) List(ctx context.Context) ([]string, error) {
	return s.inner.List(ctx)
}

var _ Source = (*CachedSource)(nil)
