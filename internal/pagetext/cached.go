package pagetext

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/virtualmailroom/mailroom/internal/cache"
)

// Cached wraps a Provider with a page-text cache keyed by the source
// file's fingerprint. A cache hit skips text extraction entirely.
type Cached struct {
	inner  Provider
	store  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCached creates a caching provider around inner
func NewCached(inner Provider, store cache.Cache, ttl time.Duration, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cached{
		inner:  inner,
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// PageTexts returns cached page text when the source file is unchanged,
// otherwise delegates to the inner provider and stores the result
func (c *Cached) PageTexts(ctx context.Context, source string) ([]string, error) {
	key, err := cache.SourceKey(source)
	if err != nil {
		return nil, err
	}

	if data, found := c.store.Get(key); found {
		var pages []string
		if err := json.Unmarshal(data, &pages); err == nil {
			c.logger.Debug("page text cache hit", zap.String("source", source))
			return pages, nil
		}
		// corrupt entry, fall through to re-extract
		_ = c.store.Delete(key)
	}

	pages, err := c.inner.PageTexts(ctx, source)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(pages); err == nil {
		if err := c.store.Set(key, data, c.ttl); err != nil {
			c.logger.Warn("page text cache write failed",
				zap.String("source", source),
				zap.Error(err))
		}
	}

	return pages, nil
}
