package listing

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kyaoi/codepick/internal/tree"
)

// Lister returns the files below a source path.
type Lister interface {
	List(ctx context.Context, sourcePath string) ([]tree.Entry, error)
}

// Refresher is implemented by listers that can bypass cached results.
type Refresher interface {
	Refresh(ctx context.Context, sourcePath string) ([]tree.Entry, error)
}

// Cached keeps recent successful listings in an expiring LRU.
type Cached struct {
	inner Lister
	cache *expirable.LRU[string, []tree.Entry]
}

// NewCached wraps inner with a cache of size entries that expire after ttl.
// A non-positive size disables caching and returns inner unchanged.
func NewCached(inner Lister, size int, ttl time.Duration) Lister {
	if size <= 0 {
		return inner
	}
	return &Cached{
		inner: inner,
		cache: expirable.NewLRU[string, []tree.Entry](size, nil, ttl),
	}
}

// List serves from the cache when possible. Errors are never cached.
func (c *Cached) List(ctx context.Context, sourcePath string) ([]tree.Entry, error) {
	key := strings.TrimSpace(sourcePath)
	if entries, ok := c.cache.Get(key); ok {
		return append([]tree.Entry(nil), entries...), nil
	}
	entries, err := c.inner.List(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, append([]tree.Entry(nil), entries...))
	return entries, nil
}

// Refresh always asks the inner lister and replaces the cached listing. On
// error the stale entry is dropped as well.
func (c *Cached) Refresh(ctx context.Context, sourcePath string) ([]tree.Entry, error) {
	key := strings.TrimSpace(sourcePath)
	c.cache.Remove(key)
	entries, err := c.inner.List(ctx, sourcePath)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, append([]tree.Entry(nil), entries...))
	return entries, nil
}
