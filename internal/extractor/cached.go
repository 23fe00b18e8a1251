package extractor

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"
)

// Prober returns metadata for a URL.
type Prober interface {
	Probe(ctx context.Context, url string) (*Info, error)
}

// Store is the key/value cache used by Cached.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cached serves probe results from a store, probing on a miss.
type Cached struct {
	next  Prober
	store Store
	ttl   time.Duration
	log   *slog.Logger
}

// NewCached wraps next with a cache.
func NewCached(next Prober, store Store, ttl time.Duration, log *slog.Logger) *Cached {
	if log == nil {
		log = slog.Default()
	}
	return &Cached{next: next, store: store, ttl: ttl, log: log}
}

func cacheKey(url string) string {
	return "probe:" + strings.TrimSpace(url)
}

// Probe returns the cached info for url or probes and caches it.
// Failures are never cached.
func (c *Cached) Probe(ctx context.Context, url string) (*Info, error) {
	key := cacheKey(url)

	if data, ok := c.store.Get(ctx, key); ok {
		var info Info
		if err := json.Unmarshal(data, &info); err == nil {
			c.log.Debug("probe cache hit", "url", url)
			return &info, nil
		}
		c.log.Warn("discarding unreadable cache entry", "url", url)
	}

	info, err := c.next.Probe(ctx, url)
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(info)
	if err != nil {
		c.log.Warn("probe cache encode failed", "url", url, "error", err)
		return info, nil
	}
	if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
		c.log.Warn("probe cache write failed", "url", url, "error", err)
	}
	return info, nil
}

// Forget drops the cached info for url, so the next Probe asks the extractor
// again.
func (c *Cached) Forget(ctx context.Context, url string) error {
	return c.store.Delete(ctx, cacheKey(url))
}
