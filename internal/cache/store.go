package cache

import (
	"context"
	"time"

	"GrestAPI/internal/logger"
)

// Store is the key-value cache collaborator: read a payload, write one with
// a lifetime, and delete every key under a prefix.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, payload []byte, ttl time.Duration) error
	DeleteByPrefix(ctx context.Context, prefix string) error
}

// Gateway owns every cache interaction for one resource. A gateway with no
// key prefix (or no store) is a pure pass-through: reads always miss and
// writes are dropped. Store failures are logged and degrade to misses since
// caching is an optimization, not a correctness dependency.
type Gateway struct {
	store  Store
	prefix string
	ttl    time.Duration
}

func NewGateway(store Store, prefix string, ttl time.Duration) *Gateway {
	return &Gateway{store: store, prefix: prefix, ttl: ttl}
}

func (g *Gateway) Enabled() bool {
	return g != nil && g.store != nil && g.prefix != ""
}

// ListKey derives the list cache key for this gateway's resource.
func (g *Gateway) ListKey(filters, excludes map[string]any, search string, top int, bottom *int, orderBy string, fields []string) string {
	if !g.Enabled() {
		return ""
	}
	return ListKey(g.prefix, filters, excludes, search, top, bottom, orderBy, fields)
}

// ObjectKey derives the object cache key for this gateway's resource.
func (g *Gateway) ObjectKey(pk string, fields []string) string {
	if !g.Enabled() {
		return ""
	}
	return ObjectKey(g.prefix, pk, fields)
}

// ReadThrough returns the cached payload for key, or a miss.
func (g *Gateway) ReadThrough(ctx context.Context, key string) ([]byte, bool) {
	if !g.Enabled() {
		return nil, false
	}
	payload, ok, err := g.store.Get(ctx, key)
	if err != nil {
		logger.Warn("cache_read_failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
		return nil, false
	}
	return payload, ok
}

// Write stores a computed payload under key with the configured lifetime.
func (g *Gateway) Write(ctx context.Context, key string, payload []byte) {
	if !g.Enabled() {
		return
	}
	if err := g.store.Set(ctx, key, payload, g.ttl); err != nil {
		logger.Warn("cache_write_failed", map[string]any{
			"key":   key,
			"error": err.Error(),
		})
	}
}

// InvalidateObject removes every cached shape of one record, regardless of
// field selection.
func (g *Gateway) InvalidateObject(ctx context.Context, pk string) {
	if !g.Enabled() {
		return
	}
	g.deleteByPrefix(ctx, g.prefix+"_object_"+pk+"_")
}

// InvalidateList removes every cached list page for the resource, regardless
// of query shape. Over-invalidation is intentional.
func (g *Gateway) InvalidateList(ctx context.Context) {
	if !g.Enabled() {
		return
	}
	g.deleteByPrefix(ctx, g.prefix+"_list_")
}

func (g *Gateway) deleteByPrefix(ctx context.Context, prefix string) {
	if !g.Enabled() {
		return
	}
	if err := g.store.DeleteByPrefix(ctx, prefix); err != nil {
		logger.Warn("cache_invalidate_failed", map[string]any{
			"prefix": prefix,
			"error":  err.Error(),
		})
	}
}
