// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// page.go provides a Valkey-backed full-page HTML cache keyed by request
// path. Public pages are stored after rendering so later anonymous requests
// skip the database reads and template execution. Mutations invalidate a
// single path or a whole path subtree.
package cache

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"researchoffice/internal/metrics"
)

const (
	// pageKeyPrefix is the Valkey key prefix for cached pages.
	pageKeyPrefix = "page:"

	// DefaultPageTTL is how long a rendered page stays cached.
	DefaultPageTTL = 5 * time.Minute
)

// Invalidation scopes, as accepted by the admin cache endpoint.
const (
	ScopePage   = "page"
	ScopeLayout = "layout"
)

// PageCache manages full-page HTML caching in Valkey.
type PageCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewPageCache creates a new page cache backed by the given Valkey client.
func NewPageCache(client *redis.Client, ttl time.Duration) *PageCache {
	if ttl == 0 {
		ttl = DefaultPageTTL
	}
	return &PageCache{client: client, ttl: ttl}
}

// NormalizePath cleans a request path into a cache key: leading slash,
// no trailing slash except for the root.
func NormalizePath(path string) string {
	if path == "" {
		return "/"
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			path = "/"
		}
	}
	return path
}

// Get retrieves cached HTML for a path.
func (pc *PageCache) Get(ctx context.Context, path string) ([]byte, bool) {
	key := pageKeyPrefix + NormalizePath(path)
	val, err := pc.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("page cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("page cache hit", "key", key)
	return val, true
}

// Set stores rendered HTML for a path with the configured TTL.
func (pc *PageCache) Set(ctx context.Context, path string, html []byte) {
	key := pageKeyPrefix + NormalizePath(path)
	if err := pc.client.Set(ctx, key, html, pc.ttl).Err(); err != nil {
		slog.Warn("page cache set error", "key", key, "error", err)
	}
}

// Invalidate clears path using scope: ScopePage removes the single page,
// anything else removes the page and every page below it.
func (pc *PageCache) Invalidate(ctx context.Context, path, scope string) {
	if scope == ScopePage {
		pc.InvalidatePath(ctx, path)
		return
	}
	pc.InvalidateTree(ctx, path)
}

// InvalidatePath removes a single cached page.
func (pc *PageCache) InvalidatePath(ctx context.Context, path string) {
	path = NormalizePath(path)
	if err := pc.client.Del(ctx, pageKeyPrefix+path).Err(); err != nil {
		slog.Warn("page cache invalidate error", "path", path, "error", err)
		return
	}
	metrics.PageCacheInvalidations.WithLabelValues(ScopePage).Inc()
	slog.Debug("page cache invalidated", "path", path)
}

// InvalidateTree removes the page at path and every page below it.
// The root path clears the whole cache.
func (pc *PageCache) InvalidateTree(ctx context.Context, path string) {
	path = NormalizePath(path)
	if path == "/" {
		pc.InvalidateAll(ctx)
		return
	}
	pc.InvalidatePath(ctx, path)
	deleted := pc.deleteMatching(ctx, pageKeyPrefix+globEscape(path)+"/*")
	metrics.PageCacheInvalidations.WithLabelValues(ScopeLayout).Inc()
	slog.Debug("page cache subtree invalidated", "path", path, "deleted", deleted)
}

// InvalidateAll removes all cached pages by scanning for the prefix.
func (pc *PageCache) InvalidateAll(ctx context.Context) {
	deleted := pc.deleteMatching(ctx, pageKeyPrefix+"*")
	metrics.PageCacheInvalidations.WithLabelValues("all").Inc()
	if deleted > 0 {
		slog.Info("page cache fully cleared", "deleted", deleted)
	}
}

func (pc *PageCache) deleteMatching(ctx context.Context, pattern string) int {
	var cursor uint64
	var deleted int
	for {
		keys, nextCursor, err := pc.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			slog.Warn("page cache scan error", "pattern", pattern, "error", err)
			return deleted
		}
		if len(keys) > 0 {
			if err := pc.client.Del(ctx, keys...).Err(); err != nil {
				slog.Warn("page cache bulk delete error", "error", err)
			} else {
				deleted += len(keys)
			}
		}
		cursor = nextCursor
		if cursor == 0 {
			return deleted
		}
	}
}

// globEscape escapes the SCAN MATCH metacharacters in s.
func globEscape(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[', ']', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
