// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// cache_log.go records page cache invalidations for the admin system page.
// Each entry captures which path was cleared, how broadly, and by whom.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// CacheLogStore handles cache invalidation log operations.
type CacheLogStore struct {
	db *sql.DB
}

// NewCacheLogStore creates a new CacheLogStore.
func NewCacheLogStore(db *sql.DB) *CacheLogStore {
	return &CacheLogStore{db: db}
}

// Log records a cache invalidation event. Failures are logged only.
func (s *CacheLogStore) Log(path, scope string, actorID *uuid.UUID) {
	_, err := s.db.Exec(`
		INSERT INTO cache_invalidation_log (path, scope, actor_id)
		VALUES ($1, $2, $3)
	`, path, scope, actorID)
	if err != nil {
		slog.Warn("failed to log cache invalidation",
			"path", path,
			"scope", scope,
			"error", err,
		)
		return
	}
	slog.Debug("cache invalidation logged", "path", path, "scope", scope)
}

// RecentEntries returns the most recent cache invalidation events.
func (s *CacheLogStore) RecentEntries(limit int) ([]CacheLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, path, scope, actor_id, invalidated_at
		FROM cache_invalidation_log
		ORDER BY invalidated_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query cache log: %w", err)
	}
	defer rows.Close()

	var entries []CacheLogEntry
	for rows.Next() {
		var e CacheLogEntry
		if err := rows.Scan(&e.ID, &e.Path, &e.Scope, &e.ActorID, &e.InvalidatedAt); err != nil {
			return nil, fmt.Errorf("scan cache log: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CacheLogEntry represents a single cache invalidation event.
type CacheLogEntry struct {
	ID            int64
	Path          string
	Scope         string
	ActorID       *uuid.UUID
	InvalidatedAt time.Time
}
