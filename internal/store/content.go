// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"
	"sort"

	"researchoffice/internal/models"
)

// ContentStore handles the editable key/value rows of the public site.
type ContentStore struct {
	db *sql.DB
}

// NewContentStore creates a new ContentStore with the given database connection.
func NewContentStore(db *sql.DB) *ContentStore {
	return &ContentStore{db: db}
}

// ListAll returns every content row ordered by section, then key.
func (s *ContentStore) ListAll() ([]models.ContentItem, error) {
	rows, err := s.db.Query(`
		SELECT key, section, label, value, type, updated_at
		FROM site_content
		ORDER BY section, key
	`)
	if err != nil {
		return nil, fmt.Errorf("list site content: %w", err)
	}
	defer rows.Close()

	var items []models.ContentItem
	for rows.Next() {
		var it models.ContentItem
		if err := rows.Scan(&it.Key, &it.Section, &it.Label, &it.Value, &it.Type, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan site content: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Values returns all content as a flat key/value map.
func (s *ContentStore) Values() (models.ContentValues, error) {
	items, err := s.ListAll()
	if err != nil {
		return nil, err
	}
	v := make(models.ContentValues, len(items))
	for _, it := range items {
		v[it.Key] = it.Value
	}
	return v, nil
}

// FindByKey retrieves one content row. Returns nil if not found.
func (s *ContentStore) FindByKey(key string) (*models.ContentItem, error) {
	it := &models.ContentItem{}
	err := s.db.QueryRow(`
		SELECT key, section, label, value, type, updated_at
		FROM site_content WHERE key = $1
	`, key).Scan(&it.Key, &it.Section, &it.Label, &it.Value, &it.Type, &it.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find site content: %w", err)
	}
	return it, nil
}

// UpdateValue sets the value of an existing key. Returns ErrNotFound when
// no row has that key; keys are only ever created by seeding.
func (s *ContentStore) UpdateValue(key, value string) error {
	res, err := s.db.Exec(`
		UPDATE site_content SET value = $1, updated_at = NOW() WHERE key = $2
	`, value, key)
	if err != nil {
		return fmt.Errorf("update site content %s: %w", key, err)
	}
	return expectAffected(res, "update site content "+key)
}

// ContentGroup is the rows of one section, for the dashboard editor.
type ContentGroup struct {
	Section models.Section
	Items   []models.ContentItem
}

// GroupBySection groups rows by section. Groups are sorted by section name
// and items inside a group by key.
func GroupBySection(items []models.ContentItem) []ContentGroup {
	bySection := make(map[models.Section][]models.ContentItem)
	for _, it := range items {
		bySection[it.Section] = append(bySection[it.Section], it)
	}

	groups := make([]ContentGroup, 0, len(bySection))
	for sec, its := range bySection {
		sort.Slice(its, func(i, j int) bool { return its[i].Key < its[j].Key })
		groups = append(groups, ContentGroup{Section: sec, Items: its})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Section < groups[j].Section })
	return groups
}
