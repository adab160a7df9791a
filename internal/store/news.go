// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"researchoffice/internal/models"
)

const newsColumns = `id, title, content, image_url, publish_date, published, created_at, updated_at`

// NewsStore handles news article rows.
type NewsStore struct {
	db *sql.DB
}

// NewNewsStore creates a new NewsStore.
func NewNewsStore(db *sql.DB) *NewsStore {
	return &NewsStore{db: db}
}

func scanNews(row rowScanner, a *models.NewsArticle) error {
	return row.Scan(
		&a.ID, &a.Title, &a.Content, &a.ImageURL,
		&a.PublishDate, &a.Published, &a.CreatedAt, &a.UpdatedAt,
	)
}

// List returns articles ordered by publish date, newest first. When
// publishedOnly is set, drafts are excluded.
func (s *NewsStore) List(publishedOnly bool) ([]models.NewsArticle, error) {
	q := `SELECT ` + newsColumns + ` FROM news`
	if publishedOnly {
		q += ` WHERE published`
	}
	q += ` ORDER BY publish_date DESC`

	rows, err := s.db.Query(q)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	var items []models.NewsArticle
	for rows.Next() {
		var a models.NewsArticle
		if err := scanNews(rows, &a); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// FindByID retrieves an article. Returns nil if not found.
func (s *NewsStore) FindByID(id uuid.UUID) (*models.NewsArticle, error) {
	a := &models.NewsArticle{}
	err := scanNews(s.db.QueryRow(`SELECT `+newsColumns+` FROM news WHERE id = $1`, id), a)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find news: %w", err)
	}
	return a, nil
}

// Create inserts an article and fills in its generated fields.
func (s *NewsStore) Create(a *models.NewsArticle) error {
	err := scanNews(s.db.QueryRow(`
		INSERT INTO news (title, content, image_url, publish_date, published)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+newsColumns,
		a.Title, a.Content, a.ImageURL, a.PublishDate, a.Published,
	), a)
	if err != nil {
		return fmt.Errorf("create news: %w", err)
	}
	return nil
}

// Update writes every mutable field of the article. Returns ErrNotFound
// when the row no longer exists.
func (s *NewsStore) Update(a *models.NewsArticle) error {
	err := scanNews(s.db.QueryRow(`
		UPDATE news
		SET title = $1, content = $2, image_url = $3, publish_date = $4, published = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING `+newsColumns,
		a.Title, a.Content, a.ImageURL, a.PublishDate, a.Published, a.ID,
	), a)
	if err == sql.ErrNoRows {
		return fmt.Errorf("update news: %w", ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("update news: %w", err)
	}
	return nil
}

// Delete removes an article. Returns ErrNotFound if it does not exist.
func (s *NewsStore) Delete(id uuid.UUID) error {
	res, err := s.db.Exec(`DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete news: %w", err)
	}
	return expectAffected(res, "delete news")
}
