// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// NewsArticle is a news item. Only published articles appear on the public
// site and in the search index.
type NewsArticle struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	PublishDate time.Time `json:"publishDate"`
	Published   bool      `json:"published"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// NewsPatch carries a partial update. Nil fields are left unchanged.
type NewsPatch struct {
	Title       *string    `json:"title"`
	Content     *string    `json:"content"`
	ImageURL    *string    `json:"imageUrl"`
	PublishDate *time.Time `json:"publishDate"`
	Published   *bool      `json:"published"`
}

// Apply copies every set field of the patch onto the article.
func (p NewsPatch) Apply(a *NewsArticle) {
	if p.Title != nil {
		a.Title = *p.Title
	}
	if p.Content != nil {
		a.Content = *p.Content
	}
	if p.ImageURL != nil {
		a.ImageURL = *p.ImageURL
	}
	if p.PublishDate != nil {
		a.PublishDate = *p.PublishDate
	}
	if p.Published != nil {
		a.Published = *p.Published
	}
}
