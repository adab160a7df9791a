// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package search keeps denormalized copies of research papers and published
// news in a full-text index and queries them. Index writes are best effort:
// the database row is authoritative and a failed index write is logged,
// counted and otherwise ignored.
package search

import (
	"context"
	"time"

	"researchoffice/internal/models"
)

// Index names.
const (
	IndexResearch = "research"
	IndexNews     = "news"
)

// PrimaryKey is the document identifier field in every index.
const PrimaryKey = "id"

// Backend is the subset of a full-text engine the application needs.
type Backend interface {
	// AddDocuments inserts or replaces whole documents.
	AddDocuments(ctx context.Context, index string, docs any) error
	// UpdateDocuments inserts documents or merges fields into existing ones.
	UpdateDocuments(ctx context.Context, index string, docs any) error
	DeleteDocument(ctx context.Context, index, id string) error
	Search(ctx context.Context, index, query string, q Query) (*Result, error)
	Configure(ctx context.Context, index string, s Settings) error
}

// Query holds per-request search options.
type Query struct {
	Limit     int64
	Highlight []string
}

// Settings are the index attributes applied during a full reindex.
type Settings struct {
	Searchable []string
	Sortable   []string
}

// Hit is one raw search hit, including the engine's _formatted highlights.
type Hit map[string]any

// Result is the raw response of a single-index search.
type Result struct {
	Hits               []Hit  `json:"hits"`
	Query              string `json:"query"`
	Limit              int64  `json:"limit"`
	Offset             int64  `json:"offset"`
	EstimatedTotalHits int64  `json:"estimatedTotalHits"`
	ProcessingTimeMs   int64  `json:"processingTimeMs"`
}

// ResearchDocument is the indexed projection of a research paper.
type ResearchDocument struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Author          string `json:"author"`
	Abstract        string `json:"abstract"`
	Year            int    `json:"year"`
	Month           int    `json:"month"`
	PublicationDate string `json:"publicationDate"`
	FilePath        string `json:"filePath"`
}

// NewsDocument is the indexed projection of a published news article.
type NewsDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Content     string `json:"content"`
	PublishDate string `json:"publishDate"`
	ImageURL    string `json:"imageUrl"`
}

// ResearchDoc projects a paper into its index document.
func ResearchDoc(p models.ResearchPaper) ResearchDocument {
	return ResearchDocument{
		ID:              p.ID.String(),
		Title:           p.Title,
		Author:          p.Author,
		Abstract:        p.Abstract,
		Year:            p.Year,
		Month:           p.Month,
		PublicationDate: p.PublicationDate.UTC().Format(time.RFC3339),
		FilePath:        p.FilePath,
	}
}

// NewsDoc projects an article into its index document.
func NewsDoc(a models.NewsArticle) NewsDocument {
	return NewsDocument{
		ID:          a.ID.String(),
		Title:       a.Title,
		Content:     a.Content,
		PublishDate: a.PublishDate.UTC().Format(time.RFC3339),
		ImageURL:    a.ImageURL,
	}
}

// ResearchSettings are applied to the research index on reindex.
var ResearchSettings = Settings{
	Searchable: []string{"title", "abstract", "author"},
	Sortable:   []string{"publicationDate", "year"},
}

// NewsSettings are applied to the news index on reindex.
var NewsSettings = Settings{
	Searchable: []string{"title", "content"},
	Sortable:   []string{"publishDate"},
}
