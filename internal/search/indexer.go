// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"researchoffice/internal/metrics"
	"researchoffice/internal/models"
)

// backgroundTimeout bounds detached index writes.
const backgroundTimeout = 30 * time.Second

// Indexer mirrors database writes into the search backend. Every method
// swallows backend errors after logging and counting them.
type Indexer struct {
	backend Backend
	bg      sync.WaitGroup
}

// NewIndexer creates an Indexer writing to backend.
func NewIndexer(backend Backend) *Indexer {
	return &Indexer{backend: backend}
}

func (ix *Indexer) fail(index, op, id string, err error) {
	metrics.IndexSyncFailures.WithLabelValues(index, op).Inc()
	slog.Warn("search index sync failed",
		"index", index,
		"op", op,
		"id", id,
		"error", err,
	)
}

// IndexResearch adds a paper's document.
func (ix *Indexer) IndexResearch(ctx context.Context, p models.ResearchPaper) {
	doc := ResearchDoc(p)
	if err := ix.backend.AddDocuments(ctx, IndexResearch, []ResearchDocument{doc}); err != nil {
		ix.fail(IndexResearch, "add", doc.ID, err)
	}
}

// IndexResearchAsync indexes a paper on a detached goroutine so the caller's
// response is not delayed. Wait blocks until all such writes finish.
func (ix *Indexer) IndexResearchAsync(p models.ResearchPaper) {
	ix.bg.Add(1)
	go func() {
		defer ix.bg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
		defer cancel()
		ix.IndexResearch(ctx, p)
	}()
}

// RemoveResearch deletes a paper's document.
func (ix *Indexer) RemoveResearch(ctx context.Context, id uuid.UUID) {
	if err := ix.backend.DeleteDocument(ctx, IndexResearch, id.String()); err != nil {
		ix.fail(IndexResearch, "delete", id.String(), err)
	}
}

// SyncNews makes the index match the article's published flag: published
// articles are upserted and unpublished ones removed.
func (ix *Indexer) SyncNews(ctx context.Context, a models.NewsArticle) {
	if !a.Published {
		ix.RemoveNews(ctx, a.ID)
		return
	}
	doc := NewsDoc(a)
	if err := ix.backend.AddDocuments(ctx, IndexNews, []NewsDocument{doc}); err != nil {
		ix.fail(IndexNews, "add", doc.ID, err)
	}
}

// RemoveNews deletes an article's document.
func (ix *Indexer) RemoveNews(ctx context.Context, id uuid.UUID) {
	if err := ix.backend.DeleteDocument(ctx, IndexNews, id.String()); err != nil {
		ix.fail(IndexNews, "delete", id.String(), err)
	}
}

// Wait blocks until every detached index write has finished.
func (ix *Indexer) Wait() {
	ix.bg.Wait()
}

// ReindexReport summarizes a full reindex.
type ReindexReport struct {
	News          int    `json:"newsCount"`
	Research      int    `json:"researchCount"`
	ResearchError string `json:"researchError,omitempty"`
}

// Reindex pushes every published article and every paper to the backend
// and reapplies index settings. It works against empty or missing indexes.
// A news failure aborts with an error; a research failure is reported in
// the returned report only.
func (ix *Indexer) Reindex(ctx context.Context, news []models.NewsArticle, papers []models.ResearchPaper) (ReindexReport, error) {
	var report ReindexReport

	newsDocs := make([]NewsDocument, 0, len(news))
	for _, a := range news {
		if a.Published {
			newsDocs = append(newsDocs, NewsDoc(a))
		}
	}
	if len(newsDocs) > 0 {
		if err := ix.backend.UpdateDocuments(ctx, IndexNews, newsDocs); err != nil {
			return report, fmt.Errorf("reindex news: %w", err)
		}
	}
	if err := ix.backend.Configure(ctx, IndexNews, NewsSettings); err != nil {
		return report, fmt.Errorf("reindex news settings: %w", err)
	}
	report.News = len(newsDocs)

	researchDocs := make([]ResearchDocument, 0, len(papers))
	for _, p := range papers {
		researchDocs = append(researchDocs, ResearchDoc(p))
	}
	err := func() error {
		if len(researchDocs) > 0 {
			if err := ix.backend.UpdateDocuments(ctx, IndexResearch, researchDocs); err != nil {
				return err
			}
		}
		return ix.backend.Configure(ctx, IndexResearch, ResearchSettings)
	}()
	if err != nil {
		ix.fail(IndexResearch, "reindex", "", err)
		report.ResearchError = err.Error()
		return report, nil
	}
	report.Research = len(researchDocs)

	slog.Info("search index rebuilt", "news", report.News, "research", report.Research)
	return report, nil
}
