// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"researchoffice/internal/cache"
	"researchoffice/internal/models"
	"researchoffice/internal/store"
)

// newsRequest is the body of POST /api/news.
type newsRequest struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	ImageURL    string     `json:"imageUrl"`
	Published   *bool      `json:"published"`
	PublishDate *time.Time `json:"publishDate"`
}

// ListNews returns articles newest first. ?published=true restricts the
// list to published articles.
func (a *API) ListNews(w http.ResponseWriter, r *http.Request) {
	publishedOnly, _ := strconv.ParseBool(r.URL.Query().Get("published"))

	articles, err := a.News.List(publishedOnly)
	if err != nil {
		internalError(w, r, "list news", err)
		return
	}
	if articles == nil {
		articles = []models.NewsArticle{}
	}
	writeJSON(w, http.StatusOK, articles)
}

// GetNews returns one article.
func (a *API) GetNews(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	article, err := a.News.FindByID(id)
	if err != nil {
		internalError(w, r, "get news", err)
		return
	}
	if article == nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// CreateNews inserts an article and indexes it when published.
// published defaults to true and publishDate to now.
func (a *API) CreateNews(w http.ResponseWriter, r *http.Request) {
	var req newsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if msg := validateNews(req.Title, req.Content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	article := &models.NewsArticle{
		Title:       req.Title,
		Content:     req.Content,
		ImageURL:    req.ImageURL,
		PublishDate: a.now(),
		Published:   true,
	}
	if req.Published != nil {
		article.Published = *req.Published
	}
	if req.PublishDate != nil {
		article.PublishDate = *req.PublishDate
	}

	if err := a.News.Create(article); err != nil {
		internalError(w, r, "create news", err)
		return
	}

	a.Indexer.SyncNews(r.Context(), *article)
	a.invalidateNews(r)

	writeJSON(w, http.StatusCreated, article)
}

// UpdateNews applies a partial update. The index follows the resulting
// published flag: upsert when published, delete otherwise.
func (a *API) UpdateNews(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	var patch models.NewsPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	article, err := a.News.FindByID(id)
	if err != nil {
		internalError(w, r, "find news", err)
		return
	}
	if article == nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	patch.Apply(article)
	if msg := validateNews(article.Title, article.Content); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	if err := a.News.Update(article); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		internalError(w, r, "update news", err)
		return
	}

	a.Indexer.SyncNews(r.Context(), *article)
	a.invalidateNews(r)

	writeJSON(w, http.StatusOK, article)
}

// DeleteNews removes the row, then the index document.
func (a *API) DeleteNews(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	if err := a.News.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		internalError(w, r, "delete news", err)
		return
	}

	a.Indexer.RemoveNews(r.Context(), id)
	a.invalidateNews(r)

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// invalidateNews clears every page that lists or shows news.
func (a *API) invalidateNews(r *http.Request) {
	a.invalidate(r, "/news", cache.ScopeLayout)
	a.invalidate(r, "/", cache.ScopePage)
}
