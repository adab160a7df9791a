// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"researchoffice/internal/cache"
	"researchoffice/internal/metrics"
	"researchoffice/internal/models"
	"researchoffice/internal/storage"
	"researchoffice/internal/store"
)

// maxUploadSize bounds research uploads.
const maxUploadSize = 50 << 20

// dateLayout is the format of the upload form's date field.
const dateLayout = "2006-01-02"

// Upload stores a research file, inserts its row and queues indexing.
// Multipart fields: file, title, author, abstract, date (YYYY-MM-DD).
func (a *API) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	author := strings.TrimSpace(r.FormValue("author"))
	abstract := strings.TrimSpace(r.FormValue("abstract"))
	dateStr := strings.TrimSpace(r.FormValue("date"))

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "File is required.")
		return
	}
	defer file.Close()

	if msg := validateResearch(title, author, abstract); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "Date is required.")
		return
	}
	pubDate, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		internalError(w, r, "read upload", err)
		return
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	path, err := a.Files.Save(r.Context(), storage.ResearchKey(pubDate, header.Filename), contentType, data)
	if err != nil {
		internalError(w, r, "save upload", err)
		return
	}

	paper := &models.ResearchPaper{
		Title:    title,
		Author:   author,
		Abstract: abstract,
		FilePath: path,
	}
	paper.SetPublicationDate(pubDate)

	if err := a.Research.Create(paper); err != nil {
		if rmErr := a.Files.Remove(r.Context(), path); rmErr != nil {
			slog.Warn("orphaned upload", "path", path, "error", rmErr)
		}
		internalError(w, r, "create research paper", err)
		return
	}

	a.Indexer.IndexResearchAsync(*paper)
	a.invalidate(r, "/repository", cache.ScopeLayout)

	slog.Info("research uploaded", "id", paper.ID, "path", path)
	writeJSON(w, http.StatusCreated, paper)
}

// DeleteResearch removes a paper: stored file, then index document, then
// row. Only the row delete can fail the request.
func (a *API) DeleteResearch(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	paper, err := a.Research.FindByID(id)
	if err != nil {
		internalError(w, r, "find research paper", err)
		return
	}
	if paper == nil {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	if paper.FilePath != "" {
		if err := a.Files.Remove(r.Context(), paper.FilePath); err != nil {
			metrics.FileCleanupFailures.Inc()
			slog.Warn("research file removal failed", "id", id, "path", paper.FilePath, "error", err)
		}
	}

	a.Indexer.RemoveResearch(r.Context(), id)

	if err := a.Research.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		internalError(w, r, "delete research paper", err)
		return
	}

	a.invalidate(r, "/repository", cache.ScopeLayout)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
