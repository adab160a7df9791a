// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"researchoffice/internal/cache"
	"researchoffice/internal/imaging"
	"researchoffice/internal/middleware"
	"researchoffice/internal/models"
	"researchoffice/internal/storage"
	"researchoffice/internal/store"
)

// Multipart field prefixes of the content form.
const (
	contentFieldPrefix = "content_"
	iconFieldPrefix    = "file_icon_"
	maxContentForm     = 20 << 20
)

// ListUsers returns every user. Password hashes and TOTP secrets never
// leave the server.
func (a *API) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := a.Users.List()
	if err != nil {
		internalError(w, r, "list users", err)
		return
	}
	if users == nil {
		users = []models.User{}
	}
	writeJSON(w, http.StatusOK, users)
}

// UpdateUserRole changes a user's role. An admin cannot demote themself,
// which keeps at least the acting admin in place. The target's sessions
// are ended so the new role applies from their next sign-in.
func (a *API) UpdateUserRole(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req struct {
		ID   string      `json:"id"`
		Role models.Role `json:"role"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if req.ID == "" || req.Role == "" {
		writeError(w, http.StatusBadRequest, "Missing id or role")
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid role")
		return
	}
	if id == sess.UserID && req.Role != models.RoleAdmin {
		writeError(w, http.StatusBadRequest, "Cannot remove your own admin role")
		return
	}

	user, err := a.Users.UpdateRole(id, req.Role)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		internalError(w, r, "update user role", err)
		return
	}

	if id != sess.UserID {
		a.signOut(r, id)
	}
	slog.Info("user role changed", "user", user.ID, "role", user.Role, "by", sess.UserID)
	writeJSON(w, http.StatusOK, user)
}

// ResetUserTwoFA clears a user's TOTP enrollment so they can sign in with
// the password alone and enroll again.
func (a *API) ResetUserTwoFA(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid id")
		return
	}
	if err := a.Users.ResetTOTP(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		internalError(w, r, "reset 2fa", err)
		return
	}
	a.signOut(r, id)

	slog.Info("user 2fa reset", "user", id, "by", middleware.SessionFromCtx(r.Context()).UserID)
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// SyncIndex rebuilds both search indexes from the database.
func (a *API) SyncIndex(w http.ResponseWriter, r *http.Request) {
	news, err := a.News.List(true)
	if err != nil {
		internalError(w, r, "load news for reindex", err)
		return
	}
	papers, err := a.Research.List()
	if err != nil {
		internalError(w, r, "load research for reindex", err)
		return
	}

	report, err := a.Indexer.Reindex(r.Context(), news, papers)
	if err != nil {
		internalError(w, r, "reindex", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"newsCount":     report.News,
		"researchCount": report.Research,
		"researchError": report.ResearchError,
	})
}

// ClearCache invalidates cached pages. Body {path?, type?}: type "layout"
// (the default) clears path and everything below it, "page" only path.
// The dashboard is always cleared as well.
func (a *API) ClearCache(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Path string `json:"path"`
		Type string `json:"type"`
	}
	if r.ContentLength != 0 {
		if err := decodeJSON(w, r, &req); err != nil && !errors.Is(err, io.EOF) {
			writeError(w, http.StatusBadRequest, "Invalid JSON body")
			return
		}
	}
	if req.Path == "" {
		req.Path = "/"
	}
	if req.Type == "" {
		req.Type = cache.ScopeLayout
	}
	if req.Type != cache.ScopeLayout && req.Type != cache.ScopePage {
		writeError(w, http.StatusBadRequest, "type must be layout or page")
		return
	}
	if !strings.HasPrefix(req.Path, "/") {
		writeError(w, http.StatusBadRequest, "path must start with /")
		return
	}

	path := cache.NormalizePath(req.Path)
	a.invalidate(r, path, req.Type)
	a.invalidate(r, "/dashboard", cache.ScopeLayout)

	writeJSON(w, http.StatusOK, map[string]any{
		"revalidated": true,
		"path":        path,
		"type":        req.Type,
		"now":         a.now().UnixMilli(),
	})
}

// UpdateContent saves the content form. Icon uploads (file_icon_<key>) are
// stored first; each content_<key> value is then written, replaced by the
// uploaded icon path when one was stored for the same key. Keys are
// written in sorted order and an unknown key stops the request with 404,
// leaving earlier writes committed. An unknown icon key is rejected before
// anything is stored.
func (a *API) UpdateContent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxContentForm)
	if err := r.ParseMultipartForm(maxContentForm); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	icons := make(map[string]*multipart.FileHeader)
	for field, headers := range r.MultipartForm.File {
		key, ok := strings.CutPrefix(field, iconFieldPrefix)
		if !ok || key == "" || len(headers) == 0 || headers[0].Size == 0 {
			continue
		}
		icons[key] = headers[0]
	}

	// Every icon key is checked before any file is stored so a bad key
	// leaves no orphan upload behind.
	for key := range icons {
		item, err := a.Content.FindByKey(key)
		if err != nil {
			internalError(w, r, "find content", err)
			return
		}
		if item == nil {
			writeError(w, http.StatusNotFound, "Unknown content key: "+key)
			return
		}
	}

	iconPaths := make(map[string]string, len(icons))
	for key, fh := range icons {
		path, err := a.saveIcon(r, key, fh.Filename, fh.Header.Get("Content-Type"), fh.Open)
		if err != nil {
			internalError(w, r, "save icon", err)
			return
		}
		iconPaths[key] = path
	}

	values := make(map[string]string)
	for field, vals := range r.MultipartForm.Value {
		if key, ok := strings.CutPrefix(field, contentFieldPrefix); ok && key != "" && len(vals) > 0 {
			values[key] = vals[0]
		}
	}
	for key, path := range iconPaths {
		values[key] = path
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if err := a.Content.UpdateValue(key, values[key]); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				writeError(w, http.StatusNotFound, "Unknown content key: "+key)
				return
			}
			internalError(w, r, "update content", err)
			return
		}
	}

	// Every public page renders the navigation and theme.
	a.invalidate(r, "/", cache.ScopeLayout)
	a.invalidate(r, "/dashboard/content", cache.ScopePage)

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "updated": len(keys)})
}

// saveIcon stores one uploaded icon as icons/<key>-<epochMillis><ext>,
// downscaling raster images wider than imaging.IconMaxWidth.
func (a *API) saveIcon(r *http.Request, key, filename, contentType string, open func() (multipart.File, error)) (string, error) {
	f, err := open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	ext := strings.ToLower(filepath.Ext(filename))
	fit, err := imaging.FitWidth(data, imaging.IconMaxWidth)
	if err != nil {
		return "", err
	}
	if fit.Resized {
		data, ext, contentType = fit.Data, fit.Ext, fit.ContentType
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	return a.Files.Save(r.Context(), storage.IconKey(key, a.now(), ext), contentType, data)
}
