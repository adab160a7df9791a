// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"researchoffice/internal/middleware"
)

// maxJSONBody bounds JSON request bodies.
const maxJSONBody = 1 << 20

// API groups the JSON endpoints under /api.
type API struct {
	*Deps
}

// NewAPI creates the API handler group.
func NewAPI(deps *Deps) *API {
	return &API{Deps: deps}
}

// writeJSON encodes v with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("json encode failed", "error", err)
	}
}

// writeError writes {"error": msg}.
func writeError(w http.ResponseWriter, status int, msg string) {
	middleware.WriteJSONError(w, status, msg)
}

// internalError logs err and answers a generic 500.
func internalError(w http.ResponseWriter, r *http.Request, op string, err error) {
	slog.Error(op+" failed",
		"method", r.Method,
		"path", r.URL.Path,
		"error", err,
	)
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

// decodeJSON reads a bounded JSON body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("decode body: %w", err)
	}
	return nil
}

// urlID parses the {id} URL parameter.
func urlID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	return id, err == nil
}

// invalidate clears cached pages after a mutation and records it in the
// cache log under the acting user.
func (d *Deps) invalidate(r *http.Request, path, scope string) {
	if d.Pages != nil {
		d.Pages.Invalidate(r.Context(), path, scope)
	}
	if d.CacheLog != nil {
		var actor *uuid.UUID
		if sess := middleware.SessionFromCtx(r.Context()); sess != nil {
			id := sess.UserID
			actor = &id
		}
		d.CacheLog.Log(path, scope, actor)
	}
}

// signOut ends every session of a user whose privileges just changed.
// Failures are logged; the change itself already succeeded.
func (d *Deps) signOut(r *http.Request, userID uuid.UUID) {
	if d.Sessions == nil {
		return
	}
	n, err := d.Sessions.DestroyUser(r.Context(), userID)
	if err != nil {
		slog.Warn("sign out user failed", "user", userID, "error", err)
		return
	}
	slog.Info("user signed out everywhere", "user", userID, "sessions", n)
}
