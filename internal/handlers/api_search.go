// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"net/http"
)

// Search queries research and news together. Each hit carries a "type"
// field of "research" or "news".
func (a *API) Search(w http.ResponseWriter, r *http.Request) {
	hits, err := a.Searcher.Unified(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		internalError(w, r, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hits": hits})
}

// SearchResearch queries only the research index and returns the engine's
// result unchanged.
func (a *API) SearchResearch(w http.ResponseWriter, r *http.Request) {
	res, err := a.Searcher.Research(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		internalError(w, r, "research search", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
