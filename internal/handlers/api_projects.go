// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"researchoffice/internal/middleware"
	"researchoffice/internal/models"
	"researchoffice/internal/store"
)

// ListProjects returns the caller's projects, or every project with owner
// details for reviewers.
func (a *API) ListProjects(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var owner *uuid.UUID
	if !sess.Can(models.CapReviewProjects) {
		owner = &sess.UserID
	}
	projects, err := a.Projects.List(owner)
	if err != nil {
		internalError(w, r, "list projects", err)
		return
	}
	if projects == nil {
		projects = []models.Project{}
	}
	writeJSON(w, http.StatusOK, projects)
}

// CreateProject submits a project for review. New projects always start
// PENDING with a freshly generated code.
func (a *API) CreateProject(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if msg := validateProject(req.Title, req.Description); msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	project, err := a.Projects.Create(sess.UserID, strings.TrimSpace(req.Title), req.Description)
	if err != nil {
		internalError(w, r, "create project", err)
		return
	}
	writeJSON(w, http.StatusCreated, project)
}

// UpdateProjectStatus moves a project to any status of the workflow.
func (a *API) UpdateProjectStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		writeError(w, http.StatusNotFound, "Not Found")
		return
	}

	var req struct {
		Status models.ProjectStatus `json:"status"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid status")
		return
	}

	project, err := a.Projects.UpdateStatus(id, req.Status)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not Found")
			return
		}
		internalError(w, r, "update project status", err)
		return
	}
	writeJSON(w, http.StatusOK, project)
}
