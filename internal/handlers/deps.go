// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers: the JSON API, the public
// and dashboard pages, and authentication. Handler groups receive their
// dependencies once at construction.
package handlers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"researchoffice/internal/models"
	"researchoffice/internal/render"
	"researchoffice/internal/search"
	"researchoffice/internal/session"
	"researchoffice/internal/storage"
	"researchoffice/internal/store"
)

// NewsStore is the news persistence used by handlers.
type NewsStore interface {
	List(publishedOnly bool) ([]models.NewsArticle, error)
	FindByID(id uuid.UUID) (*models.NewsArticle, error)
	Create(a *models.NewsArticle) error
	Update(a *models.NewsArticle) error
	Delete(id uuid.UUID) error
}

// ResearchStore is the research paper persistence used by handlers.
type ResearchStore interface {
	Create(p *models.ResearchPaper) error
	FindByID(id uuid.UUID) (*models.ResearchPaper, error)
	Delete(id uuid.UUID) error
	List() ([]models.ResearchPaper, error)
	ListByYear(year int) ([]models.ResearchPaper, error)
	ListYears() ([]int, error)
}

// ProjectStore is the project persistence used by handlers.
type ProjectStore interface {
	Create(ownerID uuid.UUID, title, description string) (*models.Project, error)
	List(ownerID *uuid.UUID) ([]models.Project, error)
	UpdateStatus(id uuid.UUID, status models.ProjectStatus) (*models.Project, error)
}

// UserStore is the user persistence used by handlers.
type UserStore interface {
	FindByEmail(email string) (*models.User, error)
	FindByID(id uuid.UUID) (*models.User, error)
	List() ([]models.User, error)
	Create(email, password, name string, role models.Role) (*models.User, error)
	UpdateRole(id uuid.UUID, role models.Role) (*models.User, error)
	SetTOTPSecret(id uuid.UUID, secret string) error
	EnableTOTP(id uuid.UUID) error
	ResetTOTP(id uuid.UUID) error
	CheckPassword(u *models.User, password string) bool
}

// ContentStore is the site content persistence used by handlers.
type ContentStore interface {
	ListAll() ([]models.ContentItem, error)
	Values() (models.ContentValues, error)
	FindByKey(key string) (*models.ContentItem, error)
	UpdateValue(key, value string) error
}

// CacheLog records page cache invalidations.
type CacheLog interface {
	Log(path, scope string, actorID *uuid.UUID)
	RecentEntries(limit int) ([]store.CacheLogEntry, error)
}

// PageCache stores rendered public pages by path.
type PageCache interface {
	Get(ctx context.Context, path string) ([]byte, bool)
	Set(ctx context.Context, path string, html []byte)
	Invalidate(ctx context.Context, path, scope string)
}

// Deps are the process-wide singletons shared by the handler groups.
type Deps struct {
	Renderer *render.Renderer
	Sessions *session.Store

	News     NewsStore
	Research ResearchStore
	Projects ProjectStore
	Users    UserStore
	Content  ContentStore
	CacheLog CacheLog

	Pages    PageCache
	Files    storage.Store
	Indexer  *search.Indexer
	Searcher *search.Searcher

	// Now defaults to time.Now.
	Now func() time.Time
}

func (d *Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
