// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests:
// in-memory stores, a recording search backend and helpers for requests
// carrying sessions and chi URL parameters.
package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"researchoffice/internal/middleware"
	"researchoffice/internal/models"
	"researchoffice/internal/render"
	"researchoffice/internal/search"
	"researchoffice/internal/session"
	"researchoffice/internal/sitecontent"
	"researchoffice/internal/store"
)

var errBoom = errors.New("boom")

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// ---------- in-memory stores ----------

type memNews struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.NewsArticle
}

func (m *memNews) List(publishedOnly bool) ([]models.NewsArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.NewsArticle
	for _, a := range m.items {
		if !publishedOnly || a.Published {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublishDate.After(out[j].PublishDate) })
	return out, nil
}

func (m *memNews) FindByID(id uuid.UUID) (*models.NewsArticle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *memNews) Create(a *models.NewsArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a.ID = uuid.New()
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.items[a.ID] = *a
	return nil
}

func (m *memNews) Update(a *models.NewsArticle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[a.ID]; !ok {
		return fmt.Errorf("update news: %w", store.ErrNotFound)
	}
	m.items[a.ID] = *a
	return nil
}

func (m *memNews) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("delete news: %w", store.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

type memResearch struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.ResearchPaper
}

func (m *memResearch) Create(p *models.ResearchPaper) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	m.items[p.ID] = *p
	return nil
}

func (m *memResearch) FindByID(id uuid.UUID) (*models.ResearchPaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m *memResearch) Delete(id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return fmt.Errorf("delete research: %w", store.ErrNotFound)
	}
	delete(m.items, id)
	return nil
}

func (m *memResearch) List() ([]models.ResearchPaper, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ResearchPaper
	for _, p := range m.items {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PublicationDate.After(out[j].PublicationDate) })
	return out, nil
}

func (m *memResearch) ListByYear(year int) ([]models.ResearchPaper, error) {
	all, _ := m.List()
	var out []models.ResearchPaper
	for _, p := range all {
		if p.Year == year {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memResearch) ListYears() ([]int, error) {
	all, _ := m.List()
	seen := map[int]bool{}
	var years []int
	for _, p := range all {
		if !seen[p.Year] {
			seen[p.Year] = true
			years = append(years, p.Year)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years, nil
}

type memProjects struct {
	mu    sync.Mutex
	items []models.Project
}

func (m *memProjects) Create(ownerID uuid.UUID, title, description string) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	p := models.Project{
		ID: uuid.New(), Title: title, Description: description, OwnerID: ownerID,
		Code: models.ProjectCode(now.Year(), len(m.items)+1), Status: models.ProjectPending,
		CreatedAt: now, UpdatedAt: now,
	}
	m.items = append(m.items, p)
	return &p, nil
}

func (m *memProjects) List(ownerID *uuid.UUID) ([]models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Project
	for _, p := range m.items {
		if ownerID == nil {
			p.Owner = &models.ProjectOwner{Name: "Owner", Email: "owner@example.com"}
			out = append(out, p)
		} else if p.OwnerID == *ownerID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProjects) UpdateStatus(id uuid.UUID, status models.ProjectStatus) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == id {
			m.items[i].Status = status
			p := m.items[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("update project status: %w", store.ErrNotFound)
}

// memUsers stores the plain password in PasswordHash.
type memUsers struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.User
}

func (m *memUsers) add(email, password string, role models.Role) models.User {
	u, _ := m.Create(email, password, "User "+string(role), role)
	return *u
}

func (m *memUsers) FindByEmail(email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, nil
}

func (m *memUsers) FindByID(id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *memUsers) List() ([]models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.User
	for _, u := range m.items {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (m *memUsers) Create(email, password, name string, role models.Role) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.items {
		if strings.EqualFold(u.Email, email) {
			return nil, fmt.Errorf("create user: %w", store.ErrDuplicate)
		}
	}
	u := models.User{ID: uuid.New(), Email: email, Name: name, PasswordHash: password, Role: role, CreatedAt: time.Now()}
	m.items[u.ID] = u
	return &u, nil
}

func (m *memUsers) UpdateRole(id uuid.UUID, role models.Role) (*models.User, error) {
	return m.mutate(id, func(u *models.User) { u.Role = role })
}

func (m *memUsers) SetTOTPSecret(id uuid.UUID, secret string) error {
	_, err := m.mutate(id, func(u *models.User) { u.TOTPSecret = &secret })
	return err
}

func (m *memUsers) EnableTOTP(id uuid.UUID) error {
	_, err := m.mutate(id, func(u *models.User) { u.TOTPEnabled = true })
	return err
}

func (m *memUsers) ResetTOTP(id uuid.UUID) error {
	_, err := m.mutate(id, func(u *models.User) { u.TOTPSecret, u.TOTPEnabled = nil, false })
	return err
}

func (m *memUsers) CheckPassword(u *models.User, password string) bool {
	return u.PasswordHash == password
}

func (m *memUsers) mutate(id uuid.UUID, fn func(*models.User)) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.items[id]
	if !ok {
		return nil, fmt.Errorf("update user: %w", store.ErrNotFound)
	}
	fn(&u)
	m.items[id] = u
	return &u, nil
}

// memContent is seeded with the built-in defaults.
type memContent struct {
	mu    sync.Mutex
	items map[string]models.ContentItem
	err   error
}

func newMemContent(t *testing.T) *memContent {
	t.Helper()
	defaults, err := sitecontent.Defaults()
	if err != nil {
		t.Fatalf("sitecontent.Defaults: %v", err)
	}
	m := &memContent{items: map[string]models.ContentItem{}}
	for _, it := range defaults {
		m.items[it.Key] = it
	}
	return m
}

func (m *memContent) ListAll() ([]models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ContentItem
	for _, it := range m.items {
		out = append(out, it)
	}
	return out, nil
}

func (m *memContent) Values() (models.ContentValues, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	v := models.ContentValues{}
	for k, it := range m.items {
		v[k] = it.Value
	}
	return v, nil
}

func (m *memContent) FindByKey(key string) (*models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (m *memContent) UpdateValue(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.items[key]
	if !ok {
		return fmt.Errorf("update site content %s: %w", key, store.ErrNotFound)
	}
	it.Value = value
	m.items[key] = it
	return nil
}

func (m *memContent) value(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items[key].Value
}

type memCacheLog struct {
	mu      sync.Mutex
	entries []store.CacheLogEntry
}

func (m *memCacheLog) Log(path, scope string, actorID *uuid.UUID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, store.CacheLogEntry{
		ID: int64(len(m.entries) + 1), Path: path, Scope: scope, ActorID: actorID, InvalidatedAt: time.Now(),
	})
}

func (m *memCacheLog) RecentEntries(limit int) ([]store.CacheLogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := append([]store.CacheLogEntry(nil), m.entries...)
	if len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

// memPages records page cache traffic. Invalidations are kept as
// "scope:path".
type memPages struct {
	mu            sync.Mutex
	pages         map[string][]byte
	invalidations []string
}

func (m *memPages) Get(_ context.Context, path string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.pages[path]
	return b, ok
}

func (m *memPages) Set(_ context.Context, path string, html []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[path] = append([]byte(nil), html...)
}

func (m *memPages) Invalidate(_ context.Context, path, scope string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidations = append(m.invalidations, scope+":"+path)
	delete(m.pages, path)
}

func (m *memPages) invalidated() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.invalidations...)
}

// memFiles implements storage.Store.
type memFiles struct {
	mu        sync.Mutex
	files     map[string][]byte
	removed   []string
	removeErr error
}

func (m *memFiles) Save(_ context.Context, key, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files["/"+key] = data
	return "/" + key, nil
}

func (m *memFiles) Remove(_ context.Context, publicPath string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, publicPath)
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.files, publicPath)
	return nil
}

// ---------- search backend ----------

type indexCall struct {
	Op, Index, ID string
}

type recordingBackend struct {
	mu       sync.Mutex
	calls    []indexCall
	results  map[string]*search.Result
	failures map[string]error
}

func (b *recordingBackend) record(c indexCall) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, c)
	return b.failures[c.Index]
}

func docID(docs any) string {
	switch d := docs.(type) {
	case []search.NewsDocument:
		if len(d) == 1 {
			return d[0].ID
		}
	case []search.ResearchDocument:
		if len(d) == 1 {
			return d[0].ID
		}
	}
	return ""
}

func (b *recordingBackend) AddDocuments(_ context.Context, index string, docs any) error {
	return b.record(indexCall{"add", index, docID(docs)})
}

func (b *recordingBackend) UpdateDocuments(_ context.Context, index string, docs any) error {
	return b.record(indexCall{"update", index, docID(docs)})
}

func (b *recordingBackend) DeleteDocument(_ context.Context, index, id string) error {
	return b.record(indexCall{"delete", index, id})
}

func (b *recordingBackend) Configure(_ context.Context, index string, _ search.Settings) error {
	return b.record(indexCall{"configure", index, ""})
}

func (b *recordingBackend) Search(_ context.Context, index, query string, _ search.Query) (*search.Result, error) {
	if err := b.record(indexCall{"search", index, ""}); err != nil {
		return nil, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if r, ok := b.results[index]; ok {
		return r, nil
	}
	return &search.Result{Hits: []search.Hit{}, Query: query}, nil
}

func (b *recordingBackend) recorded() []indexCall {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]indexCall(nil), b.calls...)
}

// ---------- environment ----------

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Deps     *Deps
	News     *memNews
	Research *memResearch
	Projects *memProjects
	Users    *memUsers
	Content  *memContent
	CacheLog *memCacheLog
	Pages    *memPages
	Files    *memFiles
	Backend  *recordingBackend

	API       *API
	Site      *Pages
	Dashboard *Dashboard
}

// fixedNow is the clock of every test environment.
var fixedNow = time.Date(2026, time.March, 14, 10, 0, 0, 0, time.UTC)

// newTestEnv creates a complete test environment backed by in-memory fakes.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	renderer, err := render.New(true)
	if err != nil {
		t.Fatalf("render.New: %v", err)
	}

	env := &testEnv{
		News:     &memNews{items: map[uuid.UUID]models.NewsArticle{}},
		Research: &memResearch{items: map[uuid.UUID]models.ResearchPaper{}},
		Projects: &memProjects{},
		Users:    &memUsers{items: map[uuid.UUID]models.User{}},
		Content:  newMemContent(t),
		CacheLog: &memCacheLog{},
		Pages:    &memPages{pages: map[string][]byte{}},
		Files:    &memFiles{files: map[string][]byte{}},
		Backend:  &recordingBackend{results: map[string]*search.Result{}, failures: map[string]error{}},
	}
	indexer := search.NewIndexer(env.Backend)
	t.Cleanup(indexer.Wait)

	env.Deps = &Deps{
		Renderer: renderer,
		News:     env.News,
		Research: env.Research,
		Projects: env.Projects,
		Users:    env.Users,
		Content:  env.Content,
		CacheLog: env.CacheLog,
		Pages:    env.Pages,
		Files:    env.Files,
		Indexer:  indexer,
		Searcher: search.NewSearcher(env.Backend),
		Now:      func() time.Time { return fixedNow },
	}
	env.API = NewAPI(env.Deps)
	env.Site = NewPages(env.Deps)
	env.Dashboard = NewDashboard(env.Deps)
	return env
}

// ctxWithSession adds session data to a context using the middleware key.
func ctxWithSession(ctx context.Context, data *session.Data) context.Context {
	return context.WithValue(ctx, middleware.SessionKey, data)
}

// testSession creates a session.Data for testing.
func testSession(userID uuid.UUID, role models.Role) *session.Data {
	return &session.Data{
		UserID:    userID,
		Email:     "test@research.local",
		Name:      "Test User",
		Role:      role,
		TwoFADone: true,
	}
}

// newRequest builds a request with an optional JSON body, session and chi
// URL parameters given as key/value pairs.
func newRequest(method, target string, body any, sess *session.Data, params ...string) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	r := httptest.NewRequest(method, target, &buf)
	if body != nil {
		r.Header.Set("Content-Type", "application/json")
	}

	ctx := r.Context()
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for i := 0; i+1 < len(params); i += 2 {
			rctx.URLParams.Add(params[i], params[i+1])
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	if sess != nil {
		ctx = ctxWithSession(ctx, sess)
	}
	return r.WithContext(ctx)
}

// decode unmarshals a JSON response body.
func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rec.Body).Decode(&v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return v
}
