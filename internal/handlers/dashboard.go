// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"researchoffice/internal/icons"
	"researchoffice/internal/middleware"
	"researchoffice/internal/render"
	"researchoffice/internal/store"
)

// cacheLogLimit is how many invalidations the system page lists.
const cacheLogLimit = 20

// Dashboard groups the signed-in pages under /dashboard. Mutations go
// through the JSON API; these handlers only render.
type Dashboard struct {
	*Deps
}

// NewDashboard creates the dashboard handler group.
func NewDashboard(deps *Deps) *Dashboard {
	return &Dashboard{Deps: deps}
}

func (d *Dashboard) page(w http.ResponseWriter, r *http.Request, name, title, section string, data map[string]any) {
	d.Renderer.Page(w, r, "dashboard/"+name, &render.PageData{
		Title:   title,
		Section: section,
		Site:    d.site(),
		Data:    data,
	})
}

func (d *Dashboard) fail(w http.ResponseWriter, op string, err error) {
	slog.Error(op+" failed", "error", err)
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}

// Home shows the research paper table. Delete buttons are rendered only
// for roles that manage research.
func (d *Dashboard) Home(w http.ResponseWriter, r *http.Request) {
	papers, err := d.Research.List()
	if err != nil {
		d.fail(w, "list research", err)
		return
	}
	d.page(w, r, "home", "Dashboard", "dashboard", map[string]any{"Papers": papers})
}

// Upload renders the research upload form.
func (d *Dashboard) Upload(w http.ResponseWriter, r *http.Request) {
	d.page(w, r, "upload", "Upload Research", "upload", nil)
}

// ContentPage renders the site content editor grouped by section.
func (d *Dashboard) ContentPage(w http.ResponseWriter, r *http.Request) {
	items, err := d.Content.ListAll()
	if err != nil {
		d.fail(w, "list content", err)
		return
	}
	d.page(w, r, "content", "Site Content", "content", map[string]any{
		"Groups": store.GroupBySection(items),
		"Icons":  icons.Names(),
	})
}

// NewsList renders every article including drafts.
func (d *Dashboard) NewsList(w http.ResponseWriter, r *http.Request) {
	news, err := d.News.List(false)
	if err != nil {
		d.fail(w, "list news", err)
		return
	}
	d.page(w, r, "news_list", "News", "news", map[string]any{"News": news})
}

// NewsNew renders an empty article editor.
func (d *Dashboard) NewsNew(w http.ResponseWriter, r *http.Request) {
	d.page(w, r, "news_form", "New Article", "news", map[string]any{"IsNew": true})
}

// NewsEdit renders the editor for an existing article.
func (d *Dashboard) NewsEdit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	article, err := d.News.FindByID(id)
	if err != nil {
		d.fail(w, "find news", err)
		return
	}
	if article == nil {
		http.NotFound(w, r)
		return
	}
	d.page(w, r, "news_form", "Edit Article", "news", map[string]any{"Article": article})
}

// MyProjects lists the signed-in user's projects with a submission form.
func (d *Dashboard) MyProjects(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	owner := sess.UserID
	projects, err := d.Projects.List(&owner)
	if err != nil {
		d.fail(w, "list own projects", err)
		return
	}
	d.page(w, r, "my_projects", "My Projects", "my-projects", map[string]any{"Projects": projects})
}

// AdminProjects lists every project for review.
func (d *Dashboard) AdminProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := d.Projects.List(nil)
	if err != nil {
		d.fail(w, "list projects", err)
		return
	}
	d.page(w, r, "admin_projects", "Project Review", "admin-projects", map[string]any{"Projects": projects})
}

// AdminUsers renders user management.
func (d *Dashboard) AdminUsers(w http.ResponseWriter, r *http.Request) {
	users, err := d.Users.List()
	if err != nil {
		d.fail(w, "list users", err)
		return
	}
	d.page(w, r, "admin_users", "Users", "admin-users", map[string]any{"Users": users})
}

// AdminSystem renders the search sync and cache controls with the most
// recent cache invalidations.
func (d *Dashboard) AdminSystem(w http.ResponseWriter, r *http.Request) {
	entries, err := d.CacheLog.RecentEntries(cacheLogLimit)
	if err != nil {
		slog.Warn("load cache log failed", "error", err)
	}
	d.page(w, r, "admin_system", "System", "admin-system", map[string]any{"CacheLog": entries})
}
