// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"bytes"
	"log/slog"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-chi/chi/v5"

	"researchoffice/internal/middleware"
	"researchoffice/internal/models"
	"researchoffice/internal/render"
	"researchoffice/internal/sitecontent"
)

// homeNewsLimit is how many articles the home page shows.
const homeNewsLimit = 3

// Pages groups the public site pages. Anonymous GETs are served from the
// Valkey page cache and stored there on miss.
type Pages struct {
	*Deps
}

// NewPages creates the public page handler group.
func NewPages(deps *Deps) *Pages {
	return &Pages{Deps: deps}
}

// site builds the site configuration. A failed read falls back to the
// built-in defaults so the public site keeps rendering.
func (d *Deps) site() sitecontent.SiteConfig {
	values, err := d.Content.Values()
	if err != nil {
		slog.Warn("load site content failed, using defaults", "error", err)
		values = nil
	}
	return sitecontent.Build(values)
}

// cacheable reports whether a response for r may be shared through the page
// cache: anonymous, full-page GET requests only.
func (p *Pages) cacheable(r *http.Request) bool {
	return p.Pages != nil &&
		r.Method == http.MethodGet &&
		r.Header.Get("HX-Request") != "true" &&
		middleware.SessionFromCtx(r.Context()) == nil
}

// fromCache writes a cached page and reports whether it did.
func (p *Pages) fromCache(w http.ResponseWriter, r *http.Request) bool {
	if !p.cacheable(r) {
		return false
	}
	cached, ok := p.Pages.Get(r.Context(), r.URL.Path)
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(cached)
	return true
}

// serve renders a page, stores it in the page cache when allowed and
// writes it out.
func (p *Pages) serve(w http.ResponseWriter, r *http.Request, name string, data *render.PageData) {
	var buf bytes.Buffer
	if err := p.Renderer.Render(&buf, r, name, data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if p.cacheable(r) {
		p.Pages.Set(r.Context(), r.URL.Path, buf.Bytes())
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// NotFound renders the site 404 page. It is never cached.
func (p *Pages) NotFound(w http.ResponseWriter, r *http.Request) {
	p.Renderer.PageStatus(w, r, http.StatusNotFound, "site/not_found", &render.PageData{
		Title: "Page not found",
		Site:  p.site(),
	})
}

// Home renders the landing page: hero, about, services, latest news and the
// unified search box.
func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	if p.fromCache(w, r) {
		return
	}

	news, err := p.News.List(true)
	if err != nil {
		slog.Error("list news for home failed", "error", err)
		news = nil
	}
	if len(news) > homeNewsLimit {
		news = news[:homeNewsLimit]
	}

	site := p.site()
	p.serve(w, r, "site/home", &render.PageData{
		Title:       site.Hero.Title,
		Description: site.Hero.Subtitle,
		Section:     "home",
		Site:        site,
		Data:        map[string]any{"News": news},
	})
}

// NewsList renders every published article, newest first.
func (p *Pages) NewsList(w http.ResponseWriter, r *http.Request) {
	if p.fromCache(w, r) {
		return
	}

	news, err := p.News.List(true)
	if err != nil {
		slog.Error("list news failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	site := p.site()
	p.serve(w, r, "site/news_list", &render.PageData{
		Title:   site.Nav.News,
		Section: "news",
		Site:    site,
		Data:    map[string]any{"News": news},
	})
}

// NewsDetail renders one published article with its Markdown body and a
// JSON-LD NewsArticle block. Drafts are not found.
func (p *Pages) NewsDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(r)
	if !ok {
		p.NotFound(w, r)
		return
	}
	if p.fromCache(w, r) {
		return
	}

	article, err := p.News.FindByID(id)
	if err != nil {
		slog.Error("find news failed", "id", id, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	if article == nil || !article.Published {
		p.NotFound(w, r)
		return
	}

	p.serve(w, r, "site/news_detail", &render.PageData{
		Title:   article.Title,
		Section: "news",
		Site:    p.site(),
		Data: map[string]any{
			"Article": article,
			"JSONLD":  newsJSONLD(article),
		},
	})
}

// newsJSONLD builds the schema.org NewsArticle metadata for an article.
func newsJSONLD(a *models.NewsArticle) map[string]any {
	ld := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "NewsArticle",
		"headline":      a.Title,
		"datePublished": a.PublishDate.Format("2006-01-02T15:04:05Z07:00"),
		"dateModified":  a.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
	if a.ImageURL != "" {
		ld["image"] = []string{a.ImageURL}
	}
	return ld
}

// Repository lists the years that have research papers, newest first.
func (p *Pages) Repository(w http.ResponseWriter, r *http.Request) {
	if p.fromCache(w, r) {
		return
	}

	years, err := p.Research.ListYears()
	if err != nil {
		slog.Error("list research years failed", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	site := p.site()
	p.serve(w, r, "site/repository", &render.PageData{
		Title:   site.Nav.Repo,
		Section: "repository",
		Site:    site,
		Data:    map[string]any{"Years": years},
	})
}

// monthGroup is one month of papers on a repository year page.
type monthGroup struct {
	Month  int
	Name   string
	Papers []models.ResearchPaper
}

// RepositoryYear lists the papers of one Gregorian year grouped by month,
// newest month first. A year that is not a positive integer is not found.
func (p *Pages) RepositoryYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year <= 0 {
		p.NotFound(w, r)
		return
	}
	if p.fromCache(w, r) {
		return
	}

	papers, err := p.Research.ListByYear(year)
	if err != nil {
		slog.Error("list research by year failed", "year", year, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	site := p.site()
	p.serve(w, r, "site/repository_year", &render.PageData{
		Title:   site.Nav.Repo + " " + strconv.Itoa(render.ThaiYear(year)),
		Section: "repository",
		Site:    site,
		Data: map[string]any{
			"Year":   year,
			"Months": groupByMonth(papers),
			"Count":  len(papers),
		},
	})
}

// groupByMonth buckets papers by month, newest month first. Paper order
// inside a month is preserved.
func groupByMonth(papers []models.ResearchPaper) []monthGroup {
	byMonth := make(map[int][]models.ResearchPaper)
	for _, paper := range papers {
		byMonth[paper.Month] = append(byMonth[paper.Month], paper)
	}
	groups := make([]monthGroup, 0, len(byMonth))
	for m, ps := range byMonth {
		groups = append(groups, monthGroup{Month: m, Name: render.ThaiMonth(m), Papers: ps})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Month > groups[j].Month })
	return groups
}
