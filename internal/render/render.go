// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the public site and
// the dashboard. Templates are embedded; each page is parsed together with
// the layout of its directory. HTMX requests receive only the "content"
// block.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strings"

	"researchoffice/internal/icons"
	"researchoffice/internal/markdown"
	"researchoffice/internal/middleware"
	"researchoffice/internal/models"
	"researchoffice/internal/session"
	"researchoffice/internal/sitecontent"
)

//go:embed templates
var templateFS embed.FS

// layoutFile is the per-directory layout each page is paired with.
const layoutFile = "layout.html"

// PageData holds all data passed to templates.
type PageData struct {
	Title       string                 // Page title for <title> tag
	Description string                 // meta description
	Section     string                 // Active navigation entry
	Session     *session.Data          // Current user session (nil if anonymous)
	CSRFToken   string                 // CSRF token for forms and fetch headers
	Site        sitecontent.SiteConfig // CMS-driven site configuration
	Data        map[string]any         // Page-specific data
	Flashes     []Flash                // One-time notification messages
}

// Flash represents a one-time notification message displayed to the user.
type Flash struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
}

// New parses every page template from the embedded filesystem. Pages are
// registered as "<dir>/<name>", e.g. "site/home" or "dashboard/content".
// When devMode is true, layouts load CSS and scripts from CDNs.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "bg-slate-900 text-white"
				}
				return "text-slate-300 hover:bg-slate-700 hover:text-white"
			},
			"isDev":      func() bool { return devMode },
			"thaiYear":   ThaiYear,
			"thaiDate":   ThaiDate,
			"icon":       icons.HTML,
			"iconNames":  icons.Names,
			"isImage":    icons.IsImage,
			"markdown":   markdown.Render,
			"truncate":   truncate,
			"toJSON":     toJSON,
			"roles":      models.Roles,
			"statuses":   models.ProjectStatuses,
			"statusBadge": statusBadge,
			// can reports whether the session's role grants a capability.
			"can": func(sess *session.Data, c string) bool {
				return sess.Can(models.Capability(c))
			},
		},
	}

	dirs, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		if err := r.parseDir(d.Name()); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (rn *Renderer) parseDir(dir string) error {
	root := path.Join("templates", dir)
	entries, err := fs.ReadDir(templateFS, root)
	if err != nil {
		return fmt.Errorf("read templates/%s: %w", dir, err)
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == layoutFile || !strings.HasSuffix(name, ".html") {
			continue
		}
		tmpl, err := template.New(layoutFile).Funcs(rn.funcMap).ParseFS(
			templateFS, path.Join(root, layoutFile), path.Join(root, name),
		)
		if err != nil {
			return fmt.Errorf("parse template %s/%s: %w", dir, name, err)
		}
		rn.templates[dir+"/"+strings.TrimSuffix(name, ".html")] = tmpl
	}
	return nil
}

// Has reports whether a page template is registered.
func (rn *Renderer) Has(name string) bool {
	_, ok := rn.templates[name]
	return ok
}

// Render executes a page into w. The CSRF token and session are taken from
// the request context when the caller did not set them.
func (rn *Renderer) Render(w io.Writer, r *http.Request, name string, data *PageData) error {
	tmpl, ok := rn.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	if data == nil {
		data = &PageData{}
	}
	if data.CSRFToken == "" {
		data.CSRFToken = middleware.CSRFTokenFromCtx(r.Context())
	}
	if data.Session == nil {
		data.Session = middleware.SessionFromCtx(r.Context())
	}

	execName := layoutFile
	if isHTMX(r) {
		execName = "content"
	}
	return tmpl.ExecuteTemplate(w, execName, data)
}

// Page renders a page with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.PageStatus(w, r, http.StatusOK, name, data)
}

// PageStatus renders into a buffer first so a template error still yields a
// clean 500 instead of a half-written page.
func (rn *Renderer) PageStatus(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	var buf bytes.Buffer
	if err := rn.Render(&buf, r, name, data); err != nil {
		slog.Error("template render failed", "template", name, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
