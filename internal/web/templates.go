// Package web renders the server-side admin panel. Pages run the same
// guard decision tables as the API layers, so what a browser sees always
// matches what the server would allow.
package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/atelier-cms/atelier/internal/rbac"
	"github.com/atelier-cms/atelier/web"
)

// Engine renders HTML pages from embedded templates.
type Engine struct {
	pages map[string]*template.Template
}

// PageData contains values shared across templates.
type PageData struct {
	Title   string
	Path    string
	Session rbac.SessionState
	Data    any
}

// NewEngine parses templates at startup. Each page gets its own clone of
// the base layout so page-level blocks do not collide.
func NewEngine() (*Engine, error) {
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02 Jan 2006 15:04")
		},
		"gate":           rbac.GuardGate,
		"gatePermission": rbac.GuardGatePermission,
	}

	base, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates,
		"templates/layouts/*.html", "templates/partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	pageFiles, err := fs.Glob(web.Templates, "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("glob pages: %w", err)
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, file := range pageFiles {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout: %w", err)
		}
		tpl, err := clone.ParseFS(web.Templates, file)
		if err != nil {
			return nil, fmt.Errorf("parse page %s: %w", file, err)
		}
		pages[path.Base(file)] = tpl
	}

	return &Engine{pages: pages}, nil
}

// Render executes a page template inside the base layout.
func (e *Engine) Render(w http.ResponseWriter, name string, data PageData) error {
	tpl, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("unknown page template %q", name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tpl.ExecuteTemplate(w, "base", data)
}
