// Package web provides infrastructure for serving server-rendered pages with
// Go templates, embedded static assets, and fallback routing.
package web

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
)

// ViewDef defines a page with its route, template file, and title.
type ViewDef struct {
	Route    string
	Template string
	Title    string
}

// ViewData contains the data passed to page templates during rendering.
// BasePath enables portable URL generation in templates via {{ .BasePath }}.
type ViewData struct {
	Title    string
	BasePath string
	Data     any
}

// Loader builds the page data for a request. A returned error is rendered
// with the status produced by the TemplateSet's status mapper.
type Loader func(r *http.Request) (any, error)

// TemplateSet holds pre-parsed templates and a base path for URL generation.
type TemplateSet struct {
	views    map[string]*template.Template
	basePath string
	status   func(error) int
}

// NewTemplateSet parses the layout templates once and clones them for each
// view so that views can redefine the same blocks independently.
func NewTemplateSet(fsys fs.FS, layoutGlob, viewSubdir, basePath string, funcs template.FuncMap, views []ViewDef) (*TemplateSet, error) {
	layouts, err := template.New("").Funcs(funcs).ParseFS(fsys, layoutGlob)
	if err != nil {
		return nil, err
	}

	viewSub, err := fs.Sub(fsys, viewSubdir)
	if err != nil {
		return nil, err
	}

	viewTemplates := make(map[string]*template.Template, len(views))
	for _, p := range views {
		t, err := layouts.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layouts for %s: %w", p.Template, err)
		}
		if _, err := t.ParseFS(viewSub, p.Template); err != nil {
			return nil, fmt.Errorf("parse template: %s: %w", p.Template, err)
		}
		viewTemplates[p.Template] = t
	}

	return &TemplateSet{
		views:    viewTemplates,
		basePath: basePath,
		status:   func(error) int { return http.StatusInternalServerError },
	}, nil
}

// SetStatusMapper replaces the function translating loader errors into HTTP statuses.
func (ts *TemplateSet) SetStatusMapper(fn func(error) int) {
	ts.status = fn
}

// ErrorHandler returns an HTTP handler that renders view with the given status code.
func (ts *TemplateSet) ErrorHandler(layout string, view ViewDef, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts.renderStatus(w, layout, view, status, nil)
	}
}

// PageHandler returns an HTTP handler that renders view with the data
// produced by load. A nil load renders the page without data.
func (ts *TemplateSet) PageHandler(layout string, view ViewDef, load Loader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var data any
		if load != nil {
			d, err := load(r)
			if err != nil {
				http.Error(w, err.Error(), ts.status(err))
				return
			}
			data = d
		}
		ts.renderStatus(w, layout, view, http.StatusOK, data)
	}
}

// Render executes the named layout template with the given view data.
func (ts *TemplateSet) Render(w http.ResponseWriter, layoutName, viewPath string, data ViewData) error {
	t, ok := ts.views[viewPath]
	if !ok {
		return fmt.Errorf("template not found: %s", viewPath)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return t.ExecuteTemplate(w, layoutName, data)
}

func (ts *TemplateSet) renderStatus(w http.ResponseWriter, layout string, view ViewDef, status int, data any) {
	t, ok := ts.views[view.Template]
	if !ok {
		http.Error(w, "template not found: "+view.Template, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	t.ExecuteTemplate(w, layout, ViewData{
		Title:    view.Title,
		BasePath: ts.basePath,
		Data:     data,
	})
}
