package httpserver

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

// pageNames lists every page template; each is parsed together with layout.html.
var pageNames = []string{"index", "show", "new", "edit", "search_similar", "error"}

// Renderer turns a named view and its context into a response body.
type Renderer interface {
	Render(w http.ResponseWriter, status int, name string, data interface{}) error
}

// TemplateRenderer renders the embedded html/template pages.
type TemplateRenderer struct {
	pages map[string]*template.Template
}

// NewTemplateRenderer parses all embedded pages.
func NewTemplateRenderer() (*TemplateRenderer, error) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tmpl
	}
	return &TemplateRenderer{pages: pages}, nil
}

// MustTemplateRenderer panics when the embedded templates do not parse.
func MustTemplateRenderer() *TemplateRenderer {
	r, err := NewTemplateRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// Render executes into a buffer first so a template error never leaves a half-written page.
func (t *TemplateRenderer) Render(w http.ResponseWriter, status int, name string, data interface{}) error {
	tmpl, ok := t.pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("execute template %s: %w", name, err)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

var templateFuncs = template.FuncMap{
	"sortLink": func(field string) string {
		return moviesPath + "?sort=" + field
	},
}
