// Package views renders the blog's HTML pages for Fiber.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"
	"time"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "layout.html"

// Engine implements fiber.Views. Every page is parsed together with the
// shared layout so each can define its own "content" block.
type Engine struct {
	fsys  fs.FS
	pages map[string]*template.Template
}

func New() *Engine {
	return &Engine{fsys: templateFS}
}

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"date": func(t time.Time) string {
		return t.Format("Jan 2, 2006")
	},
	"lines": func(s string) []string {
		return strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	},
}

// Load parses every page template. Fiber calls it once at startup.
func (e *Engine) Load() error {
	files, err := fs.Glob(e.fsys, "templates/*.html")
	if err != nil {
		return fmt.Errorf("list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(files))
	for _, file := range files {
		base := path.Base(file)
		if base == layoutFile {
			continue
		}
		t, err := template.New(layoutFile).Funcs(funcs).ParseFS(e.fsys, "templates/"+layoutFile, file)
		if err != nil {
			return fmt.Errorf("parse %s: %w", base, err)
		}
		pages[strings.TrimSuffix(base, ".html")] = t
	}
	e.pages = pages
	return nil
}

// Render executes page name inside the layout. Layout arguments are ignored.
func (e *Engine) Render(w io.Writer, name string, data interface{}, _ ...string) error {
	if e.pages == nil {
		if err := e.Load(); err != nil {
			return err
		}
	}
	t, ok := e.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, layoutFile, data)
}
