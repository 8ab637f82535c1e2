// Package render turns search pages into HTML.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/rubiojr/topsongs/pkg/search"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names accepted by Renderer.Render.
const (
	PageSearch   = "search"
	PageDetail   = "detail"
	PageAdvanced = "advanced"
)

// PageData is passed to every page template.
type PageData struct {
	Title   string
	Version string
	// Error is a user facing message shown above the page content.
	Error string
	// Query is the effective query facet links narrow.
	Query  string
	Search *search.Page
	Detail *search.DetailPage
	Facets []search.Facet
}

// Renderer holds one template set per page, each sharing the layout.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range []string{PageSearch, PageDetail, PageAdvanced} {
		t, err := template.New("layout.html").
			Funcs(GetTemplateFuncs()).
			ParseFS(templateFS, "templates/layout.html", "templates/facets.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes a page into w. Output is buffered so a template error never
// leaves a half written page.
func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		return fmt.Errorf("rendering %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
