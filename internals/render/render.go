package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"

	"Friendbook/internals/models"
)

const (
	PageFeed       = "feed"
	PageRegister   = "register"
	PageLogin      = "login"
	PageCreatePost = "create_post"
	PageError      = "error"
)

//go:embed templates/*.html
var templatesFS embed.FS

// View is everything the page shell and its fragments can show.
type View struct {
	Identity *models.Identity
	Flashes  []string
	Posts    []models.FeedItem
}

// Renderer wraps page fragments in the shared layout. It holds no
// per-request state and is safe for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
}

func New() (*Renderer, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{PageFeed, PageRegister, PageLogin, PageCreatePost, PageError} {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", name, err)
		}
		pages[name] = t
	}
	return &Renderer{pages: pages}, nil
}

// Page renders the named fragment inside the layout. Output is buffered so
// nothing reaches w if execution fails.
func (r *Renderer) Page(w io.Writer, name string, v View) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", v); err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}
