// Package views renders the blog's HTML pages from html/template sources,
// either the set embedded in the binary or a directory on disk.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/yourusername/flatblog/internal/post"
)

//go:embed templates/*.html
var embedded embed.FS

// Page names accepted by Render.
const (
	PageIndex = "index"
	PageBlog  = "blog"
	PageAbout = "about"
	PageForm  = "create-post"
	PagePost  = "post"
)

const layoutFile = "layout.html"

var pageNames = []string{PageIndex, PageBlog, PageAbout, PageForm, PagePost}

// PostSummary is a post as shown in a list.
type PostSummary struct {
	post.Post
	Excerpt string
}

// ListPage is the data for PageIndex and PageBlog.
type ListPage struct {
	Posts []PostSummary
}

// PostPage is the data for PagePost.
type PostPage struct {
	Post post.Post
}

// FormPage is the data for PageForm. A nil Post renders the create form.
type FormPage struct {
	Post *post.Post
}

// Renderer executes named pages. It is safe for concurrent use, including
// while Reload swaps in new templates.
type Renderer struct {
	mu     sync.RWMutex
	pages  map[string]*template.Template
	dir    string
	source fs.FS
	policy *bluemonday.Policy
	logger *slog.Logger
}

// New parses the templates in dir, or the embedded templates when dir is
// empty.
func New(dir string, logger *slog.Logger) (*Renderer, error) {
	var source fs.FS
	if dir == "" {
		sub, err := fs.Sub(embedded, "templates")
		if err != nil {
			return nil, err
		}
		source = sub
	} else {
		source = os.DirFS(dir)
	}

	r := &Renderer{
		dir:    dir,
		source: source,
		policy: bluemonday.UGCPolicy(),
		logger: logger.With("component", "views"),
	}
	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Reload re-parses every page. On error the previous templates stay active.
func (r *Renderer) Reload() error {
	parsed := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		t, err := template.New(name).Funcs(r.funcs()).ParseFS(r.source, layoutFile, name+".html")
		if err != nil {
			return fmt.Errorf("failed to parse %s view: %w", name, err)
		}
		parsed[name] = t
	}

	r.mu.Lock()
	r.pages = parsed
	r.mu.Unlock()
	return nil
}

// Render writes page name with data to w.
func (r *Renderer) Render(w io.Writer, name string, data any) error {
	r.mu.RLock()
	t, ok := r.pages[name]
	r.mu.RUnlock()
	if !ok {
		return fmt.Errorf("unknown view %q", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}

func (r *Renderer) funcs() template.FuncMap {
	return template.FuncMap{
		// safeHTML emits stored post markup after sanitising it.
		"safeHTML": func(s string) template.HTML {
			// #nosec G203 -- s has been through the UGC policy
			return template.HTML(r.policy.Sanitize(s))
		},
	}
}
