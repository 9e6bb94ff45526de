// Package web maps the blog's HTTP routes onto the post store and views.
package web

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/flatblog/internal/post"
	"github.com/yourusername/flatblog/internal/views"
)

// Posts is the subset of post.Store the handlers use.
type Posts interface {
	List() []post.Post
	Find(slug string) (post.Post, error)
	Create(title, content, author string) (post.Post, error)
	Update(slug, title, content, author string) (post.Post, error)
	Delete(slug string) error
}

// Renderer executes a named view.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// Options tunes the routes.
type Options struct {
	HomeExcerptWords int    // excerpt length on "/"
	ListExcerptWords int    // excerpt length on "/blog"
	StaticDir        string // served for unmatched GET paths; empty disables
}

type handlers struct {
	posts  Posts
	views  Renderer
	opts   Options
	logger *slog.Logger
}

// NewRouter builds the blog's HTTP handler.
func NewRouter(posts Posts, renderer Renderer, opts Options, logger *slog.Logger) *gin.Engine {
	if opts.HomeExcerptWords <= 0 {
		opts.HomeExcerptWords = 50
	}
	if opts.ListExcerptWords <= 0 {
		opts.ListExcerptWords = 150
	}

	h := &handlers{
		posts:  posts,
		views:  renderer,
		opts:   opts,
		logger: logger.With("component", "web"),
	}

	r := gin.New()
	// Route on the raw path so an encoded "/" inside a slug stays in the
	// :slug segment. Slugs are read with slugParam, never unescaped here.
	r.UseRawPath = true
	r.UnescapePathValues = false

	r.Use(requestID(), accessLog(h.logger), recovery(h.logger))

	r.GET("/", h.home)
	r.GET("/blog", h.blog)
	r.GET("/about", h.about)
	r.GET("/create", h.newPost)
	r.POST("/create", h.createPost)
	r.GET("/post/:slug", h.showPost)
	r.GET("/edit/:slug", h.editPost)
	r.POST("/update/:slug", h.updatePost)
	r.POST("/delete/:slug", h.deletePost)
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	r.NoRoute(h.static)

	return r
}

func (h *handlers) home(c *gin.Context) {
	h.render(c, http.StatusOK, views.PageIndex, h.listPage(h.opts.HomeExcerptWords))
}

func (h *handlers) blog(c *gin.Context) {
	h.render(c, http.StatusOK, views.PageBlog, h.listPage(h.opts.ListExcerptWords))
}

func (h *handlers) listPage(maxWords int) views.ListPage {
	posts := h.posts.List()
	summaries := make([]views.PostSummary, 0, len(posts))
	for _, p := range posts {
		summaries = append(summaries, views.PostSummary{
			Post:    p,
			Excerpt: post.Excerpt(p.Content, maxWords),
		})
	}
	return views.ListPage{Posts: summaries}
}

func (h *handlers) about(c *gin.Context) {
	h.render(c, http.StatusOK, views.PageAbout, nil)
}

func (h *handlers) newPost(c *gin.Context) {
	h.render(c, http.StatusOK, views.PageForm, views.FormPage{})
}

func (h *handlers) createPost(c *gin.Context) {
	p, err := h.posts.Create(c.PostForm("title"), c.PostForm("content"), c.PostForm("author"))
	if !h.handleStoreError(c, err) {
		return
	}

	h.log(c).InfoContext(c.Request.Context(), "Post created", "slug", p.Slug)
	c.Redirect(http.StatusFound, "/")
}

func (h *handlers) showPost(c *gin.Context) {
	p, err := h.posts.Find(slugParam(c))
	if !h.handleStoreError(c, err) {
		return
	}
	h.render(c, http.StatusOK, views.PagePost, views.PostPage{Post: p})
}

func (h *handlers) editPost(c *gin.Context) {
	p, err := h.posts.Find(slugParam(c))
	if !h.handleStoreError(c, err) {
		return
	}
	h.render(c, http.StatusOK, views.PageForm, views.FormPage{Post: &p})
}

func (h *handlers) updatePost(c *gin.Context) {
	p, err := h.posts.Update(slugParam(c), c.PostForm("title"), c.PostForm("content"), c.PostForm("author"))
	if !h.handleStoreError(c, err) {
		return
	}

	h.log(c).InfoContext(c.Request.Context(), "Post updated", "slug", p.Slug)
	c.Redirect(http.StatusFound, "/post/"+p.Slug)
}

func (h *handlers) deletePost(c *gin.Context) {
	slug := slugParam(c)
	if !h.handleStoreError(c, h.posts.Delete(slug)) {
		return
	}

	h.log(c).InfoContext(c.Request.Context(), "Post deleted", "slug", slug)
	c.Redirect(http.StatusFound, "/")
}

// handleStoreError writes the response for a failed store call and reports
// whether the handler should carry on. A persist failure is logged but not
// surfaced: the change is live in memory and the request proceeds.
func (h *handlers) handleStoreError(c *gin.Context, err error) bool {
	switch {
	case err == nil:
		return true
	case errors.Is(err, post.ErrNotFound):
		h.log(c).InfoContext(c.Request.Context(), "Post not found", "slug", slugParam(c))
		c.String(http.StatusNotFound, "Post not found")
		return false
	case errors.Is(err, post.ErrEmptyTitle):
		c.String(http.StatusBadRequest, "Title is required")
		return false
	case errors.Is(err, post.ErrPersist):
		h.log(c).ErrorContext(c.Request.Context(), "Change kept in memory but not written to disk", "error", err)
		return true
	default:
		h.log(c).ErrorContext(c.Request.Context(), "Store operation failed", "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return false
	}
}

// render buffers the page so a template error can still become a 500.
func (h *handlers) render(c *gin.Context, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.views.Render(&buf, name, data); err != nil {
		h.log(c).ErrorContext(c.Request.Context(), "Failed to render view", "view", name, "error", err)
		c.String(http.StatusInternalServerError, "Internal Server Error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *handlers) static(c *gin.Context) {
	method := c.Request.Method
	if h.opts.StaticDir != "" && (method == http.MethodGet || method == http.MethodHead) {
		name := path.Clean("/" + c.Request.URL.Path)
		root := http.Dir(h.opts.StaticDir)
		if f, err := root.Open(name); err == nil {
			info, statErr := f.Stat()
			_ = f.Close()
			if statErr == nil && !info.IsDir() {
				c.FileFromFS(name, root)
				return
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			h.log(c).WarnContext(c.Request.Context(), "Failed to open static file", "path", name, "error", err)
		}
	}
	c.String(http.StatusNotFound, "Not found")
}

// slugParam returns the :slug segment exactly as it was escaped on the wire.
// gin routes on the decoded path whenever the request carries no RawPath,
// so c.Param can already be decoded once; post lookups decode it themselves.
func slugParam(c *gin.Context) string {
	escaped := c.Request.URL.EscapedPath()
	return escaped[strings.LastIndexByte(escaped, '/')+1:]
}

func (h *handlers) log(c *gin.Context) *slog.Logger {
	return h.logger.With("request_id", c.GetString(requestIDKey))
}
