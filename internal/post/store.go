package post

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Backend persists the whole post collection at once.
type Backend interface {
	Load() ([]Post, error)
	Save(posts []Post) error
}

// Store owns the post collection. Every operation holds one lock, and each
// mutation rewrites the backend before the lock is released, so concurrent
// writers cannot interleave.
type Store struct {
	mu      sync.Mutex
	backend Backend
	posts   []Post
	now     func() time.Time
	dates   DateFormatter
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now as the source of creation and update times.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithDateFormatter sets how post dates are rendered.
func WithDateFormatter(f DateFormatter) Option {
	return func(s *Store) { s.dates = f }
}

// WithLogger sets the logger used for load and persist events.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// NewStore creates an empty store over backend. Call Load to read the
// persisted posts.
func NewStore(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		posts:   []Post{},
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "post.store")
	return s
}

// Load replaces the in-memory collection with the persisted one. On error
// the store is left empty and usable.
func (s *Store) Load() error {
	posts, err := s.backend.Load()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.posts = []Post{}
		return fmt.Errorf("failed to load posts: %w", err)
	}
	if posts == nil {
		posts = []Post{}
	}
	s.posts = posts
	s.logger.Info("Posts loaded", "count", len(posts))
	return nil
}

// List returns every post in creation order.
func (s *Store) List() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.posts)
}

// Find returns the post identified by slug.
func (s *Store) Find(slug string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(slug)
	if i < 0 {
		return Post{}, ErrNotFound
	}
	return s.posts[i], nil
}

// Create adds a post. Content is wrapped in paragraph markup. The returned
// post is valid even when the error wraps ErrPersist.
func (s *Store) Create(title, content, author string) (Post, error) {
	if strings.TrimSpace(title) == "" {
		return Post{}, ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	p := Post{
		Title:   title,
		Content: Paragraphs(content),
		Author:  author,
		Date:    s.dates.Format(now),
		Slug:    s.uniqueSlug(title, now),
	}
	s.posts = append(s.posts, p)

	s.logger.Info("Post created", "slug", p.Slug, "count", len(s.posts))
	return p, s.persist()
}

// Update replaces title, content and author of the post identified by slug
// and refreshes its date. Content is stored as given; the slug never changes.
func (s *Store) Update(slug, title, content, author string) (Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(slug)
	if i < 0 {
		return Post{}, ErrNotFound
	}
	if strings.TrimSpace(title) == "" {
		return Post{}, ErrEmptyTitle
	}

	p := Post{
		Title:   title,
		Content: content,
		Author:  author,
		Date:    s.dates.Format(s.now()),
		Slug:    s.posts[i].Slug,
	}
	s.posts[i] = p

	s.logger.Info("Post updated", "slug", p.Slug)
	return p, s.persist()
}

// Delete removes the post identified by slug.
func (s *Store) Delete(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(slug)
	if i < 0 {
		return ErrNotFound
	}
	removed := s.posts[i].Slug
	s.posts = slices.Delete(s.posts, i, i+1)

	s.logger.Info("Post deleted", "slug", removed, "count", len(s.posts))
	return s.persist()
}

// indexOf must be called with mu held.
func (s *Store) indexOf(slug string) int {
	key := matchKey(slug)
	return slices.IndexFunc(s.posts, func(p Post) bool {
		return matchKey(p.Slug) == key
	})
}

// uniqueSlug suffixes -2, -3, ... when two posts with the same title land
// in the same millisecond. Must be called with mu held.
func (s *Store) uniqueSlug(title string, now time.Time) string {
	base := slugBase(title, now)
	slug := EncodeComponent(base)
	for n := 2; s.indexOf(slug) >= 0; n++ {
		slug = EncodeComponent(base + "-" + strconv.Itoa(n))
	}
	return slug
}

// persist must be called with mu held.
func (s *Store) persist() error {
	if err := s.backend.Save(s.posts); err != nil {
		s.logger.Error("Failed to write posts", "count", len(s.posts), "error", err)
		return fmt.Errorf("%w: %w", ErrPersist, err)
	}
	return nil
}
