// Package post holds the blog's domain: the Post record, the store that owns
// the post collection, and the pure helpers that derive slugs, excerpts,
// paragraph markup and display dates.
package post

import "errors"

var (
	// ErrNotFound is returned when no post matches a slug.
	ErrNotFound = errors.New("post not found")
	// ErrEmptyTitle is returned when a post would be saved without a title.
	ErrEmptyTitle = errors.New("post title is required")
	// ErrPersist wraps failures to write the collection. The in-memory
	// change has already been applied when it is returned.
	ErrPersist = errors.New("failed to persist posts")
)

// Post is a single blog entry. Slug is its only external identifier.
type Post struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Author  string `json:"author"`
	Date    string `json:"date"`
	Slug    string `json:"slug"`
}
