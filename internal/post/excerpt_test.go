package post

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExcerpt(t *testing.T) {
	tests := []struct {
		name    string
		content string
		max     int
		want    string
	}{
		{"strips tags", "<p>Hello <b>world</b></p>", 10, "Hello world"},
		{"empty content", "", 10, ""},
		{"exactly max words", "one two three", 3, "one two three"},
		{"one word over", "one two three four", 3, "one two three..."},
		{"nbsp becomes a space", "a&nbsp;b", 5, "a b"},
		{"adjacent paragraphs stay separate words", "<p>one</p><p>two</p>", 5, "one two"},
		{"whitespace collapses", "  <p>\n  spaced \t out </p> ", 5, "spaced out"},
		{"entities decoded", "<p>fish &amp; chips</p>", 5, "fish & chips"},
		{"comments removed", "<!-- draft --><p>kept</p>", 5, "kept"},
		{"only markup", "<p></p><br/>", 5, ""},
		{"zero max", "<p>anything</p>", 0, ""},
		{"truncates inside markup", "<p>a <em>b</em> c</p><p>d</p>", 2, "a b..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Excerpt(tt.content, tt.max))
		})
	}
}

func TestExcerptBoundary(t *testing.T) {
	for _, max := range []int{1, 2, 50, 150} {
		words := make([]string, max+1)
		for i := range words {
			words[i] = "w"
		}

		exact := "<p>" + strings.Join(words[:max], " ") + "</p>"
		assert.Equal(t, strings.Join(words[:max], " "), Excerpt(exact, max), "max=%d exact", max)

		over := "<p>" + strings.Join(words, " ") + "</p>"
		got := Excerpt(over, max)
		assert.True(t, strings.HasSuffix(got, Ellipsis), "max=%d over: %q", max, got)
		assert.Len(t, strings.Fields(strings.TrimSuffix(got, Ellipsis)), max)
	}
}
