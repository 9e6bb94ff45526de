package post

import (
	"strings"

	"golang.org/x/net/html"
)

// Ellipsis marks a truncated excerpt.
const Ellipsis = "..."

// Excerpt turns HTML content into a plain-text preview of at most maxWords
// words. Every tag becomes a space, whitespace runs collapse to one space,
// and a truncated preview ends with Ellipsis.
func Excerpt(content string, maxWords int) string {
	if content == "" || maxWords <= 0 {
		return ""
	}

	words := strings.Fields(plainText(strings.ReplaceAll(content, "&nbsp;", " ")))
	if len(words) <= maxWords {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:maxWords], " ") + Ellipsis
}

// plainText drops markup, leaving a space where each tag or comment was.
// Entities inside text are decoded.
func plainText(content string) string {
	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(content))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.TextToken:
			b.Write(z.Text())
		default:
			b.WriteByte(' ')
		}
	}
}
