package post

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Slug derives the identifier for a post titled title created at now: the
// lowercased title with spaces turned into hyphens, a millisecond timestamp
// suffix, percent-encoded as a URI component.
func Slug(title string, now time.Time) string {
	return EncodeComponent(slugBase(title, now))
}

func slugBase(title string, now time.Time) string {
	// cases.Caser is stateful, so one per call.
	lowered := cases.Lower(language.Und).String(norm.NFC.String(title))
	return strings.ReplaceAll(lowered, " ", "-") + "-" + strconv.FormatInt(now.UnixMilli(), 10)
}

// EncodeComponent percent-encodes every byte outside the URI component
// unreserved set: A-Z a-z 0-9 - _ . ! ~ * ' ( ).
func EncodeComponent(s string) string {
	const hex = "0123456789ABCDEF"

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// matchKey is the form two slugs are compared in: percent-decoded when
// possible, trimmed, lowercased.
func matchKey(slug string) string {
	if decoded, err := url.PathUnescape(slug); err == nil {
		slug = decoded
	}
	return strings.ToLower(strings.TrimSpace(slug))
}
