package post

import "strings"

// Paragraphs wraps newline-separated text in paragraph markup. Lines are
// trimmed and blank lines dropped.
func Paragraphs(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return "<p>" + strings.Join(kept, "</p><p>") + "</p>"
}
