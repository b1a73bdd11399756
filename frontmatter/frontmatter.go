// Package frontmatter parses the leading metadata block of generated
// blog posts.
package frontmatter

import (
	"regexp"
	"strings"
)

// Document is a blog post split into its metadata block and body.
type Document struct {
	Meta map[string]string
	Body string
}

// Only the first two marker lines are structural; any "---" inside the
// body stays untouched.
var blockRe = regexp.MustCompile(`(?s)^---\n(.*?)\n---\n(.*)$`)

// Parse splits content into frontmatter metadata and body. Input
// without a frontmatter block yields empty metadata and the whole
// input as body. Values may be quoted or unquoted; keys and values are
// trimmed, and a value may itself contain colons.
func Parse(content string) Document {
	m := blockRe.FindStringSubmatch(content)
	if m == nil {
		return Document{Meta: map[string]string{}, Body: content}
	}

	meta := make(map[string]string)
	for _, line := range strings.Split(m[1], "\n") {
		key, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(key) == "" || strings.TrimSpace(value) == "" {
			continue
		}
		meta[strings.TrimSpace(key)] = trimQuotes(strings.TrimSpace(value))
	}
	return Document{Meta: meta, Body: m[2]}
}

func trimQuotes(s string) string {
	if len(s) > 0 && (s[0] == '"' || s[0] == '\'') {
		s = s[1:]
	}
	if len(s) > 0 && (s[len(s)-1] == '"' || s[len(s)-1] == '\'') {
		s = s[:len(s)-1]
	}
	return s
}
