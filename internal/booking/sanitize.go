package booking

import (
	"html"
	"regexp"
	"strings"
)

// Raw substrings removed from user input after HTML-escaping. Defense in
// depth only: the record store must use parameterized queries regardless.
var denylistSubstrings = []string{
	"--",
	";",
	"'",
	"\"",
	"<script",
}

var denylistPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)javascript:`),
	regexp.MustCompile(`(?i)on\w+=`),
}

// Sanitize HTML-escapes text, strips a fixed denylist of markup and SQL
// metacharacters case-insensitively, and trims surrounding whitespace.
func Sanitize(text string) string {
	s := html.EscapeString(text)
	for _, sub := range denylistSubstrings {
		s = removeFold(s, sub)
	}
	for _, re := range denylistPatterns {
		s = re.ReplaceAllString(s, "")
	}
	return strings.TrimSpace(s)
}

// removeFold removes every case-insensitive occurrence of sub from s.
func removeFold(s, sub string) string {
	if sub == "" {
		return s
	}
	var b strings.Builder
	lower := strings.ToLower(s)
	target := strings.ToLower(sub)
	for {
		i := strings.Index(lower, target)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		s = s[i+len(sub):]
		lower = lower[i+len(target):]
	}
}
