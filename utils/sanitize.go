// utils/sanitize.go
package utils

import (
	"regexp"
	"strings"

	"github.com/gosimple/slug"
)

var (
	tagPattern   = regexp.MustCompile(`<[^>]*>`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// SanitizeText strips HTML-tag-like substrings from client input and trims
// whitespace. Returns "" when nothing but tags and whitespace remains — the
// caller must reject that as invalid.
func SanitizeText(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

// HandleFromUsername derives the URL-safe handle shown on public profiles.
func HandleFromUsername(username string) string {
	return slug.Make(username)
}
