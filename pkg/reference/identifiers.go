// Package reference holds the canonical catalog ("reference truth") and the
// lookup indexes the scorer consults: by normalized title, by ISRC, and by
// ISWC.
package reference

import (
	"regexp"
	"strings"
)

// Strict identifier formats. Anything that fails these is treated as absent,
// never indexed, and never an error; an unparsable ID must not be able to
// produce a false match.
var (
	isrcPattern = regexp.MustCompile(`^[A-Za-z]{2}[- ]?[A-Za-z0-9]{3}[- ]?[0-9]{2}[- ]?[0-9]{5}$`)
	iswcPattern = regexp.MustCompile(`^[Tt]-[0-9]{3}\.[0-9]{3}\.[0-9]{3}-[0-9]$`)
)

// CleanISRC trims an ISRC and lowercases it for use as a lookup key, or
// returns "" when the value does not have a valid ISRC shape.
func CleanISRC(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || !isrcPattern.MatchString(s) {
		return ""
	}
	return s
}

// CleanISWC trims an ISWC and lowercases it for use as a lookup key, or
// returns "" when the value does not have a valid ISWC shape.
func CleanISWC(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || !iswcPattern.MatchString(s) {
		return ""
	}
	return s
}

// ValidISRC reports whether s has a valid ISRC shape.
func ValidISRC(s string) bool { return CleanISRC(s) != "" }

// ValidISWC reports whether s has a valid ISWC shape.
func ValidISWC(s string) bool { return CleanISWC(s) != "" }
