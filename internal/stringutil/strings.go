// Package stringutil provides common string normalization utilities
// used by the alias resolver, programme detector and catalog lookups.
package stringutil

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalize lower-cases text, folds full-width characters to their
// half-width form, applies NFKC normalization and collapses runs of
// whitespace into single spaces. Students paste queries from PDFs and
// chat apps, so width folding matters more than it looks.
func Normalize(s string) string {
	s = width.Fold.String(s)
	s = norm.NFKC.String(s)
	s = strings.ToLower(s)
	return CollapseWhitespace(s)
}

// NormalizeStrict is Normalize plus stripping everything that is not a
// letter, digit or space. Used for name-map keys where punctuation in
// course names ("AI & Ethics") must not break matching.
func NormalizeStrict(s string) string {
	s = Normalize(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		} else {
			b.WriteRune(' ')
		}
	}
	return CollapseWhitespace(b.String())
}

// CollapseWhitespace trims the string and replaces any run of
// whitespace with a single space.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// IsUpperASCII reports whether s consists solely of uppercase ASCII letters.
func IsUpperASCII(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}
