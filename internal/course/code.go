// Package course defines the canonical course code type shared by the
// router, the programme detector and the catalog.
package course

import "regexp"

// codeRegex matches the canonical course-code shape: three uppercase
// letters followed by four digits (e.g., ACE6313). Matching is
// case-sensitive; lowercase look-alikes are not treated as codes.
var codeRegex = regexp.MustCompile(`\b[A-Z]{3}[0-9]{4}\b`)

// Code is a canonical course code such as "ACE6313".
type Code string

// String returns the code as a plain string.
func (c Code) String() string {
	return string(c)
}

// Prefix returns the three-letter programme prefix of the code.
func (c Code) Prefix() string {
	if len(c) < 3 {
		return ""
	}
	return string(c[:3])
}

// IsCode reports whether s is exactly one canonical course code.
func IsCode(s string) bool {
	return codeRegex.FindString(s) == s
}

// ExtractCodes returns all canonical course codes found in text,
// in order of appearance, with duplicates removed.
func ExtractCodes(text string) []Code {
	matches := codeRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	codes := make([]Code, 0, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			codes = append(codes, Code(m))
		}
	}
	return codes
}

// Strings converts a slice of codes to plain strings.
func Strings(codes []Code) []string {
	if len(codes) == 0 {
		return nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = string(c)
	}
	return out
}
