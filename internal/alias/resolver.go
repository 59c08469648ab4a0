package alias

import (
	"github.com/hivelab/hive-advisor-go/internal/stringutil"
)

// Match is one resolved alias: the pattern that fired and the canonical
// course it maps to.
type Match struct {
	MatchedPattern string
	MatchType      string
	CourseCode     string
	CourseName     string
	Programme      string
}

// Resolver scans the static alias table. It is a pure function over the
// immutable table and safe for concurrent use without locking.
type Resolver struct {
	table *Table
}

// NewResolver creates a resolver over the given table.
func NewResolver(table *Table) *Resolver {
	if table == nil {
		table = &Table{}
	}
	return &Resolver{table: table}
}

// Resolve returns all aliases matching the text, in table order, with
// duplicate course codes removed (first table hit wins). If programme is
// non-empty, rules scoped to a different programme are skipped; rules
// scoped "ALL" always apply. Overlapping matches that map to different
// course codes are all returned: precedence beyond table order is a
// table-quality concern, not resolver logic. Nothing matching yields an
// empty result, never an error.
func (r *Resolver) Resolve(text, programme string) []Match {
	normalized := stringutil.Normalize(text)
	if normalized == "" {
		return nil
	}

	var matches []Match
	seenCodes := make(map[string]bool)

	for i := range r.table.rules {
		rule := &r.table.rules[i]

		if programme != "" && rule.Programme != ProgrammeAll && rule.Programme != programme {
			continue
		}
		if !rule.matches(normalized) {
			continue
		}
		if seenCodes[rule.CourseCode] {
			continue
		}
		seenCodes[rule.CourseCode] = true

		matches = append(matches, Match{
			MatchedPattern: rule.Pattern,
			MatchType:      rule.MatchType,
			CourseCode:     rule.CourseCode,
			CourseName:     rule.CourseName,
			Programme:      rule.Programme,
		})
	}

	return matches
}

// ResolveSingle returns the course code of the first match, or "" when
// nothing matches.
func (r *Resolver) ResolveSingle(text, programme string) string {
	matches := r.Resolve(text, programme)
	if len(matches) == 0 {
		return ""
	}
	return matches[0].CourseCode
}

// CourseCodes extracts the distinct course codes from matches,
// preserving order.
func CourseCodes(matches []Match) []string {
	if len(matches) == 0 {
		return nil
	}
	codes := make([]string, 0, len(matches))
	for _, m := range matches {
		codes = append(codes, m.CourseCode)
	}
	return codes
}
