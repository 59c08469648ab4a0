// Package alias resolves informal course references ("math 1",
// "networking") to canonical course codes using a static rule table
// loaded at startup.
package alias

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	domerrors "github.com/hivelab/hive-advisor-go/internal/errors"
	"github.com/hivelab/hive-advisor-go/internal/stringutil"
)

// Match types supported by alias rules.
const (
	MatchContains = "contains" // substring containment on normalized text
	MatchExact    = "exact"    // equality on normalized text
	MatchRegex    = "regex"    // case-insensitive pattern search
)

// ProgrammeAll is the wildcard programme scope: the rule applies to
// every programme.
const ProgrammeAll = "ALL"

// Rule maps one informal phrase to a canonical course code.
// Rules are immutable after load.
type Rule struct {
	Pattern    string `yaml:"pattern"`
	MatchType  string `yaml:"match_type"`
	CourseCode string `yaml:"course_code"`
	CourseName string `yaml:"course_name"`
	Programme  string `yaml:"programme,omitempty"` // empty or "ALL" = unscoped

	re *regexp.Regexp // compiled form for MatchRegex rules
}

// Table is an ordered, immutable list of alias rules.
type Table struct {
	rules []Rule
}

// tableFile is the on-disk YAML shape of the alias table.
type tableFile struct {
	Aliases []Rule `yaml:"aliases"`
}

// NewTable builds a table from rules, compiling regex patterns and
// validating match types. Rule order is preserved: it is the only
// precedence the resolver applies.
func NewTable(rules []Rule) (*Table, error) {
	compiled := make([]Rule, 0, len(rules))
	for i, r := range rules {
		switch r.MatchType {
		case MatchContains, MatchExact:
		case MatchRegex:
			re, err := regexp.Compile("(?i)" + r.Pattern)
			if err != nil {
				return nil, fmt.Errorf("alias rule %d (%q): %w", i, r.Pattern, err)
			}
			r.re = re
		default:
			return nil, fmt.Errorf("alias rule %d (%q): unknown match type %q", i, r.Pattern, r.MatchType)
		}
		if r.CourseCode == "" {
			return nil, fmt.Errorf("alias rule %d (%q): missing course code", i, r.Pattern)
		}
		if r.Programme == "" {
			r.Programme = ProgrammeAll
		}
		compiled = append(compiled, r)
	}
	return &Table{rules: compiled}, nil
}

// LoadTable reads an alias table from a YAML file. A missing file is a
// valid, empty configuration; a malformed file is a startup error.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Table{}, nil
		}
		return nil, domerrors.NewTableError(path, err)
	}

	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, domerrors.NewTableError(path, err)
	}

	table, err := NewTable(file.Aliases)
	if err != nil {
		return nil, domerrors.NewTableError(path, err)
	}
	return table, nil
}

// Len returns the number of rules in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rules)
}

// PatternsFor returns all alias patterns registered for a course code.
func (t *Table) PatternsFor(courseCode string) []string {
	if t == nil {
		return nil
	}
	var patterns []string
	for _, r := range t.rules {
		if r.CourseCode == courseCode {
			patterns = append(patterns, r.Pattern)
		}
	}
	return patterns
}

// matches reports whether the rule fires for the given normalized text.
func (r *Rule) matches(normalized string) bool {
	switch r.MatchType {
	case MatchContains:
		pattern := stringutil.Normalize(r.Pattern)
		return pattern != "" && strings.Contains(normalized, pattern)
	case MatchExact:
		return normalized == stringutil.Normalize(r.Pattern)
	case MatchRegex:
		return r.re.MatchString(normalized)
	}
	return false
}
