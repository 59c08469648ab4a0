package router

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	domerrors "github.com/hivelab/hive-advisor-go/internal/errors"
)

// RuleSet holds the compiled routing predicates. Patterns come from
// the rule table on disk; keyword lists are fixed and act as a floor
// under whatever the table provides. Immutable after load.
type RuleSet struct {
	structurePatterns   []*regexp.Regexp
	detailsPatterns     []*regexp.Regexp
	eligibilityPatterns []*regexp.Regexp
}

// ruleFile is the on-disk YAML shape of the routing rule table.
type ruleFile struct {
	QueryPatterns struct {
		StructureQueries   []string `yaml:"structure_queries"`
		DetailsQueries     []string `yaml:"details_queries"`
		EligibilityQueries []string `yaml:"eligibility_queries"`
	} `yaml:"query_patterns"`
}

// Keyword floors. These fire on normalized (lowercased) text even when
// the rule table carries no pattern for the phrasing.
var (
	structureKeywords = []string{
		"term", "trimester", "semester", "year",
		"when can i take", "what subjects", "what courses",
		"course list", "schedule", "programme structure",
	}
	detailsKeywords = []string{
		"about", "learning outcomes", "assessment", "topics",
		"what will i learn", "content", "syllabus", "objectives",
	}
	eligibilityKeywords = []string{
		"can i take", "prerequisite", "requirement", "eligible",
		"before taking", "need to complete",
	}
)

// DefaultRuleSet returns the built-in routing rules, used when no rule
// table file is present.
func DefaultRuleSet() *RuleSet {
	rs, err := NewRuleSet(
		[]string{
			`what (subjects|courses) (in|for)`,
			`when can i take`,
			`course (list|schedule|plan)`,
		},
		[]string{
			`what (is|are) .+ about`,
			`tell me about`,
			`learning outcomes`,
			`assessment`,
		},
		[]string{
			`can i take`,
			`prerequisite`,
			`requirement`,
			`eligible`,
		},
	)
	if err != nil {
		// Built-in patterns are constants; compilation cannot fail.
		panic(err)
	}
	return rs
}

// NewRuleSet compiles the given pattern lists into a rule set.
func NewRuleSet(structure, details, eligibility []string) (*RuleSet, error) {
	compile := func(kind string, patterns []string) ([]*regexp.Regexp, error) {
		out := make([]*regexp.Regexp, 0, len(patterns))
		for i, p := range patterns {
			if strings.TrimSpace(p) == "" {
				return nil, fmt.Errorf("%s pattern %d is empty", kind, i)
			}
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("%s pattern %d %q: %w", kind, i, p, err)
			}
			out = append(out, re)
		}
		return out, nil
	}

	sp, err := compile("structure", structure)
	if err != nil {
		return nil, err
	}
	dp, err := compile("details", details)
	if err != nil {
		return nil, err
	}
	ep, err := compile("eligibility", eligibility)
	if err != nil {
		return nil, err
	}

	return &RuleSet{
		structurePatterns:   sp,
		detailsPatterns:     dp,
		eligibilityPatterns: ep,
	}, nil
}

// LoadRuleSet reads the routing rule table from path. A missing file
// is not an error; the built-in defaults apply.
func LoadRuleSet(path string) (*RuleSet, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultRuleSet(), nil
		}
		return nil, &domerrors.TableError{Path: path, Err: err}
	}

	var file ruleFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, &domerrors.TableError{Path: path, Err: err}
	}

	rs, err := NewRuleSet(
		file.QueryPatterns.StructureQueries,
		file.QueryPatterns.DetailsQueries,
		file.QueryPatterns.EligibilityQueries,
	)
	if err != nil {
		return nil, &domerrors.TableError{Path: path, Err: err}
	}
	return rs, nil
}

// MatchStructure reports whether the normalized query text reads as a
// programme-structure question (term planning, sequencing).
func (rs *RuleSet) MatchStructure(lower string) bool {
	return matchAny(lower, rs.structurePatterns, structureKeywords)
}

// MatchDetails reports whether the normalized query text asks about
// course content.
func (rs *RuleSet) MatchDetails(lower string) bool {
	return matchAny(lower, rs.detailsPatterns, detailsKeywords)
}

// MatchEligibility reports whether the normalized query text asks
// about eligibility or prerequisites.
func (rs *RuleSet) MatchEligibility(lower string) bool {
	return matchAny(lower, rs.eligibilityPatterns, eligibilityKeywords)
}

func matchAny(lower string, patterns []*regexp.Regexp, keywords []string) bool {
	for _, re := range patterns {
		if re.MatchString(lower) {
			return true
		}
	}
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
