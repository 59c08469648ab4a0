// Package router classifies advising queries and selects the
// knowledge layers the caller should search. Routing is a pure
// function over the query text and a session snapshot; rules are
// evaluated strictly in priority order and the first match wins.
package router

import (
	"fmt"
	"strings"

	"github.com/hivelab/hive-advisor-go/internal/alias"
	"github.com/hivelab/hive-advisor-go/internal/course"
	"github.com/hivelab/hive-advisor-go/internal/session"
	"github.com/hivelab/hive-advisor-go/internal/stringutil"
)

// QueryType classifies what the student is asking for.
type QueryType string

const (
	QueryStructureOnly QueryType = "structure_only"
	QueryDetailsOnly   QueryType = "details_only"
	QueryMixed         QueryType = "mixed"
	QueryUnknown       QueryType = "unknown"
)

// TargetLayer names the knowledge layer(s) a decision targets.
type TargetLayer string

const (
	LayerStructure TargetLayer = "structure"
	LayerDetails   TargetLayer = "details"
	LayerBoth      TargetLayer = "both"
	LayerNone      TargetLayer = "none"
)

// Decision is the routing outcome for one query. It is recomputed per
// request and never persisted.
type Decision struct {
	QueryType            QueryType
	TargetLayer          TargetLayer
	ShouldQueryStructure bool
	ShouldQueryDetails   bool

	// RequiresCourseCode marks the details half of the decision as
	// code-gated: the details store must not be searched until
	// DetectedCourseCodes is non-empty. The router flags the
	// requirement; the caller satisfies it via alias resolution.
	RequiresCourseCode bool

	DetectedCourseCodes []string
	Reasons             []string
	Priority            int
}

// AliasProbe is the slice of the alias resolver the router needs: it
// only asks whether the text maps to any course at all.
type AliasProbe interface {
	Resolve(text, programme string) []alias.Match
}

// Router routes queries against an immutable rule set. Safe for
// concurrent use by any number of callers.
type Router struct {
	rules   *RuleSet
	aliases AliasProbe
}

// New builds a router. A nil rule set falls back to the built-in
// defaults; a nil probe disables alias evidence (alias-implied routes
// then never fire).
func New(rules *RuleSet, aliases AliasProbe) *Router {
	if rules == nil {
		rules = DefaultRuleSet()
	}
	return &Router{rules: rules, aliases: aliases}
}

// Route classifies one query. It never fails: malformed or empty text
// falls through to the unknown route.
func (r *Router) Route(text string, sess session.Snapshot) Decision {
	lower := stringutil.Normalize(text)
	codes := course.Strings(course.ExtractCodes(text))

	isStructure := r.rules.MatchStructure(lower)

	// Explicit course code wins over everything else.
	if len(codes) > 0 {
		reason := fmt.Sprintf("explicit course code(s): %s", strings.Join(codes, ", "))

		if isStructure {
			return Decision{
				QueryType:            QueryMixed,
				TargetLayer:          LayerBoth,
				ShouldQueryStructure: true,
				ShouldQueryDetails:   true,
				RequiresCourseCode:   false,
				DetectedCourseCodes:  codes,
				Reasons:              []string{reason, "structure and details evidence combined"},
				Priority:             1,
			}
		}

		return Decision{
			QueryType:           QueryDetailsOnly,
			TargetLayer:         LayerDetails,
			ShouldQueryDetails:  true,
			RequiresCourseCode:  true,
			DetectedCourseCodes: codes,
			Reasons:             []string{reason, "details query with course code"},
			Priority:            1,
		}
	}

	var aliasMatched bool
	if r.aliases != nil {
		aliasMatched = len(r.aliases.Resolve(text, sess.Programme)) > 0
	}

	// Structure phrasing plus an alias hit is a mixed query: the
	// details half stays code-gated until the caller resolves the
	// alias.
	if isStructure && aliasMatched {
		return Decision{
			QueryType:            QueryMixed,
			TargetLayer:          LayerBoth,
			ShouldQueryStructure: true,
			ShouldQueryDetails:   true,
			RequiresCourseCode:   true,
			Reasons:              []string{"structure query pattern matched", "alias match implies details"},
			Priority:             1,
		}
	}

	if isStructure {
		return Decision{
			QueryType:            QueryStructureOnly,
			TargetLayer:          LayerStructure,
			ShouldQueryStructure: true,
			Reasons:              []string{"structure query pattern matched"},
			Priority:             3,
		}
	}

	if r.rules.MatchEligibility(lower) {
		return Decision{
			QueryType:            QueryStructureOnly,
			TargetLayer:          LayerStructure,
			ShouldQueryStructure: true,
			Reasons:              []string{"eligibility or prerequisite query"},
			Priority:             3,
		}
	}

	// Details phrasing, or an alias hit on its own, needs a course
	// code resolved before the details store may be searched.
	if r.rules.MatchDetails(lower) || aliasMatched {
		return Decision{
			QueryType:          QueryDetailsOnly,
			TargetLayer:        LayerDetails,
			ShouldQueryDetails: true,
			RequiresCourseCode: true,
			Reasons:            []string{"details query without explicit code", "alias resolution needed"},
			Priority:           2,
		}
	}

	// A course selected earlier in the session carries follow-up
	// questions like "what about the assessment".
	if sess.SelectedCourseCode != "" {
		return Decision{
			QueryType:           QueryDetailsOnly,
			TargetLayer:         LayerDetails,
			ShouldQueryDetails:  true,
			RequiresCourseCode:  true,
			DetectedCourseCodes: []string{sess.SelectedCourseCode},
			Reasons:             []string{fmt.Sprintf("using course from session: %s", sess.SelectedCourseCode)},
			Priority:            2,
		}
	}

	return Decision{
		QueryType:   QueryUnknown,
		TargetLayer: LayerNone,
		Reasons:     []string{"query intent unclear"},
		Priority:    6,
	}
}

// NeedsAliasResolution reports whether the caller should attempt alias
// resolution before acting on the decision.
func NeedsAliasResolution(d Decision) bool {
	return d.RequiresCourseCode && len(d.DetectedCourseCodes) == 0
}
