package catalog

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/hivelab/hive-advisor-go/internal/course"
	domerrors "github.com/hivelab/hive-advisor-go/internal/errors"
	"github.com/hivelab/hive-advisor-go/internal/storage"
	"github.com/hivelab/hive-advisor-go/internal/stringutil"
)

// Tokens shorter than this carry no signal for name matching.
const minTokenLength = 3

// Catalog answers eligibility and plan questions over the stored
// course catalog. Safe for concurrent use.
type Catalog struct {
	db *storage.DB
}

// New wraps a catalog database.
func New(db *storage.DB) *Catalog {
	return &Catalog{db: db}
}

// Course returns one catalog entry by canonical code.
func (c *Catalog) Course(ctx context.Context, code string) (*storage.Course, error) {
	return c.db.GetCourseByCode(ctx, strings.ToUpper(code))
}

// Eligibility is the outcome of a prerequisite check.
type Eligibility struct {
	CourseCode     string
	Eligible       bool
	MissingPrereqs []string
}

// CheckEligibility reports whether the given passed courses satisfy
// code's prerequisites. Unknown courses are an error; the caller must
// not guess.
func (c *Catalog) CheckEligibility(ctx context.Context, code string, passed []string) (Eligibility, error) {
	code = strings.ToUpper(code)
	entry, err := c.db.GetCourseByCode(ctx, code)
	if err != nil {
		return Eligibility{}, err
	}

	passedSet := make(map[string]struct{}, len(passed))
	for _, p := range passed {
		passedSet[strings.ToUpper(p)] = struct{}{}
	}

	var missing []string
	for _, prereq := range entry.Prereq {
		if _, ok := passedSet[prereq]; !ok {
			missing = append(missing, prereq)
		}
	}

	return Eligibility{
		CourseCode:     code,
		Eligible:       len(missing) == 0,
		MissingPrereqs: missing,
	}, nil
}

// Recommendation is a per-trimester study suggestion.
type Recommendation struct {
	Trimester   string
	Recommended []string
	Blocked     []string
	Notes       []string
}

// RecommendForTrimester splits one plan bucket into courses the
// student can take now and courses still blocked by prerequisites.
// Failed courses that block a planned course are pushed to the front
// as retakes.
func (c *Catalog) RecommendForTrimester(ctx context.Context, programme, trimesterKey string, passed, failed []string) (Recommendation, error) {
	upper := func(codes []string) []string {
		out := make([]string, 0, len(codes))
		for _, code := range codes {
			out = append(out, strings.ToUpper(code))
		}
		return out
	}
	passed = upper(passed)
	failed = upper(failed)

	planCourses, err := c.db.PlanCourses(ctx, programme, trimesterKey)
	if err != nil {
		return Recommendation{}, err
	}

	rec := Recommendation{Trimester: trimesterKey}
	passedSet := make(map[string]struct{}, len(passed))
	for _, p := range passed {
		passedSet[p] = struct{}{}
	}

	for _, code := range planCourses {
		elig, err := c.CheckEligibility(ctx, code, passed)
		if domerrors.Is(err, domerrors.ErrNotFound) {
			// Plan references a course missing from the catalog.
			rec.Notes = append(rec.Notes, fmt.Sprintf("%s not in catalog", code))
			continue
		}
		if err != nil {
			return Recommendation{}, err
		}

		_, alreadyPassed := passedSet[code]
		if elig.Eligible && !alreadyPassed {
			rec.Recommended = append(rec.Recommended, code)
			continue
		}
		rec.Blocked = append(rec.Blocked, code)
		if len(elig.MissingPrereqs) > 0 {
			rec.Notes = append(rec.Notes, fmt.Sprintf("%s blocked (missing prereq: %s)",
				code, strings.Join(elig.MissingPrereqs, ", ")))
		}
	}

	// A failed course that gates anything in this bucket is the most
	// urgent retake.
	for _, f := range failed {
		if slices.Contains(rec.Recommended, f) || slices.Contains(passed, f) {
			continue
		}
		for _, code := range planCourses {
			entry, err := c.db.GetCourseByCode(ctx, code)
			if domerrors.Is(err, domerrors.ErrNotFound) {
				continue
			}
			if err != nil {
				return Recommendation{}, err
			}
			if slices.Contains(entry.Prereq, f) {
				rec.Recommended = append([]string{f}, rec.Recommended...)
				rec.Notes = append(rec.Notes, fmt.Sprintf("Retake recommended: %s", f))
				break
			}
		}
	}

	return rec, nil
}

// ResolveCourseFromText maps free text to a single catalog course
// code: an explicit code wins, then an exact name match, then the
// name with the highest token overlap. Empty string means no match.
func (c *Catalog) ResolveCourseFromText(ctx context.Context, text string) (string, error) {
	for _, code := range course.ExtractCodes(text) {
		if _, err := c.db.GetCourseByCode(ctx, code.String()); err == nil {
			return code.String(), nil
		} else if !domerrors.Is(err, domerrors.ErrNotFound) {
			return "", err
		}
	}

	normalized := stringutil.NormalizeStrict(text)
	if normalized == "" {
		return "", nil
	}

	all, err := c.db.GetAllCourses(ctx)
	if err != nil {
		return "", err
	}

	for _, entry := range all {
		if stringutil.NormalizeStrict(entry.Name) == normalized {
			return entry.Code, nil
		}
	}

	var tokens []string
	for _, token := range strings.Fields(normalized) {
		if len(token) >= minTokenLength {
			tokens = append(tokens, token)
		}
	}

	bestScore := 0
	bestCode := ""
	for _, entry := range all {
		name := stringutil.NormalizeStrict(entry.Name)
		score := 0
		for _, token := range tokens {
			if strings.Contains(name, token) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			bestCode = entry.Code
		}
	}
	return bestCode, nil
}
