package retrieval

import (
	"strings"
)

// Metadata keys recognized by the filters.
const (
	MetaProgramme  = "programme"
	MetaProgrammes = "programmes" // comma-separated list
	MetaYearLevel  = "year_level"
	MetaCourseCode = "course_code"
)

// Filters narrow retrieved passages by session context. Passages
// without the relevant metadata are kept: filters narrow, they never
// exclude unlabeled content. If a filter would remove every result it
// is dropped instead, so the caller always has something to rank.
type Filters struct {
	Programme   string
	CourseCodes []string
	YearLevel   string
}

// Apply runs all configured filters in order.
func (f Filters) Apply(results []Result) []Result {
	filtered := results
	if f.Programme != "" {
		filtered = filterByProgramme(filtered, f.Programme)
	}
	if f.YearLevel != "" {
		filtered = filterByYearLevel(filtered, f.YearLevel)
	}
	if len(f.CourseCodes) > 0 {
		filtered = filterByCourseCodes(filtered, f.CourseCodes)
	}
	return filtered
}

func filterByProgramme(results []Result, programme string) []Result {
	if len(results) == 0 {
		return results
	}
	want := normalizeProgramme(programme)

	var filtered []Result
	for _, r := range results {
		if matchesProgramme(r.Metadata, want) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return results
	}
	return filtered
}

func matchesProgramme(metadata map[string]string, want string) bool {
	if list, ok := metadata[MetaProgrammes]; ok {
		for _, prog := range strings.Split(list, ",") {
			if programmeOverlaps(normalizeProgramme(prog), want) {
				return true
			}
		}
		return false
	}
	if prog, ok := metadata[MetaProgramme]; ok {
		return programmeOverlaps(normalizeProgramme(prog), want)
	}
	// No programme metadata: include by default.
	return true
}

// programmeOverlaps tolerates partial names: "APPLIED_AI" matches
// "BSC_APPLIED_AI" in either direction.
func programmeOverlaps(have, want string) bool {
	if have == "" || want == "" {
		return false
	}
	return strings.Contains(have, want) || strings.Contains(want, have)
}

func normalizeProgramme(programme string) string {
	return strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(programme)), " ", "_")
}

func filterByYearLevel(results []Result, yearLevel string) []Result {
	if len(results) == 0 {
		return results
	}
	// "year_2_sem_1" also matches passages labeled just "year_2".
	baseYear, _, _ := strings.Cut(yearLevel, "_sem")

	var filtered []Result
	for _, r := range results {
		level, ok := r.Metadata[MetaYearLevel]
		if !ok {
			filtered = append(filtered, r)
			continue
		}
		level = strings.ToLower(level)
		if strings.Contains(level, yearLevel) || strings.Contains(level, baseYear) {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return results
	}
	return filtered
}

func filterByCourseCodes(results []Result, codes []string) []Result {
	if len(results) == 0 {
		return results
	}
	wanted := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		wanted[strings.ToUpper(code)] = struct{}{}
	}

	var filtered []Result
	for _, r := range results {
		code, ok := r.Metadata[MetaCourseCode]
		if !ok {
			filtered = append(filtered, r)
			continue
		}
		if _, match := wanted[strings.ToUpper(code)]; match {
			filtered = append(filtered, r)
		}
	}
	if len(filtered) == 0 {
		return results
	}
	return filtered
}
