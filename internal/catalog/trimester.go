package catalog

import (
	"fmt"
	"regexp"
	"strings"
)

// Plan bucket keys follow the "Year<N>_T<M>" convention used by the
// programme plan files.
var trimesterPatterns = []*regexp.Regexp{
	regexp.MustCompile(`year\s*(\d)\s*(?:trimester|semester|sem)\s*(\d)`),
	regexp.MustCompile(`(\d)\s*year\s*(?:trimester|semester|sem)\s*(\d)`),
	regexp.MustCompile(`y\s*(\d)\s*[st]\s*(\d)`),
}

var ordinalYears = map[string]string{
	"first": "1", "second": "2", "third": "3", "fourth": "4",
}

// ParseTrimester extracts a plan bucket key from free text, e.g.
// "year 2 sem 1" becomes "Year2_T1". Empty string means no trimester
// reference was found.
func ParseTrimester(text string) string {
	t := strings.ToLower(text)
	for word, digit := range ordinalYears {
		t = strings.ReplaceAll(t, word, digit)
	}

	for _, re := range trimesterPatterns {
		if m := re.FindStringSubmatch(t); m != nil {
			return fmt.Sprintf("Year%s_T%s", m[1], m[2])
		}
	}
	return ""
}

var trimesterKeyRe = regexp.MustCompile(`^Year(\d)_T(\d)$`)

// TrimesterLabel renders a plan bucket key as prose, e.g. "Year2_T1"
// becomes "Year 2 Trimester 1". Keys outside the convention pass
// through unchanged.
func TrimesterLabel(key string) string {
	m := trimesterKeyRe.FindStringSubmatch(key)
	if m == nil {
		return key
	}
	return fmt.Sprintf("Year %s Trimester %s", m[1], m[2])
}

// TrimesterYearLevel maps a plan bucket key to the year-level
// identifier used by retrieval metadata, e.g. "Year2_T1" to
// "year_2_sem_1". Empty string for keys outside the convention.
func TrimesterYearLevel(key string) string {
	m := trimesterKeyRe.FindStringSubmatch(key)
	if m == nil {
		return ""
	}
	return fmt.Sprintf("year_%s_sem_%s", m[1], m[2])
}

// Year level identifiers used by retrieval metadata filters, ordered
// so that the more specific semester forms win over the bare year.
var yearLevelPatterns = []struct {
	re    *regexp.Regexp
	level string
}{
	{regexp.MustCompile(`\by1s1\b|\byear 1 semester 1\b`), "year_1_sem_1"},
	{regexp.MustCompile(`\by1s2\b|\byear 1 semester 2\b`), "year_1_sem_2"},
	{regexp.MustCompile(`\by2s1\b|\byear 2 semester 1\b`), "year_2_sem_1"},
	{regexp.MustCompile(`\by2s2\b|\byear 2 semester 2\b`), "year_2_sem_2"},
	{regexp.MustCompile(`\by3s1\b|\byear 3 semester 1\b`), "year_3_sem_1"},
	{regexp.MustCompile(`\by3s2\b|\byear 3 semester 2\b`), "year_3_sem_2"},
	{regexp.MustCompile(`\by4s1\b|\byear 4 semester 1\b`), "year_4_sem_1"},
	{regexp.MustCompile(`\by4s2\b|\byear 4 semester 2\b`), "year_4_sem_2"},
	{regexp.MustCompile(`\bfirst year\b|\byear 1\b|\by1\b`), "year_1"},
	{regexp.MustCompile(`\bsecond year\b|\byear 2\b|\by2\b`), "year_2"},
	{regexp.MustCompile(`\bthird year\b|\byear 3\b|\by3\b`), "year_3"},
	{regexp.MustCompile(`\bfinal year\b|\byear 4\b|\by4\b|\bfyp\b`), "year_4"},
}

// ParseYearLevel extracts a year-level identifier from free text for
// retrieval filtering. Empty string means no year reference.
func ParseYearLevel(text string) string {
	lower := strings.ToLower(text)
	for _, p := range yearLevelPatterns {
		if p.re.MatchString(lower) {
			return p.level
		}
	}
	return ""
}
