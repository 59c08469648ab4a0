package retrieval

import "testing"

func labeled(code, programme, yearLevel string) Result {
	md := map[string]string{}
	if code != "" {
		md[MetaCourseCode] = code
	}
	if programme != "" {
		md[MetaProgramme] = programme
	}
	if yearLevel != "" {
		md[MetaYearLevel] = yearLevel
	}
	return Result{Text: code + " passage", Metadata: md}
}

func TestFilterByProgramme(t *testing.T) {
	t.Parallel()

	results := []Result{
		labeled("ACE6313", "Applied AI", ""),
		labeled("ACE6163", "Intelligent Robotics", ""),
		labeled("AMT6113", "", ""), // unlabeled, always kept
	}

	filtered := Filters{Programme: "Applied AI"}.Apply(results)
	if len(filtered) != 2 {
		t.Fatalf("filtered %d results, want 2", len(filtered))
	}
	for _, r := range filtered {
		if r.Metadata[MetaProgramme] == "Intelligent Robotics" {
			t.Error("robotics passage survived the Applied AI filter")
		}
	}
}

func TestFilterByProgrammePartialName(t *testing.T) {
	t.Parallel()

	results := []Result{
		{Text: "plan", Metadata: map[string]string{MetaProgramme: "BSc Applied AI"}},
	}
	filtered := Filters{Programme: "Applied AI"}.Apply(results)
	if len(filtered) != 1 {
		t.Errorf("partial programme name did not match: got %d results", len(filtered))
	}
}

func TestFilterByProgrammesList(t *testing.T) {
	t.Parallel()

	results := []Result{
		{Text: "shared", Metadata: map[string]string{MetaProgrammes: "Applied AI, Intelligent Robotics"}},
		{Text: "other", Metadata: map[string]string{MetaProgrammes: "FAIE"}},
	}
	filtered := Filters{Programme: "Intelligent Robotics"}.Apply(results)
	if len(filtered) != 1 || filtered[0].Text != "shared" {
		t.Errorf("filtered = %v, want only the shared passage", filtered)
	}
}

func TestFilterFallsBackWhenEmpty(t *testing.T) {
	t.Parallel()

	results := []Result{
		labeled("ACE6163", "Intelligent Robotics", ""),
		labeled("ACE6173", "Intelligent Robotics", ""),
	}

	// Nothing matches FAIE; the filter drops out rather than
	// returning nothing to rank.
	filtered := Filters{Programme: "FAIE"}.Apply(results)
	if len(filtered) != 2 {
		t.Errorf("fallback returned %d results, want all 2", len(filtered))
	}
}

func TestFilterByYearLevel(t *testing.T) {
	t.Parallel()

	results := []Result{
		labeled("AMT6113", "", "year_1"),
		labeled("ACE6313", "", "year_3"),
		labeled("AHS6999", "", ""),
	}

	filtered := Filters{YearLevel: "year_1_sem_2"}.Apply(results)
	if len(filtered) != 2 {
		t.Fatalf("filtered %d results, want 2", len(filtered))
	}
	for _, r := range filtered {
		if r.Metadata[MetaYearLevel] == "year_3" {
			t.Error("year_3 passage survived the year_1 filter")
		}
	}
}

func TestFilterByCourseCodes(t *testing.T) {
	t.Parallel()

	results := []Result{
		labeled("ACE6313", "", ""),
		labeled("ACE6283", "", ""),
		{Text: "general guidance"},
	}

	filtered := Filters{CourseCodes: []string{"ace6283"}}.Apply(results)
	if len(filtered) != 2 {
		t.Fatalf("filtered %d results, want 2", len(filtered))
	}
	for _, r := range filtered {
		if r.Metadata[MetaCourseCode] == "ACE6313" {
			t.Error("ACE6313 passage survived the code filter")
		}
	}
}

func TestEmptyFiltersPassThrough(t *testing.T) {
	t.Parallel()

	results := []Result{labeled("ACE6313", "Applied AI", "year_3")}
	filtered := Filters{}.Apply(results)
	if len(filtered) != 1 {
		t.Errorf("empty filters changed the result set: %v", filtered)
	}
}
