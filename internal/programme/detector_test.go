package programme

import "testing"

func TestDetectByCourseCode(t *testing.T) {
	t.Parallel()
	d := NewDetector()

	// Specialization code uniquely implies Applied AI.
	r := d.Detect("Tell me about ACE6313", nil)
	if r.Programme != AppliedAI {
		t.Errorf("Programme = %q, want %q", r.Programme, AppliedAI)
	}
	if r.Confidence < 0.9 {
		t.Errorf("Confidence = %v, want >= 0.9", r.Confidence)
	}
	if r.Source != SourceCourseCode {
		t.Errorf("Source = %q, want %q", r.Source, SourceCourseCode)
	}
	if r.CourseCode != "ACE6313" {
		t.Errorf("CourseCode = %q, want ACE6313", r.CourseCode)
	}
}

func TestDetectPrecedence(t *testing.T) {
	t.Parallel()
	d := NewDetector()

	tests := []struct {
		name           string
		query          string
		ctx            *Context
		wantProgramme  string
		wantSource     string
		wantConfidence float64
	}{
		{
			name:           "explicit mention beats context",
			query:          "I want to study Applied AI",
			ctx:            &Context{Programme: IntelligentRobotics},
			wantProgramme:  AppliedAI,
			wantSource:     SourceExplicit,
			wantConfidence: 1.0,
		},
		{
			name:           "context is sticky against course code (tie favors context)",
			query:          "can I take ACE6163 next term",
			ctx:            &Context{Programme: AppliedAI},
			wantProgramme:  AppliedAI,
			wantSource:     SourceContext,
			wantConfidence: 0.95,
		},
		{
			name:           "robotics specialization code without context",
			query:          "what is ACE6163 about",
			ctx:            nil,
			wantProgramme:  IntelligentRobotics,
			wantSource:     SourceCourseCode,
			wantConfidence: 0.95,
		},
		{
			name:           "prefix evidence",
			query:          "details on ARC6103",
			ctx:            nil,
			wantProgramme:  IntelligentRobotics,
			wantSource:     SourceCourseCode,
			wantConfidence: 0.90,
		},
		{
			name:           "foundation prefix is weak evidence",
			query:          "when is AMT6113 offered",
			ctx:            nil,
			wantProgramme:  FAIE,
			wantSource:     SourceCourseCode,
			wantConfidence: 0.70,
		},
		{
			name:           "keyword signal",
			query:          "I like robots and drones",
			ctx:            nil,
			wantProgramme:  IntelligentRobotics,
			wantSource:     SourceKeywords,
			wantConfidence: 0.80, // two keyword hits: robot, drone
		},
		{
			name:           "history fallback",
			query:          "what should I take next",
			ctx:            &Context{History: []string{"I enjoyed the computer vision class", "neural network assignment was fun"}},
			wantProgramme:  AppliedAI,
			wantSource:     SourceHistory,
			wantConfidence: 0.50,
		},
		{
			name:           "no signal",
			query:          "hello there",
			ctx:            nil,
			wantProgramme:  "",
			wantSource:     SourceNone,
			wantConfidence: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := d.Detect(tt.query, tt.ctx)
			if r.Programme != tt.wantProgramme {
				t.Errorf("Programme = %q, want %q", r.Programme, tt.wantProgramme)
			}
			if r.Source != tt.wantSource {
				t.Errorf("Source = %q, want %q", r.Source, tt.wantSource)
			}
			if r.Confidence != tt.wantConfidence {
				t.Errorf("Confidence = %v, want %v", r.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestDetectSpecializationBeatsFoundationPrefix(t *testing.T) {
	t.Parallel()
	d := NewDetector()

	// ACE6313 carries the shared ACE foundation prefix but is a known
	// Applied AI elective; the full-code check must win.
	r := d.Detect("eligibility for ACE6313", nil)
	if r.Programme != AppliedAI {
		t.Errorf("Programme = %q, want %q", r.Programme, AppliedAI)
	}
	if r.Confidence != 0.95 {
		t.Errorf("Confidence = %v, want 0.95", r.Confidence)
	}
}

func TestDetectFoundationCodeSecondPass(t *testing.T) {
	t.Parallel()
	d := NewDetector()

	// A foundation code followed by a specific one: the specific code wins.
	r := d.Detect("AMT6113 and ACE6163 in the same term?", nil)
	if r.Programme != IntelligentRobotics {
		t.Errorf("Programme = %q, want %q", r.Programme, IntelligentRobotics)
	}
}

func TestKeywordConfidenceCap(t *testing.T) {
	t.Parallel()
	d := NewDetector()

	r := d.Detect("machine learning deep learning nlp computer vision transformer", nil)
	if r.Confidence != 0.85 {
		t.Errorf("Confidence = %v, want capped 0.85", r.Confidence)
	}
}

func TestByCourseCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		code string
		want string
	}{
		{"ACE6313", AppliedAI},
		{"ACE6163", IntelligentRobotics},
		{"AAC6101", AppliedAI},
		{"ARR6202", IntelligentRobotics},
		{"AMT6113", FAIE},
		{"XYZ1234", ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := ByCourseCode(tt.code); got != tt.want {
			t.Errorf("ByCourseCode(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestDetectIdempotent(t *testing.T) {
	t.Parallel()
	d := NewDetector()

	ctx := &Context{Programme: AppliedAI, History: []string{"robots"}}
	first := d.Detect("can I take ACE6163", ctx)
	second := d.Detect("can I take ACE6163", ctx)
	if first != second {
		t.Errorf("Detect is not idempotent: %+v vs %+v", first, second)
	}
}
