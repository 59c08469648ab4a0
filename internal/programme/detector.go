package programme

import (
	"strings"

	"github.com/hivelab/hive-advisor-go/internal/course"
	"github.com/hivelab/hive-advisor-go/internal/stringutil"
)

// Evidence sources, ordered by the confidence they carry. Used as the
// metrics label for detection counts.
const (
	SourceExplicit   = "explicit"
	SourceContext    = "context"
	SourceCourseCode = "course_code"
	SourceKeywords   = "keywords"
	SourceHistory    = "history"
	SourceNone       = "none"
)

// Confidence levels per evidence source.
const (
	confidenceExplicit       = 1.0
	confidenceContext        = 0.95
	confidenceSpecialization = 0.95
	confidencePrefix         = 0.90
	confidenceFoundation     = 0.70
	confidenceKeywordBase    = 0.60
	confidenceKeywordStep    = 0.10
	confidenceKeywordCap     = 0.85
	confidenceHistory        = 0.50
)

// historyWindow is how many recent turns the history scan considers.
const historyWindow = 5

// Result of programme detection. Ephemeral, recomputed per request.
type Result struct {
	Programme  string  // "" when nothing was detected
	Confidence float64 // 0.0 to 1.0
	Source     string
	CourseCode course.Code // set when a code provided the evidence
}

// Context carries the session evidence the detector may consult.
type Context struct {
	Programme string   // programme already persisted in the session
	History   []string // recent turn texts, oldest first
}

// Detector infers the student's programme. Pure over immutable keyword
// tables; safe for concurrent use.
type Detector struct{}

// NewDetector creates a detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect infers the programme for a query given optional session context.
//
// Evidence precedence: an explicit programme mention in the query beats
// everything; otherwise a programme already in the session context is
// sticky and wins ties against course-code evidence (both 0.95), which
// keeps a conversation from oscillating between programmes. Course-code
// evidence wins only when the context carries nothing. Keyword and
// history signals fill in below the persistence threshold.
func (d *Detector) Detect(query string, ctx *Context) Result {
	normalized := stringutil.Normalize(query)

	// 1. Explicit programme mention.
	for _, mention := range appliedAIMentions {
		if strings.Contains(normalized, mention) {
			return Result{Programme: AppliedAI, Confidence: confidenceExplicit, Source: SourceExplicit}
		}
	}
	for _, mention := range roboticsMentions {
		if strings.Contains(normalized, mention) {
			return Result{Programme: IntelligentRobotics, Confidence: confidenceExplicit, Source: SourceExplicit}
		}
	}

	// 2. Sticky session context.
	if ctx != nil && ctx.Programme != "" {
		return Result{Programme: ctx.Programme, Confidence: confidenceContext, Source: SourceContext}
	}

	// 3. Course-code evidence.
	if r, ok := d.detectByCodes(query); ok {
		return r
	}

	// 4. Keyword signals.
	if r, ok := detectByKeywords(normalized); ok {
		return r
	}

	// 5. Recent conversation history.
	if ctx != nil && len(ctx.History) > 0 {
		if r, ok := detectByHistory(ctx.History); ok {
			return r
		}
	}

	return Result{Source: SourceNone}
}

// DetectByCourseCode resolves a single known code directly, bypassing
// context. Used when the caller already isolated a code.
func (d *Detector) DetectByCourseCode(code course.Code) Result {
	if p := ByCourseCode(code.String()); p != "" {
		confidence := confidenceSpecialization
		if p == FAIE {
			confidence = confidenceFoundation
		}
		return Result{Programme: p, Confidence: confidence, Source: SourceCourseCode, CourseCode: code}
	}
	return Result{Source: SourceNone}
}

func (d *Detector) detectByCodes(query string) (Result, bool) {
	for _, code := range course.ExtractCodes(query) {
		full := code.String()

		if appliedAICourses[full] {
			return Result{Programme: AppliedAI, Confidence: confidenceSpecialization, Source: SourceCourseCode, CourseCode: code}, true
		}
		if roboticsCourses[full] {
			return Result{Programme: IntelligentRobotics, Confidence: confidenceSpecialization, Source: SourceCourseCode, CourseCode: code}, true
		}

		prefix := code.Prefix()
		if appliedAIPrefixes[prefix] {
			return Result{Programme: AppliedAI, Confidence: confidencePrefix, Source: SourceCourseCode, CourseCode: code}, true
		}
		if roboticsPrefixes[prefix] {
			return Result{Programme: IntelligentRobotics, Confidence: confidencePrefix, Source: SourceCourseCode, CourseCode: code}, true
		}
		if faiePrefixes[prefix] {
			// Foundation codes are shared; weak evidence, keep scanning
			// in case a later code is specific.
			continue
		}
	}

	// Second pass: settle for a foundation code if that is all there is.
	for _, code := range course.ExtractCodes(query) {
		if faiePrefixes[code.Prefix()] {
			return Result{Programme: FAIE, Confidence: confidenceFoundation, Source: SourceCourseCode, CourseCode: code}, true
		}
	}

	return Result{}, false
}

func detectByKeywords(normalized string) (Result, bool) {
	aiScore := keywordScore(normalized, appliedAIKeywords)
	roboticsScore := keywordScore(normalized, roboticsKeywords)

	switch {
	case aiScore > roboticsScore && aiScore > 0:
		return Result{Programme: AppliedAI, Confidence: keywordConfidence(aiScore), Source: SourceKeywords}, true
	case roboticsScore > aiScore && roboticsScore > 0:
		return Result{Programme: IntelligentRobotics, Confidence: keywordConfidence(roboticsScore), Source: SourceKeywords}, true
	}
	return Result{}, false
}

func detectByHistory(history []string) (Result, bool) {
	start := len(history) - historyWindow
	if start < 0 {
		start = 0
	}
	text := stringutil.Normalize(strings.Join(history[start:], " "))

	aiScore := keywordScore(text, appliedAIKeywords)
	roboticsScore := keywordScore(text, roboticsKeywords)

	switch {
	case aiScore > roboticsScore && aiScore > 0:
		return Result{Programme: AppliedAI, Confidence: confidenceHistory, Source: SourceHistory}, true
	case roboticsScore > aiScore && roboticsScore > 0:
		return Result{Programme: IntelligentRobotics, Confidence: confidenceHistory, Source: SourceHistory}, true
	}
	return Result{}, false
}

func keywordScore(normalized string, keywords []string) int {
	score := 0
	for _, kw := range keywords {
		if strings.Contains(normalized, kw) {
			score++
		}
	}
	return score
}

func keywordConfidence(score int) float64 {
	c := confidenceKeywordBase + float64(score)*confidenceKeywordStep
	if c > confidenceKeywordCap {
		return confidenceKeywordCap
	}
	return c
}
