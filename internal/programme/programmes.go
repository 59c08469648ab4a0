// Package programme detects which degree programme a student is asking
// about, from course codes, explicit mentions, keywords and session
// context.
package programme

// Programme identifiers. FAIE is the shared foundation year feeding both
// specialized programmes.
const (
	AppliedAI           = "Applied AI"
	IntelligentRobotics = "Intelligent Robotics"
	FAIE                = "FAIE"
)

// Course-code prefixes per programme.
var (
	appliedAIPrefixes = map[string]bool{
		"AAC": true, "AAM": true, "AAT": true, "AAE": true,
	}
	roboticsPrefixes = map[string]bool{
		"ARC": true, "ARR": true, "ARE": true, "ARL": true, "ARM": true, "ARA": true,
	}
	faiePrefixes = map[string]bool{
		"AMT": true, "ACE": true, "ALE": true, "AEE": true, "AHS": true, "AAP": true,
	}
)

// Specialization electives share the ACE prefix, so they are resolved by
// full code before any prefix check.
var (
	appliedAICourses = map[string]bool{
		"ACE6313": true, "ACE6283": true, "ACE6323": true, "ACE6333": true,
		"ACE6343": true, "ACE6253": true, "ACE6263": true,
	}
	roboticsCourses = map[string]bool{
		"ACE6163": true, "ACE6173": true, "ACE6183": true, "ACE6193": true,
		"ACE6203": true, "ACE6213": true, "ACE6223": true, "ACE6233": true,
	}
)

// Topic keywords per programme, matched on normalized query text.
var (
	appliedAIKeywords = []string{
		"applied ai", "machine learning", "deep learning", "nlp",
		"natural language", "computer vision", "generative ai",
		"gen ai", "ai ethics", "neural network", "transformer",
	}
	roboticsKeywords = []string{
		"robot", "robotics", "drone", "uav", "autonomous",
		"mechatronics", "actuator", "sensor", "control system",
		"human-robot", "hri", "manipulation",
	}
)

// Explicit programme mentions resolve at full confidence.
var (
	appliedAIMentions = []string{
		"applied ai",
		"applied artificial intelligence",
	}
	roboticsMentions = []string{
		"intelligent robotics",
		"robotics programme",
		"robotics program",
		"study robotics",
		"studying robotics",
	}
)

// ByCourseCode returns the programme a canonical course code belongs to,
// or "" when the code is not recognized.
func ByCourseCode(code string) string {
	if appliedAICourses[code] {
		return AppliedAI
	}
	if roboticsCourses[code] {
		return IntelligentRobotics
	}
	if len(code) >= 3 {
		prefix := code[:3]
		if appliedAIPrefixes[prefix] {
			return AppliedAI
		}
		if roboticsPrefixes[prefix] {
			return IntelligentRobotics
		}
		if faiePrefixes[prefix] {
			return FAIE
		}
	}
	return ""
}

// IsKnown reports whether name is one of the defined programmes.
func IsKnown(name string) bool {
	return name == AppliedAI || name == IntelligentRobotics || name == FAIE
}
