package alias

// DefaultRules is the built-in alias table used when no aliases.yaml is
// deployed. Shorthands students actually type, collected from advising
// chat transcripts.
func DefaultRules() []Rule {
	return []Rule{
		{Pattern: "math 1", MatchType: MatchContains, CourseCode: "AMT6113", CourseName: "Engineering Mathematics 1"},
		{Pattern: "math 2", MatchType: MatchContains, CourseCode: "AMT6123", CourseName: "Engineering Mathematics 2"},
		{Pattern: `engineering\s+math(ematics)?\s*1`, MatchType: MatchRegex, CourseCode: "AMT6113", CourseName: "Engineering Mathematics 1"},
		{Pattern: `engineering\s+math(ematics)?\s*2`, MatchType: MatchRegex, CourseCode: "AMT6123", CourseName: "Engineering Mathematics 2"},

		{Pattern: "data communication", MatchType: MatchContains, CourseCode: "ACE6143", CourseName: "Data Communications and Networking"},
		{Pattern: "networking", MatchType: MatchContains, CourseCode: "ACE6143", CourseName: "Data Communications and Networking"},

		{Pattern: "machine learning", MatchType: MatchContains, CourseCode: "ACE6313", CourseName: "Machine Learning", Programme: "Applied AI"},
		{Pattern: "deep learning", MatchType: MatchContains, CourseCode: "ACE6283", CourseName: "Deep Learning", Programme: "Applied AI"},
		{Pattern: "nlp", MatchType: MatchContains, CourseCode: "ACE6323", CourseName: "Natural Language Processing", Programme: "Applied AI"},
		{Pattern: "natural language processing", MatchType: MatchContains, CourseCode: "ACE6323", CourseName: "Natural Language Processing", Programme: "Applied AI"},
		{Pattern: "computer vision", MatchType: MatchContains, CourseCode: "ACE6333", CourseName: "Computer Vision", Programme: "Applied AI"},
		{Pattern: "ai ethics", MatchType: MatchContains, CourseCode: "ACE6343", CourseName: "AI Ethics and Governance", Programme: "Applied AI"},

		{Pattern: "robot operating system", MatchType: MatchContains, CourseCode: "ACE6163", CourseName: "Robot Operating Systems", Programme: "Intelligent Robotics"},
		{Pattern: "ros", MatchType: MatchExact, CourseCode: "ACE6163", CourseName: "Robot Operating Systems", Programme: "Intelligent Robotics"},
		{Pattern: "control systems", MatchType: MatchContains, CourseCode: "ACE6173", CourseName: "Control Systems Engineering", Programme: "Intelligent Robotics"},
		{Pattern: "human robot interaction", MatchType: MatchContains, CourseCode: "ACE6183", CourseName: "Human-Robot Interaction", Programme: "Intelligent Robotics"},
		{Pattern: "hri", MatchType: MatchExact, CourseCode: "ACE6183", CourseName: "Human-Robot Interaction", Programme: "Intelligent Robotics"},

		{Pattern: `industrial\s+training|internship`, MatchType: MatchRegex, CourseCode: "AHS6999", CourseName: "Industrial Training"},
	}
}

// DefaultTable builds the built-in table. Panics only on a programming
// error in DefaultRules, which the package tests would catch.
func DefaultTable() *Table {
	table, err := NewTable(DefaultRules())
	if err != nil {
		panic(err)
	}
	return table
}
