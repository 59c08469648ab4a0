package storage

// Course is one catalog entry. Prereq holds canonical course codes.
type Course struct {
	Code     string
	Name     string
	Credits  int
	Synopsis string
	Prereq   []string
}
