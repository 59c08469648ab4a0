// Package replyutil provides utility functions for assembling chat replies.
package replyutil

import (
	"fmt"
	"strings"
)

// Builder assembles a reply from lines and bulleted sections. The
// zero value is ready to use.
type Builder struct {
	parts []string
}

// New creates an empty reply builder.
func New() *Builder {
	return &Builder{}
}

// Linef appends one formatted line to the reply.
func (b *Builder) Linef(format string, args ...any) *Builder {
	b.parts = append(b.parts, fmt.Sprintf(format, args...))
	return b
}

// Lines appends each given line to the reply. Empty lines are skipped.
func (b *Builder) Lines(lines ...string) *Builder {
	for _, line := range lines {
		if line != "" {
			b.parts = append(b.parts, line)
		}
	}
	return b
}

// Section appends a heading followed by one bullet per item. Nothing
// is appended when items is empty.
func (b *Builder) Section(heading string, items []string) *Builder {
	if len(items) == 0 {
		return b
	}
	b.parts = append(b.parts, heading)
	for _, item := range items {
		b.parts = append(b.parts, "- "+item)
	}
	return b
}

// Empty reports whether nothing has been appended yet.
func (b *Builder) Empty() bool {
	return len(b.parts) == 0
}

// String renders the reply, one part per line.
func (b *Builder) String() string {
	return strings.Join(b.parts, "\n")
}

// JoinCodes renders a course code list for inline use, e.g.
// "ACE6313, ACE6343".
func JoinCodes(codes []string) string {
	return strings.Join(codes, ", ")
}
