package course

import (
	"reflect"
	"testing"
)

func TestExtractCodes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []Code
	}{
		{"single code", "Tell me about ACE6313", []Code{"ACE6313"}},
		{"multiple codes", "Compare ACE6313 and AMT6113 please", []Code{"ACE6313", "AMT6113"}},
		{"duplicates removed", "ACE6313 or ACE6313?", []Code{"ACE6313"}},
		{"lowercase not a code", "tell me about ace6313", nil},
		{"too few digits", "ACE631", nil},
		{"embedded in word", "XACE6313Y", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := ExtractCodes(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ExtractCodes(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsCode(t *testing.T) {
	t.Parallel()

	if !IsCode("ACE6313") {
		t.Error("ACE6313 should be a valid code")
	}
	if IsCode("ACE6313 ") {
		t.Error("trailing space should invalidate the code")
	}
	if IsCode("ace6313") {
		t.Error("lowercase should not be a valid code")
	}
}

func TestPrefix(t *testing.T) {
	t.Parallel()

	if got := Code("ARC6103").Prefix(); got != "ARC" {
		t.Errorf("Prefix() = %q, want ARC", got)
	}
	if got := Code("AB").Prefix(); got != "" {
		t.Errorf("Prefix() on short code = %q, want empty", got)
	}
}
