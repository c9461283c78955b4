package parser

import (
	"strings"
	"testing"
)

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"Tyto alba", "Tyto alba"},
		{"  Tyto alba  ", "Tyto alba"},
		{"Tyto \t  alba", "Tyto alba"},
		{"Strix aluco", "Strix aluco"},
		{"Noise\n", "Noise"},
	}
	for _, tt := range tests {
		if got := NormalizeLabel(tt.in); got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParse_NormalizesLabels(t *testing.T) {
	rows, err := Audacity().Parse(strings.NewReader("0\t1\t Tyto   alba \n"), "a.txt")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Parse() = %d rows, want 1", len(rows))
	}
	if got := rows[0].Segment.Label; got != "Tyto alba" {
		t.Errorf("label = %q, want %q", got, "Tyto alba")
	}
}
