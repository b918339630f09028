package source

import (
	"testing"
)

func TestSpan_Cover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "disjoint spans",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 1, Start: 30, End: 40},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "nested span",
			a:        Span{File: 1, Start: 10, End: 40},
			b:        Span{File: 1, Start: 12, End: 13},
			expected: Span{File: 1, Start: 10, End: 40},
		},
		{
			name:     "other file ignored",
			a:        Span{File: 1, Start: 10, End: 20},
			b:        Span{File: 2, Start: 0, End: 50},
			expected: Span{File: 1, Start: 10, End: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Errorf("Cover() = %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestSpan_Contains(t *testing.T) {
	outer := Span{File: 1, Start: 10, End: 26}
	tests := []struct {
		name  string
		inner Span
		want  bool
	}{
		{"equal", outer, true},
		{"strict inside", Span{File: 1, Start: 12, End: 24}, true},
		{"empty at end", Span{File: 1, Start: 26, End: 26}, true},
		{"starts before", Span{File: 1, Start: 9, End: 12}, false},
		{"ends after", Span{File: 1, Start: 20, End: 27}, false},
		{"other file", Span{File: 2, Start: 12, End: 13}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.inner); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.inner, got, tt.want)
			}
		})
	}
}

func TestSpan_Basics(t *testing.T) {
	s := Span{File: 3, Start: 17, End: 18}
	if s.Empty() || s.Len() != 1 {
		t.Errorf("Empty/Len wrong for %v", s)
	}
	if s.String() != "3:17-18" {
		t.Errorf("String() = %q", s.String())
	}
	if !s.Within(18) || s.Within(17) {
		t.Errorf("Within must check the end against the length")
	}
	if (Span{Start: 5, End: 4}).Within(10) {
		t.Errorf("inverted span accepted")
	}
}
