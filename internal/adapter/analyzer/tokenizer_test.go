package analyzer

import (
	"strings"
	"testing"
)

func TestTokenizer_CountTokens(t *testing.T) {
	tok := NewTokenizer()

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"   \n\t", 0},
		{"{}", 2},
		{"return x", 2},
		{"int add(int a, int b) { return a + b; }", 18},
	}
	for _, tt := range tests {
		if got := tok.CountTokens(tt.text); got != tt.want {
			t.Errorf("CountTokens(%q) = %d, want %d", tt.text, got, tt.want)
		}
	}
}

func TestTokenizer_CountTokensGrows(t *testing.T) {
	tok := NewTokenizer()
	line := "    total = total + values[i];\n"

	small := tok.CountTokens(line)
	large := tok.CountTokens(strings.Repeat(line, 100))

	if large < small*90 {
		t.Errorf("expected roughly linear growth, got %d for 1 line and %d for 100", small, large)
	}
}

func TestSplitWords(t *testing.T) {
	words := splitWords("getUser_by-id(42)")
	expected := []string{"getUser_by", "id", "42"}

	if len(words) != len(expected) {
		t.Fatalf("expected %d words, got %d: %v", len(expected), len(words), words)
	}
	for i, w := range words {
		if w != expected[i] {
			t.Errorf("word %d: expected %q, got %q", i, expected[i], w)
		}
	}
}
