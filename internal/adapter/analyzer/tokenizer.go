package analyzer

import (
	"strings"
	"unicode"
)

// Tokenizer estimates how many model tokens a piece of source code costs.
type Tokenizer struct{}

// NewTokenizer creates a new Tokenizer.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{}
}

// CountTokens returns an approximate token count for LLM budget estimation.
// Identifiers cost about 1.3 tokens each and every punctuation rune costs one.
func (t *Tokenizer) CountTokens(text string) int {
	words := splitWords(text)
	symbols := 0
	for _, r := range text {
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			symbols++
		}
	}
	if len(words) == 0 {
		return symbols
	}
	// Rough estimate: average word is about 1.3 tokens
	return int(float64(len(words))*1.3) + symbols
}

// splitWords splits text into words using unicode word boundaries.
func splitWords(text string) []string {
	var words []string
	var current strings.Builder

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			current.WriteRune(r)
		} else {
			if current.Len() > 0 {
				words = append(words, current.String())
				current.Reset()
			}
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}

	return words
}
