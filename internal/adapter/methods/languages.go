package methods

import (
	"fmt"
	"path/filepath"
	"strings"

	"docgen/internal/domain"
)

// Language describes how methods of one language are documented.
type Language struct {
	Name       string
	Extensions []string
	Delimiters domain.Delimiters
	// Hint is an extra prompt sentence for languages that need guidance.
	Hint string
}

var languages = []Language{
	{Name: "java", Extensions: []string{".java"}, Delimiters: domain.DefaultDelimiters},
	{Name: "javascript", Extensions: []string{".js", ".jsx", ".mjs", ".cjs"}, Delimiters: domain.DefaultDelimiters},
	{Name: "typescript", Extensions: []string{".ts"}, Delimiters: domain.DefaultDelimiters},
	{Name: "tsx", Extensions: []string{".tsx"}, Delimiters: domain.DefaultDelimiters},
	{Name: "c", Extensions: []string{".c", ".h"}, Delimiters: domain.DefaultDelimiters},
	{Name: "cpp", Extensions: []string{".cpp", ".cc", ".cxx", ".hpp", ".hh"}, Delimiters: domain.DefaultDelimiters},
	{Name: "csharp", Extensions: []string{".cs"}, Delimiters: domain.DefaultDelimiters},
	{Name: "kotlin", Extensions: []string{".kt", ".kts"}, Delimiters: domain.DefaultDelimiters},
	{Name: "php", Extensions: []string{".php"}, Delimiters: domain.DefaultDelimiters},
	{Name: "rust", Extensions: []string{".rs"}, Delimiters: domain.DefaultDelimiters},
	{
		Name:       "go",
		Extensions: []string{".go"},
		Delimiters: domain.Delimiters{Start: "/*", End: "*/"},
		Hint:       "Write it as a single /* ... */ block, not as // line comments.",
	},
}

// DetectLanguage maps a file extension to a supported language.
func DetectLanguage(path string) (Language, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, lang := range languages {
		for _, e := range lang.Extensions {
			if e == ext {
				return lang, nil
			}
		}
	}
	return Language{}, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, ext)
}

// LookupLanguage finds a language by name.
func LookupLanguage(name string) (Language, bool) {
	for _, lang := range languages {
		if lang.Name == name {
			return lang, true
		}
	}
	return Language{}, false
}

// SupportedGlobs returns a "**/*<ext>" pattern for every supported extension.
func SupportedGlobs() []string {
	var globs []string
	for _, lang := range languages {
		for _, ext := range lang.Extensions {
			globs = append(globs, "**/*"+ext)
		}
	}
	return globs
}
