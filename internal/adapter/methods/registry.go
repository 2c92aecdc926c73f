package methods

import (
	"sync"

	"docgen/internal/port"
)

// Registry hands out one parser per language, created on first use.
type Registry struct {
	mu      sync.Mutex
	parsers map[string]port.MethodParser
}

func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]port.MethodParser)}
}

// ForPath picks the parser for path by file extension.
func (r *Registry) ForPath(path string) (port.MethodParser, Language, error) {
	lang, err := DetectLanguage(path)
	if err != nil {
		return nil, Language{}, err
	}
	parser, err := r.ForLanguage(lang)
	if err != nil {
		return nil, Language{}, err
	}
	return parser, lang, nil
}

// ForLanguage returns the parser for lang.
func (r *Registry) ForLanguage(lang Language) (port.MethodParser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.parsers[lang.Name]; ok {
		return p, nil
	}

	var parser port.MethodParser
	if lang.Name == "go" {
		parser = NewGoParser()
	} else {
		ts, err := NewTreeSitterParser(lang)
		if err != nil {
			return nil, err
		}
		parser = ts
	}
	r.parsers[lang.Name] = parser
	return parser, nil
}
