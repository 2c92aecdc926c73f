package doccomment

import (
	"regexp"
	"strings"

	"docgen/internal/domain"
)

// Extractor picks the canonical doc comment block out of normalized model output.
type Extractor struct {
	delims domain.Delimiters
	block  *regexp.Regexp
}

// NewExtractor creates an extractor for the given delimiters. Empty delimiters
// fall back to "/**" and "*/".
func NewExtractor(delims domain.Delimiters) *Extractor {
	if delims.Start == "" || delims.End == "" {
		delims = domain.DefaultDelimiters
	}
	return &Extractor{
		delims: delims,
		block:  regexp.MustCompile(regexp.QuoteMeta(delims.Start) + `[\s\S]*?` + regexp.QuoteMeta(delims.End)),
	}
}

// Delimiters returns the markers this extractor looks for.
func (e *Extractor) Delimiters() domain.Delimiters {
	return e.delims
}

// Extract returns the last complete delimited block in text. Models often echo
// the prompt or an example before the real answer, so the last block is the
// one kept.
//
// Without a complete block it takes the span from the last start marker to the
// first end marker found from there. Without any start marker the text is
// returned unchanged as a passthrough.
func (e *Extractor) Extract(text string) domain.Extraction {
	if matches := e.block.FindAllStringIndex(text, -1); len(matches) > 0 {
		last := matches[len(matches)-1]
		return domain.Extraction{Comment: text[last[0]:last[1]], Kind: domain.CleanExtraction}
	}

	start := strings.LastIndex(text, e.delims.Start)
	if start == -1 {
		return domain.Extraction{Comment: text, Kind: domain.FallbackPassthrough}
	}
	if end := strings.Index(text[start:], e.delims.End); end != -1 {
		return domain.Extraction{
			Comment: text[start : start+end+len(e.delims.End)],
			Kind:    domain.FallbackPartial,
		}
	}
	return domain.Extraction{Comment: text, Kind: domain.FallbackPassthrough}
}
