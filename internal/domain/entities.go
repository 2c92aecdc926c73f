package domain

import (
	"fmt"
	"time"
)

// MethodUnit identifies one method in a source file.
type MethodUnit struct {
	ID                    string
	Name                  string
	SourceText            string // exact substring of the file
	Start                 int    // byte offset of SourceText, -1 if unknown
	End                   int
	StartLine             int
	HasExistingDocComment bool
}

// HasSpan reports whether the unit carries usable byte offsets.
func (m MethodUnit) HasSpan() bool {
	return m.Start >= 0 && m.End >= m.Start
}

// MethodID builds the position identifier used to key patch entries.
func MethodID(index int, name string) string {
	return fmt.Sprintf("%d:%s", index, name)
}

// ResponseForm tells the normalizer how a backend delivered its output.
type ResponseForm int

const (
	FormSingle ResponseForm = iota
	FormStreamed
)

// RawResponse is the opaque model output for one method.
type RawResponse struct {
	Form      ResponseForm
	Text      string
	Fragments []string
}

// Single wraps a complete text payload.
func Single(text string) RawResponse {
	return RawResponse{Form: FormSingle, Text: text}
}

// Streamed wraps an ordered sequence of event fragments.
func Streamed(fragments []string) RawResponse {
	return RawResponse{Form: FormStreamed, Fragments: fragments}
}

// NormalizedText is a flattened model payload with its best-effort language tag.
type NormalizedText struct {
	Text string `json:"text"`
	Lang string `json:"lang"`
}

// ExtractionKind distinguishes a clean extraction from the best-effort fallbacks.
type ExtractionKind int

const (
	CleanExtraction ExtractionKind = iota
	FallbackPartial
	FallbackPassthrough
)

func (k ExtractionKind) String() string {
	switch k {
	case CleanExtraction:
		return "clean"
	case FallbackPartial:
		return "fallback-partial"
	case FallbackPassthrough:
		return "fallback-passthrough"
	default:
		return "unknown"
	}
}

// Extraction is the doc comment chosen from a NormalizedText.
type Extraction struct {
	Comment string         `json:"comment"`
	Kind    ExtractionKind `json:"kind"`
}

// IsWarning is true for every result that is not a clean extraction.
func (e Extraction) IsWarning() bool {
	return e.Kind != CleanExtraction
}

// Delimiters bound a documentation comment block.
type Delimiters struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// DefaultDelimiters is the javadoc-style block.
var DefaultDelimiters = Delimiters{Start: "/**", End: "*/"}

// GenerationRequest is what the model invocation layer receives for one method.
type GenerationRequest struct {
	Language string
	Code     string
	Inline   bool
	Hint     string

	// Delimiters are the markers the comment-only prompt asks for.
	Delimiters Delimiters
}

// Span is a byte range in the file content the patch set was built from.
type Span struct {
	Start int
	End   int
}

// PatchEntry replaces one method's original text with its documented version.
type PatchEntry struct {
	ID       string
	Span     *Span
	Original string
	Merged   string
}

// PatchSet is the ordered collection of entries for one file.
type PatchSet struct {
	entries []PatchEntry
	index   map[string]int
}

// NewPatchSet creates an empty patch set.
func NewPatchSet() *PatchSet {
	return &PatchSet{index: make(map[string]int)}
}

// Add appends an entry. An entry with an ID already present replaces the
// earlier one in place.
func (s *PatchSet) Add(e PatchEntry) {
	if s.index == nil {
		s.index = make(map[string]int)
	}
	if i, ok := s.index[e.ID]; ok {
		s.entries[i] = e
		return
	}
	s.index[e.ID] = len(s.entries)
	s.entries = append(s.entries, e)
}

// Entries returns the entries in insertion order.
func (s *PatchSet) Entries() []PatchEntry {
	if s == nil {
		return nil
	}
	out := make([]PatchEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of entries.
func (s *PatchSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// JournalEntry is the pre-run snapshot of a file kept for undo.
type JournalEntry struct {
	ID        string    `json:"id"`
	Path      string    `json:"path"`
	Before    string    `json:"before"`
	After     string    `json:"after"`
	CreatedAt time.Time `json:"created_at"`
}

// CachedResponse is a stored model response keyed by request hash.
type CachedResponse struct {
	Form      ResponseForm `json:"form"`
	Text      string       `json:"text"`
	Fragments []string     `json:"fragments,omitempty"`
	Model     string       `json:"model"`
	CreatedAt time.Time    `json:"created_at"`
}

// ToRaw converts a cached response back into a RawResponse.
func (c CachedResponse) ToRaw() RawResponse {
	return RawResponse{Form: c.Form, Text: c.Text, Fragments: c.Fragments}
}
