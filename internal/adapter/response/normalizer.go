package response

import (
	"regexp"
	"strings"

	"docgen/internal/domain"
)

const (
	// EventPrefix introduces every framed fragment of a streamed response.
	EventPrefix = "data: "
	// NewlineMarker is the token some streaming endpoints send instead of "\n".
	NewlineMarker = "[h_newline]"
)

// controlTokens are framed payloads that carry no content.
var controlTokens = map[string]struct{}{
	"[DONE]":    {},
	"[newline]": {},
}

var (
	// langCommentRegex matches a leading language token glued to a doc comment,
	// e.g. "java/** Adds two numbers. */".
	langCommentRegex = regexp.MustCompile(`^(\w+)\s*(/\*\*[\s\S]+)`)
	residualPrefix   = regexp.MustCompile(`(?m)^data:\s*`)
)

// Normalizer flattens raw model output into a single clean text blob.
type Normalizer struct{}

// NewNormalizer creates a new Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize reassembles streamed fragments, unwraps a markdown fence and strips
// leftover framing. It never fails: malformed input comes back as the raw
// payload minus obvious framing.
func (n *Normalizer) Normalize(raw domain.RawResponse, defaultLang string) domain.NormalizedText {
	payload := n.payload(raw)

	var lang, code string
	if block, ok := firstFence(payload); ok {
		lang, code = block.Lang, block.Content
	} else if m := langCommentRegex.FindStringSubmatch(payload); m != nil {
		lang, code = m[1], m[2]
	} else {
		code = payload
	}
	if lang == "" {
		lang = defaultLang
	}

	code = strings.ReplaceAll(code, NewlineMarker, "\n")
	code = residualPrefix.ReplaceAllString(code, "")
	code = strings.TrimLeft(code, " \t\r\n")

	return domain.NormalizedText{Text: code, Lang: lang}
}

func (n *Normalizer) payload(raw domain.RawResponse) string {
	switch raw.Form {
	case domain.FormStreamed:
		if text, ok := ReassembleFragments(raw.Fragments); ok {
			return text
		}
		return strings.Join(raw.Fragments, "")
	default:
		if text, ok := ReassembleFragments(strings.Split(raw.Text, "\n")); ok {
			return text
		}
		return raw.Text
	}
}

// ReassembleFragments concatenates the payloads of framed fragments in order.
// The newline marker becomes "\n" and control fragments are dropped. The bool
// is false when no fragment carries the event prefix.
func ReassembleFragments(fragments []string) (string, bool) {
	var sb strings.Builder
	framed := false

	for _, fragment := range fragments {
		fragment = strings.TrimSuffix(fragment, "\r")
		if !strings.HasPrefix(fragment, EventPrefix) {
			continue
		}
		framed = true

		content := fragment[len(EventPrefix):]
		if content == "" {
			continue
		}
		if _, isControl := controlTokens[strings.TrimSpace(content)]; isControl {
			continue
		}
		// whitespace-only payloads are real tokens
		sb.WriteString(strings.ReplaceAll(content, NewlineMarker, "\n"))
	}

	return sb.String(), framed
}
