package doccomment

import (
	"strings"
	"unicode"
)

// Merge reindents comment to the method's indentation and prefixes it onto
// sourceText. sourceText is copied verbatim.
func Merge(comment, sourceText string) string {
	indent := LeadingIndent(sourceText)

	lines := splitLines(comment)
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = indent + line
		}
	}
	return strings.Join(lines, "\n") + "\n" + sourceText
}

// LeadingIndent returns the whitespace run that opens the first non-blank line
// of text, or "" when text is entirely blank.
func LeadingIndent(text string) string {
	for _, line := range splitLines(text) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
		return line[:len(line)-len(trimmed)]
	}
	return ""
}

// splitLines splits on "\n" and "\r\n". A trailing line break does not produce
// an empty final line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
