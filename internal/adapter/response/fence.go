package response

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// codeFence is a fenced block found in a model payload.
type codeFence struct {
	Lang    string
	Content string
}

// inlineFenceRegex matches a fence that does not sit on its own lines,
// e.g. "```java/** ... */```".
var inlineFenceRegex = regexp.MustCompile("```(\\w+)?\\n?([\\s\\S]+?)```")

// firstFence returns the fenced code block that opens first in source.
// Line-level fences are read from the markdown AST and inline ones with a
// regex.
func firstFence(source string) (codeFence, bool) {
	if !strings.Contains(source, "```") {
		return codeFence{}, false
	}
	block, at, astOK := firstASTFence([]byte(source))

	m := inlineFenceRegex.FindStringSubmatchIndex(source)
	if m != nil && (!astOK || m[0] < at) {
		inline := codeFence{Content: source[m[4]:m[5]]}
		if m[2] >= 0 {
			inline.Lang = source[m[2]:m[3]]
		}
		return inline, true
	}
	return block, astOK
}

// firstASTFence also returns the byte offset of the opening fence.
func firstASTFence(source []byte) (codeFence, int, bool) {
	root := goldmark.DefaultParser().Parse(text.NewReader(source))

	var found *codeFence
	at := -1
	walker := func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fenced, ok := node.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		// An unterminated fence swallows the rest of the document; the
		// regex fallback handles malformed output more predictably.
		if !hasClosingFence(fenced, source) {
			return ast.WalkContinue, nil
		}

		var block codeFence
		if fenced.Info != nil {
			block.Lang = firstWord(string(fenced.Info.Text(source)))
		}
		var content bytes.Buffer
		lines := fenced.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			content.Write(line.Value(source))
		}
		block.Content = content.String()
		found = &block
		at = openingOffset(fenced, source)
		return ast.WalkStop, nil
	}

	if err := ast.Walk(root, walker); err != nil || found == nil {
		return codeFence{}, -1, false
	}
	return *found, at, true
}

// openingOffset locates the ``` that opens fenced.
func openingOffset(fenced *ast.FencedCodeBlock, source []byte) int {
	anchor := len(source)
	switch {
	case fenced.Info != nil:
		anchor = fenced.Info.Segment.Start
	case fenced.Lines().Len() > 0:
		anchor = fenced.Lines().At(0).Start
	}
	return bytes.LastIndex(source[:anchor], []byte("```"))
}

// hasClosingFence reports whether a closing ``` follows the block's last line.
func hasClosingFence(fenced *ast.FencedCodeBlock, source []byte) bool {
	lines := fenced.Lines()
	var rest []byte
	if lines.Len() == 0 {
		// Empty block: look after the opening fence line.
		if fenced.Info != nil {
			rest = source[fenced.Info.Segment.Stop:]
		} else {
			return bytes.Count(source, []byte("```")) >= 2
		}
	} else {
		rest = source[lines.At(lines.Len()-1).Stop:]
	}
	for _, line := range strings.Split(string(rest), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		return strings.HasPrefix(trimmed, "```")
	}
	return false
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
