package doccomment

import "strings"

// Repair collapses doc comments that swallowed an earlier, unterminated start
// marker, such as "/** Old /** New text */". Only the text after the last start
// marker is kept. It returns the rewritten content and the number of blocks
// changed.
func (e *Extractor) Repair(content string) (string, int) {
	repaired := 0
	out := e.block.ReplaceAllStringFunc(content, func(comment string) string {
		idx := strings.LastIndex(comment, e.delims.Start)
		if idx <= 0 {
			return comment
		}
		// "src/**/" ends the block with a start marker sharing the end marker.
		if idx+len(e.delims.Start) > len(comment)-len(e.delims.End) {
			return comment
		}
		inner := comment[idx+len(e.delims.Start) : len(comment)-len(e.delims.End)]
		repaired++
		return e.delims.Start + " " + strings.TrimSpace(inner) + " " + e.delims.End
	})
	return out, repaired
}
