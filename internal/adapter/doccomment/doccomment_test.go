package doccomment

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/internal/domain"
)

func TestExtractIdempotent(t *testing.T) {
	e := NewExtractor(domain.DefaultDelimiters)
	inputs := []string{
		"/** Short. */",
		"/**\n * Moves the block one cell.\n *\n * @param dir direction\n */",
	}
	for _, in := range inputs {
		got := e.Extract(in)
		assert.Equal(t, in, got.Comment)
		assert.Equal(t, domain.CleanExtraction, got.Kind)

		again := e.Extract(got.Comment)
		assert.Equal(t, got.Comment, again.Comment)
	}
}

func TestExtractLastBlockWins(t *testing.T) {
	e := NewExtractor(domain.DefaultDelimiters)
	text := "Example:\n/** A */\nvoid example() {}\n\nAnswer:\n/** B */"

	got := e.Extract(text)

	assert.Equal(t, "/** B */", got.Comment)
	assert.False(t, got.IsWarning())
}

func TestExtractFallbackPassthrough(t *testing.T) {
	e := NewExtractor(domain.DefaultDelimiters)
	text := "public void foo() {}\n// no doc here"

	got := e.Extract(text)

	assert.Equal(t, text, got.Comment)
	assert.Equal(t, domain.FallbackPassthrough, got.Kind)
	assert.True(t, got.IsWarning())
}

func TestExtractFallbackPartial(t *testing.T) {
	e := NewExtractor(domain.DefaultDelimiters)

	got := e.Extract("noise /**/ trailing")

	assert.Equal(t, "/**/", got.Comment)
	assert.Equal(t, domain.FallbackPartial, got.Kind)
}

func TestExtractUnterminatedStartIsPassthrough(t *testing.T) {
	e := NewExtractor(domain.DefaultDelimiters)
	text := "/** never closed"

	got := e.Extract(text)

	assert.Equal(t, text, got.Comment)
	assert.Equal(t, domain.FallbackPassthrough, got.Kind)
}

func TestExtractCustomDelimiters(t *testing.T) {
	e := NewExtractor(domain.Delimiters{Start: "/*", End: "*/"})

	got := e.Extract("/* first */ and /* Second does X. */")

	assert.Equal(t, "/* Second does X. */", got.Comment)
}

func TestExtractIsDeterministic(t *testing.T) {
	e := NewExtractor(domain.DefaultDelimiters)
	text := "/** a */ /** b */ /**/ x"
	first := e.Extract(text)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Extract(text))
	}
}

func TestMergePreservesIndentation(t *testing.T) {
	source := "    public void move(int dir) {\n        step(dir);\n    }"
	comment := "/**\n * Moves the block.\n *\n\n * @param dir direction\n */"

	merged := Merge(comment, source)

	require.True(t, strings.HasSuffix(merged, "\n"+source))
	commentPart := strings.TrimSuffix(merged, "\n"+source)
	for _, line := range strings.Split(commentPart, "\n") {
		if strings.TrimSpace(line) == "" {
			assert.Equal(t, "", line, "blank lines stay unindented")
			continue
		}
		assert.True(t, strings.HasPrefix(line, "    "), "line %q not indented", line)
	}
}

func TestMergeUnindentedAndBlankSource(t *testing.T) {
	assert.Equal(t, "/** a */\nvoid f() {}", Merge("/** a */", "void f() {}"))
	assert.Equal(t, "/** a */\n\n\n", Merge("/** a */\n", "\n\n"))
	assert.Equal(t, "\n\tfoo()", Merge("", "\tfoo()"))
}

func TestLeadingIndent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"\n\n\t\tint x;", "\t\t"},
		{"  a\n    b", "  "},
		{"a", ""},
		{"   \n  ", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LeadingIndent(tt.in), "input %q", tt.in)
	}
}

func TestRepairCollapsesNestedStarts(t *testing.T) {
	e := NewExtractor(domain.DefaultDelimiters)
	content := "class A {\n    /** stale /**\n     * Real doc.\n     */\n    void a() {}\n    /** fine */\n    void b() {}\n}"

	got, n := e.Repair(content)

	assert.Equal(t, 1, n)
	assert.Contains(t, got, "/** * Real doc. */")
	assert.Contains(t, got, "/** fine */")
	assert.NotContains(t, got, "stale")
}

func TestRepairNoChange(t *testing.T) {
	e := NewExtractor(domain.DefaultDelimiters)
	content := "/** ok */\nint f();"

	got, n := e.Repair(content)

	assert.Zero(t, n)
	assert.Equal(t, content, got)
}

func TestRepairKeepsGlobInsideComment(t *testing.T) {
	e := NewExtractor(domain.DefaultDelimiters)
	content := "/** Scans src/**/*.java files. */\nvoid scan() {}\n"

	var got string
	var n int
	assert.NotPanics(t, func() { got, n = e.Repair(content) })

	assert.Zero(t, n)
	assert.Equal(t, content, got)
}
