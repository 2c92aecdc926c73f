package methods

import (
	"errors"
	"strings"
	"testing"

	"docgen/internal/domain"
)

const javaSource = `package demo;

public class Counter {
    private int n;

    /** Already documented. */
    public int get() {
        return n;
    }

    @Override
    public String toString() {
        return "Counter";
    }

    public Counter() {
        n = 0;
    }
}
`

func TestTreeSitterJava(t *testing.T) {
	lang, _ := LookupLanguage("java")
	p, err := NewTreeSitterParser(lang)
	if err != nil {
		t.Fatal(err)
	}

	units, err := p.Parse([]byte(javaSource))
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(units))
	}

	names := []string{"get", "toString", "Counter"}
	for i, u := range units {
		if u.Name != names[i] {
			t.Errorf("unit %d: expected name %q, got %q", i, names[i], u.Name)
		}
		if javaSource[u.Start:u.End] != u.SourceText {
			t.Errorf("unit %s: span does not match source text", u.Name)
		}
		if !strings.HasPrefix(u.SourceText, "    ") {
			t.Errorf("unit %s: expected indentation to be kept, got %q", u.Name, u.SourceText)
		}
	}

	if !units[0].HasExistingDocComment {
		t.Error("get should be reported as documented")
	}
	if units[1].HasExistingDocComment || units[2].HasExistingDocComment {
		t.Error("only get is documented")
	}
	if !strings.Contains(units[1].SourceText, "@Override") {
		t.Error("annotations belong to the method")
	}
	if units[0].ID != "0:get" {
		t.Errorf("unexpected id %q", units[0].ID)
	}
}

func TestTreeSitterJavaScriptExport(t *testing.T) {
	src := "// helpers\nexport function add(a, b) {\n  return a + b;\n}\n\nfunction sub(a, b) {\n  return a - b;\n}\n"
	lang, _ := LookupLanguage("javascript")
	p, err := NewTreeSitterParser(lang)
	if err != nil {
		t.Fatal(err)
	}

	units, err := p.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if !strings.HasPrefix(units[0].SourceText, "export function add") {
		t.Errorf("export keyword should be part of the unit, got %q", units[0].SourceText)
	}
	if units[0].StartLine != 2 {
		t.Errorf("expected line 2, got %d", units[0].StartLine)
	}
	if units[0].HasExistingDocComment {
		t.Error("a line comment is not a doc comment")
	}
	if units[1].Name != "sub" {
		t.Errorf("expected sub, got %q", units[1].Name)
	}
}

func TestTreeSitterCFunctionName(t *testing.T) {
	src := "static int *make(int n) {\n    return 0;\n}\n"
	lang, _ := LookupLanguage("c")
	p, err := NewTreeSitterParser(lang)
	if err != nil {
		t.Fatal(err)
	}

	units, err := p.Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 1 || units[0].Name != "make" {
		t.Fatalf("expected one unit named make, got %+v", units)
	}
}

func TestGoParser(t *testing.T) {
	src := `package demo

type S struct{}

// Documented does things.
func Documented() {}

func (s *S) Method() int {
	return 1
}
`
	units, err := NewGoParser().Parse([]byte(src))
	if err != nil {
		t.Fatal(err)
	}
	if len(units) != 2 {
		t.Fatalf("expected 2 units, got %d", len(units))
	}
	if !units[0].HasExistingDocComment {
		t.Error("Documented has a doc comment")
	}
	if units[1].Name != "S.Method" {
		t.Errorf("expected S.Method, got %q", units[1].Name)
	}
	if src[units[1].Start:units[1].End] != units[1].SourceText {
		t.Error("span does not match source text")
	}
	if units[1].StartLine != 8 {
		t.Errorf("expected line 8, got %d", units[1].StartLine)
	}
}

func TestGoParserInvalidSource(t *testing.T) {
	if _, err := NewGoParser().Parse([]byte("not go")); err == nil {
		t.Error("expected parse error")
	}
}

func TestRegistryForPath(t *testing.T) {
	r := NewRegistry()

	p, lang, err := r.ForPath("src/Main.java")
	if err != nil {
		t.Fatal(err)
	}
	if lang.Name != "java" || p.Language() != "java" {
		t.Errorf("expected java, got %s/%s", lang.Name, p.Language())
	}

	again, _, _ := r.ForPath("Other.java")
	if again != p {
		t.Error("parsers should be reused per language")
	}

	gp, lang, err := r.ForPath("main.go")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := gp.(*GoParser); !ok {
		t.Errorf("expected GoParser, got %T", gp)
	}
	if lang.Delimiters.Start != "/*" {
		t.Errorf("go uses plain block comments, got %q", lang.Delimiters.Start)
	}

	if _, _, err := r.ForPath("notes.txt"); !errors.Is(err, domain.ErrUnsupportedLanguage) {
		t.Errorf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestSupportedGlobs(t *testing.T) {
	globs := SupportedGlobs()
	found := false
	for _, g := range globs {
		if g == "**/*.java" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected **/*.java in %v", globs)
	}
}
