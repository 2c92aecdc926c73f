package methods

import (
	"context"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"docgen/internal/domain"
)

type grammar struct {
	language *sitter.Language
	methods  map[string]bool
}

func nodeSet(types ...string) map[string]bool {
	m := make(map[string]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

var jsMethods = nodeSet("function_declaration", "generator_function_declaration", "method_definition")

var grammars = map[string]func() grammar{
	"java": func() grammar {
		return grammar{java.GetLanguage(), nodeSet("method_declaration", "constructor_declaration")}
	},
	"javascript": func() grammar { return grammar{javascript.GetLanguage(), jsMethods} },
	"typescript": func() grammar { return grammar{typescript.GetLanguage(), jsMethods} },
	"tsx":        func() grammar { return grammar{tsx.GetLanguage(), jsMethods} },
	"c":          func() grammar { return grammar{c.GetLanguage(), nodeSet("function_definition")} },
	"cpp":        func() grammar { return grammar{cpp.GetLanguage(), nodeSet("function_definition")} },
	"csharp": func() grammar {
		return grammar{csharp.GetLanguage(), nodeSet("method_declaration", "constructor_declaration")}
	},
	"kotlin": func() grammar { return grammar{kotlin.GetLanguage(), nodeSet("function_declaration")} },
	"php": func() grammar {
		return grammar{php.GetLanguage(), nodeSet("method_declaration", "function_definition")}
	},
	"rust": func() grammar { return grammar{rust.GetLanguage(), nodeSet("function_item")} },
}

// TreeSitterParser finds method declarations with a tree-sitter grammar.
// A sitter.Parser is not safe for concurrent use, so Parse is serialized.
type TreeSitterParser struct {
	lang    Language
	grammar grammar

	mu     sync.Mutex
	parser *sitter.Parser
}

// NewTreeSitterParser creates a parser for lang. It returns
// domain.ErrUnsupportedLanguage when no grammar is bundled for it.
func NewTreeSitterParser(lang Language) (*TreeSitterParser, error) {
	load, ok := grammars[lang.Name]
	if !ok {
		return nil, domain.ErrUnsupportedLanguage
	}
	g := load()
	parser := sitter.NewParser()
	parser.SetLanguage(g.language)
	return &TreeSitterParser{lang: lang, grammar: g, parser: parser}, nil
}

func (p *TreeSitterParser) Language() string {
	return p.lang.Name
}

// Parse returns one unit per method, in source order. Methods nested inside
// another method's body are not reported.
func (p *TreeSitterParser) Parse(content []byte) ([]domain.MethodUnit, error) {
	p.mu.Lock()
	tree, err := p.parser.ParseCtx(context.Background(), nil, content)
	p.mu.Unlock()
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	var units []domain.MethodUnit
	p.walk(tree.RootNode(), content, &units)
	return units, nil
}

func (p *TreeSitterParser) walk(node *sitter.Node, content []byte, units *[]domain.MethodUnit) {
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child == nil {
			continue
		}
		if p.grammar.methods[child.Type()] {
			*units = append(*units, p.unit(child, content, len(*units)))
			continue
		}
		p.walk(child, content, units)
	}
}

func (p *TreeSitterParser) unit(node *sitter.Node, content []byte, index int) domain.MethodUnit {
	outer := node
	if parent := node.Parent(); parent != nil && parent.Type() == "export_statement" {
		outer = parent
	}

	start := widenToLineStart(content, int(outer.StartByte()))
	end := int(outer.EndByte())
	name := methodName(node, content)

	return domain.MethodUnit{
		ID:                    domain.MethodID(index, name),
		Name:                  name,
		SourceText:            string(content[start:end]),
		Start:                 start,
		End:                   end,
		StartLine:             int(outer.StartPoint().Row) + 1,
		HasExistingDocComment: p.hasDocComment(outer, content),
	}
}

// hasDocComment reports whether a block comment opening with the language's
// start marker sits directly above node, separated only by whitespace.
func (p *TreeSitterParser) hasDocComment(node *sitter.Node, content []byte) bool {
	prev := node.PrevNamedSibling()
	if prev == nil || !strings.Contains(prev.Type(), "comment") {
		return false
	}
	text := prev.Content(content)
	if !strings.HasPrefix(text, p.lang.Delimiters.Start) || !strings.HasSuffix(text, p.lang.Delimiters.End) {
		return false
	}
	between := content[prev.EndByte():node.StartByte()]
	return strings.TrimSpace(string(between)) == ""
}

// methodName reads the "name" field, then follows C-style declarator chains,
// then falls back to the first identifier child.
func methodName(node *sitter.Node, content []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Content(content)
	}

	decl := node.ChildByFieldName("declarator")
	for decl != nil {
		next := decl.ChildByFieldName("declarator")
		if next == nil {
			return decl.Content(content)
		}
		decl = next
	}

	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		if child != nil && strings.HasSuffix(child.Type(), "identifier") {
			return child.Content(content)
		}
	}
	return "anonymous"
}
