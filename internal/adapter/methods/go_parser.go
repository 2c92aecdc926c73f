package methods

import (
	"bytes"
	"go/ast"
	"go/format"
	"go/parser"
	"go/token"
	"strings"

	"docgen/internal/domain"
)

// GoParser finds function and method declarations in Go source.
type GoParser struct{}

// NewGoParser creates a new Go parser.
func NewGoParser() *GoParser {
	return &GoParser{}
}

// Language returns the language this parser handles.
func (p *GoParser) Language() string {
	return "go"
}

// Parse parses Go source code and returns one unit per function declaration.
func (p *GoParser) Parse(content []byte) ([]domain.MethodUnit, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", content, parser.ParseComments)
	if err != nil {
		return nil, err
	}

	var units []domain.MethodUnit
	for _, decl := range f.Decls {
		fn, ok := decl.(*ast.FuncDecl)
		if !ok {
			continue
		}
		units = append(units, p.extractFunction(fset, fn, content, len(units)))
	}

	return units, nil
}

// extractFunction extracts a function/method declaration.
func (p *GoParser) extractFunction(fset *token.FileSet, fn *ast.FuncDecl, content []byte, index int) domain.MethodUnit {
	startPos := fset.Position(fn.Pos())
	endPos := fset.Position(fn.End())

	start := widenToLineStart(content, startPos.Offset)
	end := endPos.Offset

	name := fn.Name.Name
	if fn.Recv != nil && len(fn.Recv.List) > 0 {
		name = p.receiverType(fn.Recv.List[0].Type) + "." + name
	}

	return domain.MethodUnit{
		ID:                    domain.MethodID(index, name),
		Name:                  name,
		SourceText:            string(content[start:end]),
		Start:                 start,
		End:                   end,
		StartLine:             startPos.Line,
		HasExistingDocComment: fn.Doc != nil,
	}
}

// receiverType returns the receiver's type name without pointer or type parameters.
func (p *GoParser) receiverType(expr ast.Expr) string {
	s := p.formatExpr(expr)
	s = strings.TrimPrefix(s, "*")
	if i := strings.Index(s, "["); i != -1 {
		s = s[:i]
	}
	return s
}

// formatExpr formats an expression to string.
func (p *GoParser) formatExpr(expr ast.Expr) string {
	var buf bytes.Buffer
	format.Node(&buf, token.NewFileSet(), expr)
	return buf.String()
}

// widenToLineStart moves offset back to the start of its line when only
// indentation precedes it, so the unit carries its own indentation.
func widenToLineStart(content []byte, offset int) int {
	i := offset
	for i > 0 {
		c := content[i-1]
		if c == '\n' {
			return i
		}
		if c != ' ' && c != '\t' {
			return offset
		}
		i--
	}
	return 0
}
