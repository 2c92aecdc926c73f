package llm

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"docgen/internal/domain"
)

//go:embed templates/*.txt
var promptTemplates embed.FS

// PromptStyle picks the instruction template sent to the model.
type PromptStyle string

const (
	// StyleFullMethod asks for the documented method in a markdown fence.
	StyleFullMethod PromptStyle = "doc_comment"
	// StyleCommentOnly asks for the bare doc comment.
	StyleCommentOnly PromptStyle = "doc_comment_only"
)

type promptData struct {
	Language string
	Code     string
	Inline   bool
	Hint     string
	Start    string
	End      string
}

// BuildPrompt renders the instruction for one method.
func BuildPrompt(style PromptStyle, req domain.GenerationRequest) (string, error) {
	name := string(style) + ".txt"
	tmplContent, err := promptTemplates.ReadFile("templates/" + name)
	if err != nil {
		return "", fmt.Errorf("failed to read template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Parse(string(tmplContent))
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	delims := req.Delimiters
	if delims.Start == "" || delims.End == "" {
		delims = domain.DefaultDelimiters
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, promptData{
		Language: req.Language,
		Code:     req.Code,
		Inline:   req.Inline,
		Hint:     req.Hint,
		Start:    delims.Start,
		End:      delims.End,
	})
	if err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
