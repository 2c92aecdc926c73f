package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"docgen/internal/domain"
)

// MockBackend returns a canned documented method without calling a model.
type MockBackend struct {
	mu    sync.Mutex
	calls int

	// Respond overrides the canned response when set.
	Respond func(req domain.GenerationRequest) (domain.RawResponse, error)
}

func NewMockBackend() *MockBackend {
	return &MockBackend{}
}

func (m *MockBackend) Name() string {
	return "mock"
}

// Calls returns how many times Invoke ran.
func (m *MockBackend) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockBackend) Invoke(ctx context.Context, req domain.GenerationRequest) (domain.RawResponse, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return domain.RawResponse{}, err
	}
	if m.Respond != nil {
		return m.Respond(req)
	}

	delims := req.Delimiters
	if delims.Start == "" || delims.End == "" {
		delims = domain.DefaultDelimiters
	}
	comment := fmt.Sprintf("%s\n * %s\n %s", delims.Start, summarize(req.Code), delims.End)
	text := fmt.Sprintf("```%s\n%s\n%s\n```", req.Language, comment, strings.TrimSpace(req.Code))
	return domain.Single(text), nil
}

// summarize names the method by its first line.
func summarize(code string) string {
	first := strings.TrimSpace(code)
	if i := strings.IndexAny(first, "{\n"); i != -1 {
		first = strings.TrimSpace(first[:i])
	}
	if first == "" {
		return "Generated documentation."
	}
	return "Documents " + first + "."
}
