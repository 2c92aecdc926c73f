package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docgen/config"
	"docgen/internal/adapter/response"
	"docgen/internal/domain"
)

func testRequest() domain.GenerationRequest {
	return domain.GenerationRequest{
		Language: "java",
		Code:     "int add(int a, int b) { return a + b; }",
	}
}

func TestBuildPrompt(t *testing.T) {
	req := testRequest()
	req.Inline = true

	prompt, err := BuildPrompt(StyleFullMethod, req)
	require.NoError(t, err)

	assert.Contains(t, prompt, "following java method")
	assert.Contains(t, prompt, req.Code)
	assert.Contains(t, prompt, "Add inline comments")
	assert.Contains(t, prompt, "Don't include any explanations in your response.")

	req.Inline = false
	req.Hint = "Write it as a single block."
	prompt, err = BuildPrompt(StyleFullMethod, req)
	require.NoError(t, err)
	assert.Contains(t, prompt, "Write it as a single block.")
	assert.NotContains(t, prompt, "Add inline comments")
}

func TestBuildPromptCommentOnlyUsesDelimiters(t *testing.T) {
	req := testRequest()
	req.Delimiters = domain.Delimiters{Start: "/*", End: "*/"}
	req.Hint = "Write it as a single block."

	prompt, err := BuildPrompt(StyleCommentOnly, req)
	require.NoError(t, err)

	assert.Contains(t, prompt, "wrapped with /* ... */")
	assert.Contains(t, prompt, "Write it as a single block.")
}

func TestChatClientInvoke(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"`+"```java\\n/** Adds. */\\nint add() {}\\n```"+`"}}]}`)
	}))
	defer server.Close()

	client := NewChatClient("openai", server.URL, "secret", "gpt-test", Options{Temperature: 0.5})
	raw, err := client.Invoke(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.FormSingle, raw.Form)
	assert.Contains(t, raw.Text, "/** Adds. */")
	assert.Equal(t, "gpt-test", got.Model)
	assert.False(t, got.Stream)
	require.Len(t, got.Messages, 1)
	assert.Contains(t, got.Messages[0].Content, "int add(int a, int b)")
}

func TestChatClientSendsZeroTemperature(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"/** a */"}}]}`)
	}))
	defer server.Close()

	client := NewChatClient("openai", server.URL, "", "m", Options{Temperature: 0})
	_, err := client.Invoke(context.Background(), testRequest())
	require.NoError(t, err)

	temp, ok := body["temperature"]
	require.True(t, ok, "temperature must always be sent")
	assert.Equal(t, float64(0), temp)
}

func TestAzureClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/openai/deployments/docs-gpt4/chat/completions", r.URL.Path)
		assert.Equal(t, "2024-02-01", r.URL.Query().Get("api-version"))
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		assert.Empty(t, r.Header.Get("Authorization"))
		fmt.Fprint(w, `{"choices":[{"message":{"role":"assistant","content":"/** a */"}}]}`)
	}))
	defer server.Close()

	client := NewAzureClient(server.URL+"/", "secret", "docs-gpt4", "2024-02-01", Options{})
	assert.Equal(t, "azure:docs-gpt4", client.Name())

	raw, err := client.Invoke(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, "/** a */", raw.Text)
}

func TestChatClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewChatClient("openai", server.URL, "", "m", Options{})
	_, err := client.Invoke(context.Background(), testRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestChatClientAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":{"message":"bad key","type":"auth"}}`)
	}))
	defer server.Close()

	client := NewChatClient("openai", server.URL, "", "m", Options{})
	_, err := client.Invoke(context.Background(), testRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestStreamClientCollectsFragments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Contains(t, req.Messages[0].Content, "Only output the doc comment")

		w.Header().Set("Content-Type", "text/event-stream")
		lines := []string{
			"data: /**",
			"data: [h_newline]",
			"",
			`data: {"choices":[{"delta":{"content":" * Adds.\n"}}]}`,
			": keep-alive",
			"data:  */",
			"data: [DONE]",
		}
		fmt.Fprint(w, strings.Join(lines, "\n")+"\n")
	}))
	defer server.Close()

	client := NewStreamClient(NewChatClient("stream", server.URL, "", "m", Options{}))
	raw, err := client.Invoke(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, domain.FormStreamed, raw.Form)
	assert.Equal(t, []string{
		"data: /**",
		"data: [h_newline]",
		"data:  * Adds.",
		"data: [h_newline]",
		"data:  */",
		"data: [DONE]",
	}, raw.Fragments)

	norm := response.NewNormalizer().Normalize(raw, "java")
	assert.Equal(t, "/**\n * Adds.\n */", norm.Text)
}

func TestStreamClientKeepsWhitespaceDeltas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		for _, token := range []string{"/**", "\n ", "* Adds", " ", "two */"} {
			data, _ := json.Marshal(map[string]any{
				"choices": []any{map[string]any{"delta": map[string]string{"content": token}}},
			})
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer server.Close()

	client := NewStreamClient(NewChatClient("stream", server.URL, "", "m", Options{}))
	raw, err := client.Invoke(context.Background(), testRequest())
	require.NoError(t, err)

	norm := response.NewNormalizer().Normalize(raw, "java")
	assert.Equal(t, "/**\n * Adds two */", norm.Text)
}

func TestGeminiClient(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "m:generateContent")
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			fmt.Fprint(w, `{"candidates":[{"content":{"role":"model","parts":[{"text":"/** Adds. */"}]}}]}`)
			return
		}
		fmt.Fprint(w, `{"candidates":[],"promptFeedback":{"blockReason":"SAFETY"}}`)
	}))
	defer server.Close()

	client, err := NewGeminiClient(context.Background(), "key", "m", server.URL, Options{})
	require.NoError(t, err)
	assert.Equal(t, "gemini:m", client.Name())

	raw, err := client.Invoke(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Equal(t, domain.Single("/** Adds. */"), raw)

	_, err = client.Invoke(context.Background(), testRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestMockBackend(t *testing.T) {
	m := NewMockBackend()
	raw, err := m.Invoke(context.Background(), testRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, m.Calls())
	assert.True(t, strings.HasPrefix(raw.Text, "```java\n/**"))
	assert.Contains(t, raw.Text, "Documents int add(int a, int b).")
}

func TestNewBackend(t *testing.T) {
	ctx := context.Background()

	b, err := NewBackend(ctx, config.LLMConfig{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", b.Name())

	_, err = NewBackend(ctx, config.LLMConfig{Provider: "nope"})
	assert.Error(t, err)

	_, err = NewBackend(ctx, config.LLMConfig{Provider: "custom"})
	assert.Error(t, err, "custom needs a base url")

	t.Setenv("DOCGEN_TEST_MISSING_KEY", "")
	_, err = NewBackend(ctx, config.LLMConfig{Provider: "openai", APIKeyEnv: "DOCGEN_TEST_MISSING_KEY"})
	assert.Error(t, err)

	b, err = NewBackend(ctx, config.LLMConfig{Provider: "ollama", BaseURL: "http://localhost:11434"})
	require.NoError(t, err)
	chat, ok := b.(*ChatClient)
	require.True(t, ok)
	assert.Equal(t, "http://localhost:11434/v1", chat.baseURL)
	assert.Equal(t, "ollama:codellama", chat.Name())

	t.Setenv("AZURE_API_KEY", "k")
	t.Setenv("AZURE_API_BASE", "https://example.openai.azure.com")
	t.Setenv("AZURE_API_VERSION", "")
	_, err = NewBackend(ctx, config.LLMConfig{Provider: "azure"})
	assert.Error(t, err, "azure needs a deployment")
	b, err = NewBackend(ctx, config.LLMConfig{Provider: "azure", Model: "docs"})
	require.NoError(t, err)
	chat, ok = b.(*ChatClient)
	require.True(t, ok)
	assert.Equal(t, "https://example.openai.azure.com/openai/deployments/docs/chat/completions?api-version=2024-02-01", chat.endpoint)

	b, err = NewBackend(ctx, config.LLMConfig{Provider: "llamacpp", Stream: true})
	require.NoError(t, err)
	_, ok = b.(*StreamClient)
	assert.True(t, ok)
}
