package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"docgen/internal/adapter/response"
	"docgen/internal/domain"
)

// streamDelta is one chunk of an OpenAI-style streamed completion.
type streamDelta struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
	} `json:"choices"`
}

// StreamClient requests a server-sent event stream and hands the event lines
// back as fragments for the normalizer to reassemble.
type StreamClient struct {
	*ChatClient
}

// NewStreamClient wraps chat so that it asks for a stream and only the bare
// doc comment.
func NewStreamClient(chat *ChatClient) *StreamClient {
	chat.style = StyleCommentOnly
	return &StreamClient{ChatClient: chat}
}

func (c *StreamClient) Name() string {
	return c.ChatClient.Name() + "+stream"
}

// Invoke sends the request and collects every "data: " line in arrival order.
func (c *StreamClient) Invoke(ctx context.Context, req domain.GenerationRequest) (domain.RawResponse, error) {
	prompt, err := BuildPrompt(c.style, req)
	if err != nil {
		return domain.RawResponse{}, err
	}

	body, err := c.post(ctx, prompt, true)
	if err != nil {
		return domain.RawResponse{}, err
	}
	defer body.Close()

	var fragments []string
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, response.EventPrefix) {
			continue
		}
		fragments = append(fragments, deltaFragments(line)...)
	}
	if err := scanner.Err(); err != nil {
		return domain.RawResponse{}, fmt.Errorf("failed to read stream: %w", err)
	}

	return domain.Streamed(fragments), nil
}

// deltaFragments replaces a JSON chat delta with its text content. Every
// newline in the content becomes a fragment of its own holding the newline
// marker, so whitespace around it survives reassembly. Other payloads are
// returned unchanged.
func deltaFragments(line string) []string {
	payload := strings.TrimPrefix(line, response.EventPrefix)
	if !strings.HasPrefix(strings.TrimSpace(payload), "{") {
		return []string{line}
	}

	var delta streamDelta
	if err := json.Unmarshal([]byte(payload), &delta); err != nil || len(delta.Choices) == 0 {
		return []string{line}
	}

	var fragments []string
	for i, part := range strings.Split(delta.Choices[0].Delta.Content, "\n") {
		if i > 0 {
			fragments = append(fragments, response.EventPrefix+response.NewlineMarker)
		}
		if part != "" {
			fragments = append(fragments, response.EventPrefix+part)
		}
	}
	return fragments
}
