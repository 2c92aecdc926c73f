package port

import (
	"context"

	"docgen/internal/domain"
)

// Backend represents a language model that documents one method per call.
type Backend interface {
	// Invoke sends the request and returns the raw model output, either as a
	// single payload or as a sequence of streamed fragments.
	Invoke(ctx context.Context, req domain.GenerationRequest) (domain.RawResponse, error)

	// Name identifies the provider and model, e.g. "openai:gpt-4".
	Name() string
}

// ResponseStore persists raw model responses across runs.
type ResponseStore interface {
	GetResponse(key string) (domain.CachedResponse, bool, error)

	PutResponse(key string, resp domain.CachedResponse) error
}
