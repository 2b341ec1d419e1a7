package service

import (
	"context"
	"errors"
)

var ErrEmptyCompletion = errors.New("model returned no content")

type CompletionRequest struct {
	Prompt      string
	Model       string // empty selects the provider's configured model
	MaxTokens   int
	Temperature float32
}

// Completer is a hosted text-generation model.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}
