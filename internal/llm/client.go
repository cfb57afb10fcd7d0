// Package llm wraps the generative language model providers behind a single
// prompt-in, text-out port.
package llm

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrEmptyResponse is returned when a provider answers without any text.
var ErrEmptyResponse = eris.New("llm: empty response")

// Request is a single-turn generation request.
type Request struct {
	Prompt      string
	Temperature float32
	// JSON asks the provider for a JSON document when it supports a response format.
	JSON      bool
	MaxTokens int
}

// Client is the generative capability.
type Client interface {
	Generate(ctx context.Context, req Request) (string, error)
}

const defaultMaxTokens = 2048

func maxTokens(req Request) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	return defaultMaxTokens
}
