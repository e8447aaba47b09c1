package domain

import "context"

// Completer is the chat completion contract between the assist use case and a provider.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResult, error)
}

// HealthChecker verifies provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// CompletionRequest is a single system+user exchange.
type CompletionRequest struct {
	System string
	Prompt string
	// JSON asks the provider for a JSON object reply when it supports it.
	JSON bool
}

// CompletionResult carries the reply text and token usage reported by the provider.
type CompletionResult struct {
	Text             string
	Model            string
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}
