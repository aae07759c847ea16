// Package llm defines the contract for the external generation backend.
package llm

import "context"

// Request is the two-part payload sent to the generation backend:
// a rendered system instruction plus the verbatim user utterance.
type Request struct {
	SystemPrompt string
	UserText     string
}

// Usage reports token consumption when the provider exposes it.
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Reply is the raw generated reply before formatting.
type Reply struct {
	Text  string
	Usage Usage
}

// GenerationAdapter is the narrow surface coupling the pipeline to a
// language-generation backend. Failures are wrapped with
// errorsx.ReasonGeneration by the provider.
type GenerationAdapter interface {
	Name() string
	Complete(ctx context.Context, req Request) (Reply, error)
}
