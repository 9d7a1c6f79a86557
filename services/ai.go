package services

import "context"

// AIService is the minimal contract every model provider implements. Calls are
// stateless; all context a request needs is carried in the prompt.
type AIService interface {
	// GenerateText sends a prompt and returns the plain-text completion.
	GenerateText(ctx context.Context, prompt string) (string, error)
	// GenerateJSON sends a prompt that demands machine-parseable output and
	// returns the raw reply for the caller to decode.
	GenerateJSON(ctx context.Context, prompt string) (string, error)
}
