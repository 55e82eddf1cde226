package repositories

import "context"

// LanguageModel abstracts any chat/LLM provider
type LanguageModel interface {
	// Complete sends the system instruction and the user text and returns the raw reply.
	// The reply is expected to be JSON but is not validated here.
	Complete(ctx context.Context, systemPrompt, userText string) (string, error)
}

// HostedModel abstracts the self-hosted generation provider behind the secondary route
type HostedModel interface {
	// Generate renders the prompt template around message and returns the generated text
	Generate(ctx context.Context, prompt, message string) (string, error)
}
