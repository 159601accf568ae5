package port

import "context"

// AIProvider abstracts the AI/LLM backend for chat completions.
// Implementations can target Ollama, OpenAI, or any compatible API.
type AIProvider interface {
	// ModelName returns the identifier of the model being used.
	ModelName() string

	// Chat sends a prompt with optional context chunks and returns the LLM response.
	Chat(ctx context.Context, systemPrompt string, userPrompt string, contextChunks []string) (string, error)

	// ChatStream sends a prompt and streams the response token-by-token via channel.
	ChatStream(ctx context.Context, systemPrompt string, userPrompt string, contextChunks []string) (<-chan string, error)
}
