package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// OllamaConfig holds the configuration for the Ollama chat endpoint.
type OllamaConfig struct {
	BaseURL string // e.g. http://localhost:11434 or https://api.ollama.com
	Model   string // e.g. qwen3
	Token   string // Bearer token for Ollama Cloud (empty = no auth)
}

// OllamaProvider implements port.AIProvider using the Ollama REST API.
type OllamaProvider struct {
	cfg        OllamaConfig
	httpClient *http.Client
}

// NewOllamaProvider creates a new Ollama-backed AI provider.
func NewOllamaProvider(cfg OllamaConfig) *OllamaProvider {
	return &OllamaProvider{
		cfg:        cfg,
		httpClient: &http.Client{},
	}
}

// ModelName returns the chat model identifier.
func (o *OllamaProvider) ModelName() string {
	return o.cfg.Model
}

// Chat sends a prompt with context chunks and returns the complete response.
func (o *OllamaProvider) Chat(ctx context.Context, systemPrompt string, userPrompt string, contextChunks []string) (string, error) {
	payload := map[string]interface{}{
		"model":    o.cfg.Model,
		"messages": buildMessages(systemPrompt, userPrompt, contextChunks),
		"stream":   false,
	}

	body, err := o.post(ctx, "/api/chat", payload)
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}

	var resp struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("ollama chat decode: %w", err)
	}

	return resp.Message.Content, nil
}

// ChatStream sends a prompt and streams the response token-by-token.
func (o *OllamaProvider) ChatStream(ctx context.Context, systemPrompt string, userPrompt string, contextChunks []string) (<-chan string, error) {
	payload := map[string]interface{}{
		"model":    o.cfg.Model,
		"messages": buildMessages(systemPrompt, userPrompt, contextChunks),
		"stream":   true,
	}

	payloadBytes, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+"/api/chat", bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("ollama stream: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.Token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama stream: %w", err)
	}

	ch := make(chan string, 64)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		decoder := json.NewDecoder(resp.Body)
		for decoder.More() {
			var chunk struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
				Done bool `json:"done"`
			}
			if err := decoder.Decode(&chunk); err != nil {
				return
			}
			if chunk.Message.Content != "" {
				ch <- chunk.Message.Content
			}
			if chunk.Done {
				return
			}
		}
	}()

	return ch, nil
}

// buildMessages assembles the chat payload, folding context chunks into the
// user prompt the way Ollama expects a single-turn request.
func buildMessages(systemPrompt, userPrompt string, contextChunks []string) []map[string]string {
	fullPrompt := userPrompt
	if len(contextChunks) > 0 {
		contextStr := ""
		for i, chunk := range contextChunks {
			contextStr += fmt.Sprintf("\n--- Context %d ---\n%s\n", i+1, chunk)
		}
		fullPrompt = fmt.Sprintf("Supporting context:\n%s\n\nTask: %s", contextStr, userPrompt)
	}

	return []map[string]string{
		{"role": "system", "content": systemPrompt},
		{"role": "user", "content": fullPrompt},
	}
}

// post is a helper for POST requests to the Ollama endpoint (with optional bearer token).
func (o *OllamaProvider) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.cfg.BaseURL+path, bytes.NewReader(payloadBytes))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if o.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+o.cfg.Token)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama API error (%d): %s", resp.StatusCode, string(body))
	}

	return io.ReadAll(resp.Body)
}
