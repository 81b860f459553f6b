// Package llm provides the chat completion boundary used by every pipeline
// stage. Clients exist for OpenAI-compatible endpoints and Anthropic; both
// accept an ordered list of role-tagged messages plus a JSON-mode flag and a
// model identifier, and return raw text that callers validate themselves.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
)

// Message roles understood by both providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a single role-tagged turn in a completion request.
type Message struct {
	Role    string
	Content string
}

// Request is a chat completion request.
type Request struct {
	// Messages is the ordered conversation, including system messages.
	Messages []Message

	// Model overrides the client's default model when non-empty.
	Model string

	// JSONMode asks the provider for a structured JSON response. The caller
	// is still responsible for validating the shape; provider output is
	// never trusted blindly.
	JSONMode bool

	// Temperature controls sampling. Zero means the provider default.
	Temperature float32

	// MaxTokens caps the response length. Zero means the client default.
	MaxTokens int
}

// ChatClient is the completion service interface. Use it for dependency
// injection so stages can be tested against MockChatClient.
type ChatClient interface {
	// Complete generates a completion and returns the raw response text.
	Complete(ctx context.Context, req Request) (string, error)

	// Model returns the configured default model name.
	Model() string
}

// CompleteJSON runs a JSON-mode completion and unmarshals the extracted JSON
// payload into T. It fails if the response contains no valid JSON or the
// payload does not match T.
func CompleteJSON[T any](ctx context.Context, client ChatClient, req Request) (T, error) {
	var result T

	req.JSONMode = true
	raw, err := client.Complete(ctx, req)
	if err != nil {
		return result, err
	}

	jsonStr, err := ExtractJSON(raw)
	if err != nil {
		return result, fmt.Errorf("completion contained no JSON: %w", err)
	}

	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("unmarshal completion JSON: %w", err)
	}

	return result, nil
}
