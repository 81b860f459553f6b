package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"
)

// defaultAnthropicMaxTokens caps responses when the caller does not set a
// limit; the Anthropic API requires an explicit value.
const defaultAnthropicMaxTokens = 4096

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *zap.Logger
}

// AnthropicConfig holds configuration for creating an Anthropic client.
type AnthropicConfig struct {
	BaseURL string // Optional override
	Model   string // Default model, e.g. "claude-sonnet-4-5"
	APIKey  string
}

// NewAnthropicClient creates a client for the Anthropic Messages API.
func NewAnthropicClient(cfg *AnthropicConfig, logger *zap.Logger) (*AnthropicClient, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("model is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("api key is required")
	}

	var opts []anthropic.ClientOption
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}

	return &AnthropicClient{
		client: anthropic.NewClient(cfg.APIKey, opts...),
		model:  cfg.Model,
		logger: logger.Named("llm"),
	}, nil
}

// Complete implements ChatClient. System messages are folded into the
// request's System field; the Messages API rejects a system role in the
// message list. JSON mode is enforced by instruction rather than a native
// flag, so responses still pass through the JSON extractor.
func (c *AnthropicClient) Complete(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	var system string
	messages := make([]anthropic.Message, 0, len(req.Messages))
	for _, m := range req.Messages {
		if m.Role == RoleSystem {
			if system != "" {
				system += "\n\n"
			}
			system += m.Content
			continue
		}
		text := m.Content
		role := anthropic.RoleUser
		if m.Role == RoleAssistant {
			role = anthropic.RoleAssistant
		}
		messages = append(messages, anthropic.Message{
			Role: role,
			Content: []anthropic.MessageContent{
				{Type: anthropic.MessagesContentTypeText, Text: &text},
			},
		})
	}

	apiReq := anthropic.MessagesRequest{
		Model:     anthropic.Model(model),
		System:    system,
		Messages:  messages,
		MaxTokens: maxTokens,
	}
	if req.Temperature > 0 {
		temp := req.Temperature
		apiReq.Temperature = &temp
	}

	c.logger.Debug("LLM request",
		zap.String("model", model),
		zap.Int("messages", len(messages)),
		zap.Bool("json_mode", req.JSONMode))

	start := time.Now()
	resp, err := c.client.CreateMessages(ctx, apiReq)
	if err != nil {
		c.logger.Error("LLM request failed",
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("create messages: %w", err)
	}

	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText && block.Text != nil {
			c.logger.Info("LLM request completed",
				zap.Int("input_tokens", resp.Usage.InputTokens),
				zap.Int("output_tokens", resp.Usage.OutputTokens),
				zap.Duration("elapsed", time.Since(start)))
			return *block.Text, nil
		}
	}

	return "", fmt.Errorf("no text content in response")
}

// Model implements ChatClient.
func (c *AnthropicClient) Model() string {
	return c.model
}

// Ensure AnthropicClient implements ChatClient at compile time.
var _ ChatClient = (*AnthropicClient)(nil)
