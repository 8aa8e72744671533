package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/liliang-cn/askweb/internal/config"
)

// Client talks to an OpenAI-compatible chat-completions endpoint (vLLM in
// the default deployment).
type Client struct {
	api         *openai.Client
	model       string
	maxTokens   int
	temperature float32
	topP        float32
}

// New creates a new LLM client. The HTTP client carries the transport
// policy (TLS verification, timeout) for every call.
func New(cfg config.LLMConfig, httpClient *http.Client) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("LLM base URL is required")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	apiCfg.HTTPClient = httpClient

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		topP:        cfg.TopP,
	}, nil
}

// Chat sends a system prompt and user query and returns the assistant text.
func (c *Client) Chat(ctx context.Context, systemPrompt, userQuery string) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userQuery,
	})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: empty choices")
	}

	return resp.Choices[0].Message.Content, nil
}

// ListModels fetches the model IDs served by the endpoint. Used only for
// health probing.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	list, err := c.api.ListModels(ctx)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	ids := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		ids = append(ids, m.ID)
	}
	return ids, nil
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}
