// Package openai provides an LLM gateway adapter using the OpenAI API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/sitenav/internal/core/ports/driven"
)

// Ensure Gateway implements the interface.
var _ driven.LLMGateway = (*Gateway)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the OpenAI gateway.
type Config struct {
	// APIKey is the OpenAI API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://api.openai.com/v1).
	// Can be changed for Azure OpenAI or compatible APIs.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Timeout is the HTTP client timeout (default: 120s).
	Timeout time.Duration
}

// Gateway runs generations against the OpenAI chat completions API.
type Gateway struct {
	client *goopenai.Client
	model  string
}

// New creates a new OpenAI gateway.
func New(cfg Config) (*Gateway, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientConfig := goopenai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Gateway{
		client: goopenai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}, nil
}

// Invoke runs one chat completion. Structured requests use the
// json_schema response format and return the object in Object.
func (g *Gateway) Invoke(ctx context.Context, req driven.InvokeRequest) (*driven.InvokeResponse, error) {
	messages := make([]goopenai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, goopenai.ChatCompletionMessage{
			Role:    goopenai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, goopenai.ChatCompletionMessage{
		Role:    goopenai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	chatReq := goopenai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: float32(req.Temperature),
	}
	if req.WantsJSON() {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		chatReq.ResponseFormat = &goopenai.ChatCompletionResponseFormat{
			Type: goopenai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &goopenai.ChatCompletionResponseFormatJSONSchema{
				Name:   name,
				Schema: schema(req.ResponseJSONSchema),
			},
		}
	}

	resp, err := g.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, fmt.Errorf("openai: %w", describe(err))
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai: no response choices returned")
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	out := &driven.InvokeResponse{Text: content}
	if req.WantsJSON() {
		if !json.Valid([]byte(content)) {
			return nil, fmt.Errorf("openai: structured reply is not valid JSON")
		}
		out.Object = json.RawMessage(content)
	}
	return out, nil
}

// ModelName returns the name of the model being used.
func (g *Gateway) ModelName() string {
	return g.model
}

// Ping validates the service is reachable by listing models.
// This is a lightweight check that validates the API key without running inference.
func (g *Gateway) Ping(ctx context.Context) error {
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai: ping failed: %w", describe(err))
	}
	return nil
}

// Close releases resources.
func (g *Gateway) Close() error {
	// HTTP client doesn't need explicit cleanup
	return nil
}

// schema adapts a plain schema map to the json.Marshaler the client expects.
type schema map[string]any

func (s schema) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any(s))
}

// describe flattens API errors into a status-bearing message.
func describe(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("API returned status %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, err)
	}
	return err
}
