package inference

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"
)

// OpenAIConfig configures the OpenAI-backed inference client.
type OpenAIConfig struct {
	// APIKey authenticates against the service (required).
	APIKey string

	// Model is the model identifier. Default: gpt-4o-mini.
	Model string

	// BaseURL overrides the API endpoint for OpenAI-compatible services.
	BaseURL string

	// BreakerEnabled wires a circuit breaker around calls. When the breaker
	// is open, Complete fails fast with ErrUnavailable instead of burning
	// latency on a struggling service.
	BreakerEnabled bool
}

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4oMini

// OpenAIClient implements Client against the OpenAI chat-completions API.
type OpenAIClient struct {
	client  *openai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
}

var _ Client = (*OpenAIClient)(nil)

// NewOpenAIClient creates a client from config.
func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai api key is required")
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	c := &OpenAIClient{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}

	if cfg.BreakerEnabled {
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "inference",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			IsSuccessful: func(err error) bool {
				// Throttling is load, not failure; don't trip the breaker on it.
				return err == nil || IsThrottled(err)
			},
		})
	}

	return c, nil
}

// Complete sends the prompt and returns the response text.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	if c.breaker == nil {
		return c.complete(ctx, req)
	}

	out, err := c.breaker.Execute(func() (any, error) {
		return c.complete(ctx, req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", &CallError{Model: c.model, Err: ErrUnavailable}
		}
		return "", err
	}
	return out.(string), nil
}

func (c *OpenAIClient) complete(ctx context.Context, req Request) (string, error) {
	chatReq := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		Temperature: req.Temperature,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return "", c.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &CallError{Model: c.model, Err: errors.New("empty response")}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// wrapError classifies API failures, mapping rate limiting to ErrThrottled.
func (c *OpenAIClient) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return &CallError{Model: c.model, Err: ErrThrottled}
		case http.StatusServiceUnavailable, http.StatusBadGateway:
			return &CallError{Model: c.model, Err: ErrUnavailable}
		}
	}
	return &CallError{Model: c.model, Err: err}
}
