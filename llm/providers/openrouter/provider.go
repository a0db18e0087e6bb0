// Package openrouter implements the text-generation client backed by the
// OpenRouter chat-completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/postcraft/postcraft/llm/providers"
	"github.com/postcraft/postcraft/llm/retry"
	"github.com/postcraft/postcraft/llm/timeout"
	"github.com/postcraft/postcraft/types"
)

// Config holds the configuration for the OpenRouter client.
type Config struct {
	// APIKey authenticates against OpenRouter. Empty means the text
	// provider is unconfigured; Generate fails with a CONFIGURATION error.
	APIKey string `json:"api_key" yaml:"api_key"`

	// Referer and Title identify the calling app to OpenRouter.
	Referer string `json:"referer" yaml:"referer"`
	Title   string `json:"title" yaml:"title"`

	// EndpointOverride replaces the registry endpoint for every model.
	// Used by tests to point at a stub server.
	EndpointOverride string `json:"endpoint_override,omitempty" yaml:"endpoint_override,omitempty"`

	// RequestTimeout bounds a single completion attempt. Defaults to 30s.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	// MaxAttempts and BaseDelay configure the retry policy.
	// Defaults: 3 attempts, 2s base delay.
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts"`
	BaseDelay   time.Duration `json:"base_delay" yaml:"base_delay"`

	// MaxTokens and Temperature are the fixed sampling parameters sent
	// with every completion. Defaults: 2000 tokens, 0.7.
	MaxTokens   int     `json:"max_tokens" yaml:"max_tokens"`
	Temperature float32 `json:"temperature" yaml:"temperature"`
}

// Client is the OpenRouter text-generation client.
type Client struct {
	cfg     Config
	client  *http.Client
	retryer retry.Retryer
	logger  *zap.Logger
}

// GenerateParams carries one completion request: both prompts plus the
// user-facing model key resolved through the model registry.
type GenerateParams struct {
	ModelKey     string
	SystemPrompt string
	UserPrompt   string
}

// New creates an OpenRouter client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Referer == "" {
		cfg.Referer = "https://postcraft.app"
	}
	if cfg.Title == "" {
		cfg.Title = "PostCraft - AI Content Generator"
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.MaxAttempts == 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseDelay == 0 {
		cfg.BaseDelay = 2 * time.Second
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 2000
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg: cfg,
		// No client-level timeout: each attempt is bounded by timeout.Do.
		client: &http.Client{},
		retryer: retry.NewBackoffRetryer(&retry.Policy{
			MaxAttempts: cfg.MaxAttempts,
			BaseDelay:   cfg.BaseDelay,
		}, logger),
		logger: logger.With(zap.String("component", "openrouter")),
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return "openrouter" }

// Configured reports whether a credential is available.
func (c *Client) Configured() bool { return c.cfg.APIKey != "" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float32       `json:"temperature,omitempty"`
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Index        int    `json:"index"`
		FinishReason string `json:"finish_reason"`
		Message      struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate issues one chat completion wrapped in the per-attempt timeout
// and the retry policy, and returns the first choice's message content.
func (c *Client) Generate(ctx context.Context, params GenerateParams) (string, error) {
	if !c.Configured() {
		return "", types.NewError(types.ErrConfiguration, "OpenRouter API key not configured")
	}

	model := ResolveModel(params.ModelKey)
	c.logger.Info("making request to provider",
		zap.String("provider", model.Provider),
		zap.String("model", model.ModelID),
	)

	return retry.DoWithResultTyped(c.retryer, ctx, func() (string, error) {
		return timeout.Do(ctx, c.cfg.RequestTimeout, func(ctx context.Context) (string, error) {
			return c.completion(ctx, model, params)
		})
	})
}

func (c *Client) completion(ctx context.Context, model ModelConfig, params GenerateParams) (string, error) {
	body := chatRequest{
		Model: model.ModelID,
		Messages: []chatMessage{
			{Role: "system", Content: params.SystemPrompt},
			{Role: "user", Content: params.UserPrompt},
		},
		MaxTokens:   c.cfg.MaxTokens,
		Temperature: c.cfg.Temperature,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := model.Endpoint
	if c.cfg.EndpointOverride != "" {
		endpoint = c.cfg.EndpointOverride
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("HTTP-Referer", c.cfg.Referer)
	httpReq.Header.Set("X-Title", c.cfg.Title)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return "", &types.Error{
			Code:       types.ErrUpstreamError,
			Message:    err.Error(),
			HTTPStatus: http.StatusBadGateway,
			Retryable:  true,
			Provider:   c.Name(),
		}
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		return "", providers.StatusError(c.Name(), resp.StatusCode, resp.Body)
	}

	var cResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", &types.Error{
			Code:       types.ErrUpstreamError,
			Message:    err.Error(),
			HTTPStatus: http.StatusBadGateway,
			Retryable:  true,
			Provider:   c.Name(),
		}
	}

	if len(cResp.Choices) == 0 {
		return "", &types.Error{
			Code:      types.ErrUpstreamError,
			Message:   "response contained no choices",
			Retryable: true,
			Provider:  c.Name(),
		}
	}

	return cResp.Choices[0].Message.Content, nil
}
