package image

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/postcraft/postcraft/llm/providers"
	"github.com/postcraft/postcraft/types"
)

// OpenAIProvider implements image generation using OpenAI DALL-E.
type OpenAIProvider struct {
	cfg    OpenAIConfig
	client *http.Client
}

// NewOpenAIProvider creates a new OpenAI image provider.
func NewOpenAIProvider(cfg OpenAIConfig) *OpenAIProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com"
	}
	if cfg.Model == "" {
		cfg.Model = "dall-e-3"
	}

	return &OpenAIProvider{
		cfg: cfg,
		// Per-attempt deadlines come from the waterfall's timeout wrapper.
		client: &http.Client{},
	}
}

func (p *OpenAIProvider) Name() string { return "dall-e" }

func (p *OpenAIProvider) Configured() bool { return p.cfg.APIKey != "" }

type dalleRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

type dalleResponse struct {
	Data []struct {
		B64JSON       string `json:"b64_json"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// Generate requests one base64-encoded square image.
func (p *OpenAIProvider) Generate(ctx context.Context, prompt string) (*Result, error) {
	body := dalleRequest{
		Model:          p.cfg.Model,
		Prompt:         prompt,
		N:              1,
		Size:           "1024x1024",
		Quality:        "standard",
		ResponseFormat: "b64_json",
	}

	payload, _ := json.Marshal(body)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		strings.TrimRight(p.cfg.BaseURL, "/")+"/v1/images/generations",
		bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, &types.Error{
			Code:      types.ErrUpstreamError,
			Message:   err.Error(),
			Retryable: true,
			Provider:  p.Name(),
		}
	}
	defer providers.SafeCloseBody(resp.Body)

	if resp.StatusCode >= 400 {
		return nil, providers.StatusError(p.Name(), resp.StatusCode, resp.Body)
	}

	var dResp dalleResponse
	if err := json.NewDecoder(resp.Body).Decode(&dResp); err != nil {
		return nil, fmt.Errorf("failed to decode dalle response: %w", err)
	}

	if len(dResp.Data) == 0 || dResp.Data[0].B64JSON == "" {
		return nil, &types.Error{
			Code:     types.ErrUpstreamError,
			Message:  "response contained no image data",
			Provider: p.Name(),
		}
	}

	return &Result{
		B64:           dResp.Data[0].B64JSON,
		RevisedPrompt: dResp.Data[0].RevisedPrompt,
	}, nil
}
