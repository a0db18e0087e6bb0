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

// StabilityProvider implements image generation using Stability AI's
// SDXL text-to-image endpoint.
type StabilityProvider struct {
	cfg    StabilityConfig
	client *http.Client
}

// NewStabilityProvider creates a new Stability AI image provider.
func NewStabilityProvider(cfg StabilityConfig) *StabilityProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.stability.ai"
	}
	if cfg.Model == "" {
		cfg.Model = "stable-diffusion-xl-1024x1024"
	}

	return &StabilityProvider{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (p *StabilityProvider) Name() string { return "stability" }

func (p *StabilityProvider) Configured() bool { return p.cfg.APIKey != "" }

type stabilityRequest struct {
	TextPrompts []stabilityPrompt `json:"text_prompts"`
	CFGScale    int               `json:"cfg_scale"`
	Height      int               `json:"height"`
	Width       int               `json:"width"`
	Samples     int               `json:"samples"`
	Steps       int               `json:"steps"`
}

type stabilityPrompt struct {
	Text string `json:"text"`
}

type stabilityResponse struct {
	Artifacts []struct {
		Base64 string `json:"base64"`
	} `json:"artifacts"`
}

// Generate requests one image and decodes the base64 artifact.
func (p *StabilityProvider) Generate(ctx context.Context, prompt string) (*Result, error) {
	body := stabilityRequest{
		TextPrompts: []stabilityPrompt{{Text: prompt}},
		CFGScale:    7,
		Height:      1024,
		Width:       1024,
		Samples:     1,
		Steps:       30,
	}

	payload, _ := json.Marshal(body)
	endpoint := fmt.Sprintf("%s/v1/generation/%s/text-to-image",
		strings.TrimRight(p.cfg.BaseURL, "/"), p.cfg.Model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

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

	var sResp stabilityResponse
	if err := json.NewDecoder(resp.Body).Decode(&sResp); err != nil {
		return nil, fmt.Errorf("failed to decode stability response: %w", err)
	}

	if len(sResp.Artifacts) == 0 || sResp.Artifacts[0].Base64 == "" {
		return nil, &types.Error{
			Code:     types.ErrUpstreamError,
			Message:  "response contained no artifacts",
			Provider: p.Name(),
		}
	}

	return &Result{B64: sResp.Artifacts[0].Base64}, nil
}
