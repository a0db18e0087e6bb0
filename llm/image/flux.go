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

// FluxProvider implements image generation using Black Forest Labs Flux
// hosted behind the OpenRouter image API.
type FluxProvider struct {
	cfg    FluxConfig
	client *http.Client
}

// NewFluxProvider creates a new Flux image provider.
func NewFluxProvider(cfg FluxConfig) *FluxProvider {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://openrouter.ai/api"
	}
	if cfg.Model == "" {
		cfg.Model = "black-forest-labs/flux-1-schnell"
	}
	if cfg.Referer == "" {
		cfg.Referer = "https://postcraft.app"
	}
	if cfg.Title == "" {
		cfg.Title = "PostCraft - AI Image Generator"
	}

	return &FluxProvider{
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (p *FluxProvider) Name() string { return "flux" }

func (p *FluxProvider) Configured() bool { return p.cfg.APIKey != "" }

type fluxRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	Width          int    `json:"width"`
	Height         int    `json:"height"`
	Steps          int    `json:"steps"`
	ResponseFormat string `json:"response_format"`
}

// urlExtractor tries to pull an image URL out of a decoded response.
// OpenRouter's image endpoint has shipped several response shapes, so the
// response is treated as unknown and probed by an ordered extractor list;
// the first match wins.
type urlExtractor func(resp map[string]any) (string, bool)

var fluxURLExtractors = []urlExtractor{
	// data[0].url
	func(resp map[string]any) (string, bool) {
		data, ok := resp["data"].([]any)
		if !ok || len(data) == 0 {
			return "", false
		}
		first, ok := data[0].(map[string]any)
		if !ok {
			return "", false
		}
		return stringField(first, "url")
	},
	// url
	func(resp map[string]any) (string, bool) {
		return stringField(resp, "url")
	},
	// images[0].url
	func(resp map[string]any) (string, bool) {
		images, ok := resp["images"].([]any)
		if !ok || len(images) == 0 {
			return "", false
		}
		first, ok := images[0].(map[string]any)
		if !ok {
			return "", false
		}
		return stringField(first, "url")
	},
}

func stringField(m map[string]any, key string) (string, bool) {
	s, ok := m[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// extractFluxURL applies the ordered extractor list.
func extractFluxURL(resp map[string]any) (string, bool) {
	for _, extract := range fluxURLExtractors {
		if url, ok := extract(resp); ok {
			return url, true
		}
	}
	return "", false
}

// Generate requests one image and returns its remote URL.
func (p *FluxProvider) Generate(ctx context.Context, prompt string) (*Result, error) {
	body := fluxRequest{
		Model:          p.cfg.Model,
		Prompt:         prompt,
		Width:          1024,
		Height:         1024,
		Steps:          4,
		ResponseFormat: "url",
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
	httpReq.Header.Set("HTTP-Referer", p.cfg.Referer)
	httpReq.Header.Set("X-Title", p.cfg.Title)

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

	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode flux response: %w", err)
	}

	url, ok := extractFluxURL(decoded)
	if !ok {
		return nil, &types.Error{
			Code:     types.ErrUpstreamError,
			Message:  "response contained no image URL in any known shape",
			Provider: p.Name(),
		}
	}

	return &Result{URL: url}, nil
}
