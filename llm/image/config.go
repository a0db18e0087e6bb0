package image

import "time"

// OpenAIConfig configures the OpenAI DALL-E provider.
type OpenAIConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"` // dall-e-3
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`

	// Pacing is the fixed delay between consecutive image requests.
	Pacing time.Duration `json:"pacing,omitempty" yaml:"pacing,omitempty"`
}

// FluxConfig configures the OpenRouter-hosted Flux provider.
type FluxConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Referer string        `json:"referer,omitempty" yaml:"referer,omitempty"`
	Title   string        `json:"title,omitempty" yaml:"title,omitempty"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"` // flux-1-schnell
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Pacing  time.Duration `json:"pacing,omitempty" yaml:"pacing,omitempty"`
}

// StabilityConfig configures the Stability AI provider.
type StabilityConfig struct {
	APIKey  string        `json:"api_key" yaml:"api_key"`
	BaseURL string        `json:"base_url" yaml:"base_url"`
	Model   string        `json:"model,omitempty" yaml:"model,omitempty"` // SDXL engine id
	Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	Pacing  time.Duration `json:"pacing,omitempty" yaml:"pacing,omitempty"`
}

// DefaultOpenAIConfig returns the default DALL-E configuration.
func DefaultOpenAIConfig() OpenAIConfig {
	return OpenAIConfig{
		BaseURL: "https://api.openai.com",
		Model:   "dall-e-3",
		Timeout: 60 * time.Second,
		Pacing:  3 * time.Second,
	}
}

// DefaultFluxConfig returns the default Flux-via-OpenRouter configuration.
func DefaultFluxConfig() FluxConfig {
	return FluxConfig{
		BaseURL: "https://openrouter.ai/api",
		Referer: "https://postcraft.app",
		Title:   "PostCraft - AI Image Generator",
		Model:   "black-forest-labs/flux-1-schnell",
		Timeout: 60 * time.Second,
		Pacing:  2 * time.Second,
	}
}

// DefaultStabilityConfig returns the default Stability AI configuration.
func DefaultStabilityConfig() StabilityConfig {
	return StabilityConfig{
		BaseURL: "https://api.stability.ai",
		Model:   "stable-diffusion-xl-1024x1024",
		Timeout: 90 * time.Second,
		Pacing:  5 * time.Second,
	}
}
