// =============================================================================
// PostCraft default configuration
// =============================================================================
package config

import (
	"fmt"
	"time"
)

// DefaultConfig returns the full default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server:     DefaultServerConfig(),
		OpenRouter: DefaultOpenRouterConfig(),
		Images:     DefaultImagesConfig(),
		Cache:      DefaultCacheConfig(),
		Log:        DefaultLogConfig(),
	}
}

// DefaultServerConfig returns the default listener settings. WriteTimeout
// covers the worst case of one generation run: text retries plus all three
// image tiers.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		HTTPPort:        8080,
		MetricsPort:     9091,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    5 * time.Minute,
		ShutdownTimeout: 15 * time.Second,
	}
}

// DefaultOpenRouterConfig returns the default text provider settings.
func DefaultOpenRouterConfig() OpenRouterConfig {
	return OpenRouterConfig{
		Referer:        "https://postcraft.app",
		Title:          "PostCraft - AI Content Generator",
		RequestTimeout: 30 * time.Second,
		MaxAttempts:    3,
		BaseDelay:      2 * time.Second,
		MaxTokens:      2000,
		Temperature:    0.7,
	}
}

// DefaultImagesConfig returns the default image tiers, all unconfigured.
func DefaultImagesConfig() ImagesConfig {
	return ImagesConfig{
		OpenAI: ImageProviderConfig{
			BaseURL: "https://api.openai.com",
			Model:   "dall-e-3",
		},
		Flux: ImageProviderConfig{
			BaseURL: "https://openrouter.ai/api",
			Model:   "black-forest-labs/flux-1-schnell",
		},
		Stability: ImageProviderConfig{
			BaseURL: "https://api.stability.ai",
			Model:   "stable-diffusion-xl-1024x1024",
		},
	}
}

// DefaultCacheConfig returns the default cache settings (disabled).
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		Addr:         "",
		TTL:          10 * time.Minute,
		PoolSize:     10,
		MinIdleConns: 2,
	}
}

// DefaultLogConfig returns the default logging settings.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:       "info",
		Format:      "json",
		OutputPaths: []string{"stdout"},
	}
}

// Validate checks the configuration for values that would prevent startup.
// Missing provider keys are not errors; the service degrades per feature.
func (c *Config) Validate() error {
	if c.Server.HTTPPort <= 0 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.Server.HTTPPort)
	}
	if c.Server.MetricsPort < 0 || c.Server.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics_port: %d", c.Server.MetricsPort)
	}
	if c.Server.MetricsPort != 0 && c.Server.MetricsPort == c.Server.HTTPPort {
		return fmt.Errorf("metrics_port must differ from http_port")
	}
	if c.OpenRouter.MaxAttempts < 1 {
		return fmt.Errorf("openrouter max_attempts must be at least 1")
	}
	if c.OpenRouter.Temperature < 0 || c.OpenRouter.Temperature > 2 {
		return fmt.Errorf("openrouter temperature out of range: %v", c.OpenRouter.Temperature)
	}
	if c.Cache.Addr != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive when the cache is enabled")
	}
	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.Log.Level)
	}
	return nil
}
