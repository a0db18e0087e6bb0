package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Server.WriteTimeout)

	assert.Equal(t, "https://postcraft.app", cfg.OpenRouter.Referer)
	assert.Equal(t, "PostCraft - AI Content Generator", cfg.OpenRouter.Title)
	assert.Equal(t, 30*time.Second, cfg.OpenRouter.RequestTimeout)
	assert.Equal(t, 3, cfg.OpenRouter.MaxAttempts)
	assert.Equal(t, 2*time.Second, cfg.OpenRouter.BaseDelay)
	assert.Equal(t, 2000, cfg.OpenRouter.MaxTokens)
	assert.Equal(t, 0.7, cfg.OpenRouter.Temperature)

	assert.Equal(t, "dall-e-3", cfg.Images.OpenAI.Model)
	assert.Equal(t, "black-forest-labs/flux-1-schnell", cfg.Images.Flux.Model)
	assert.Equal(t, "stable-diffusion-xl-1024x1024", cfg.Images.Stability.Model)

	assert.Empty(t, cfg.Cache.Addr, "cache disabled by default")
	assert.Equal(t, 10*time.Minute, cfg.Cache.TTL)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoader_LoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, "https://postcraft.app", cfg.OpenRouter.Referer)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  http_port: 8888
  read_timeout: 60s

openrouter:
  api_key: "sk-or-test"
  max_tokens: 1000
  temperature: 0.5

images:
  openai:
    api_key: "sk-openai-test"
  stability:
    api_key: "sk-stability-test"

cache:
  addr: "redis.example.com:6379"
  password: "secret"
  db: 1

log:
  level: "debug"
  format: "console"
`
	require.NoError(t, os.WriteFile(configPath, []byte(yamlContent), 0o600))

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "sk-or-test", cfg.OpenRouter.APIKey)
	assert.Equal(t, 1000, cfg.OpenRouter.MaxTokens)
	assert.Equal(t, 0.5, cfg.OpenRouter.Temperature)
	assert.Equal(t, "sk-openai-test", cfg.Images.OpenAI.APIKey)
	assert.Equal(t, "sk-stability-test", cfg.Images.Stability.APIKey)
	assert.Equal(t, "redis.example.com:6379", cfg.Cache.Addr)
	assert.Equal(t, 1, cfg.Cache.DB)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Untouched sections keep their defaults.
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
	assert.Equal(t, "https://postcraft.app", cfg.OpenRouter.Referer)
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoader_MalformedFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [not a map"), 0o600))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	assert.Error(t, err)
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("POSTCRAFT_SERVER_HTTP_PORT", "7070")
	t.Setenv("POSTCRAFT_OPENROUTER_API_KEY", "sk-or-env")
	t.Setenv("POSTCRAFT_OPENROUTER_REQUEST_TIMEOUT", "45s")
	t.Setenv("POSTCRAFT_IMAGES_FLUX_API_KEY", "sk-flux-env")
	t.Setenv("POSTCRAFT_CACHE_ADDR", "localhost:6380")
	t.Setenv("POSTCRAFT_LOG_OUTPUT_PATHS", "stdout, /var/log/postcraft.log")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 7070, cfg.Server.HTTPPort)
	assert.Equal(t, "sk-or-env", cfg.OpenRouter.APIKey)
	assert.Equal(t, 45*time.Second, cfg.OpenRouter.RequestTimeout)
	assert.Equal(t, "sk-flux-env", cfg.Images.Flux.APIKey)
	assert.Equal(t, "localhost:6380", cfg.Cache.Addr)
	assert.Equal(t, []string{"stdout", "/var/log/postcraft.log"}, cfg.Log.OutputPaths)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  http_port: 8888\n"), 0o600))

	t.Setenv("POSTCRAFT_SERVER_HTTP_PORT", "7071")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)
	assert.Equal(t, 7071, cfg.Server.HTTPPort)
}

func TestLoader_Validator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(c *Config) error { return c.Validate() }).
		Load()
	require.NoError(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid defaults", func(c *Config) {}, ""},
		{"bad http port", func(c *Config) { c.Server.HTTPPort = 0 }, "http_port"},
		{"ports collide", func(c *Config) { c.Server.MetricsPort = c.Server.HTTPPort }, "metrics_port"},
		{"zero attempts", func(c *Config) { c.OpenRouter.MaxAttempts = 0 }, "max_attempts"},
		{"bad temperature", func(c *Config) { c.OpenRouter.Temperature = 3.0 }, "temperature"},
		{"cache ttl", func(c *Config) { c.Cache.Addr = "localhost:6379"; c.Cache.TTL = 0 }, "ttl"},
		{"bad log level", func(c *Config) { c.Log.Level = "verbose" }, "log level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
