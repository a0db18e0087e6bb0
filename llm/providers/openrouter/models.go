package openrouter

// ModelConfig describes one selectable text model: the upstream provider,
// the chat-completions endpoint, and the provider-side model identifier.
// The registry is immutable and process-wide.
type ModelConfig struct {
	Provider string
	Endpoint string
	ModelID  string
}

// DefaultModelKey is used when the request omits a model or names an
// unknown one. It maps to a free-tier model so degraded requests still
// produce output without burning credits.
const DefaultModelKey = "glm-4.5-air"

const chatCompletionsEndpoint = "https://openrouter.ai/api/v1/chat/completions"

var modelRegistry = map[string]ModelConfig{
	"glm-4.5-air": {
		Provider: "openrouter",
		Endpoint: chatCompletionsEndpoint,
		ModelID:  "z-ai/glm-4.5-air:free",
	},
	"gpt-4o-mini": {
		Provider: "openrouter",
		Endpoint: chatCompletionsEndpoint,
		ModelID:  "openai/gpt-4o-mini",
	},
	"gpt-4o": {
		Provider: "openrouter",
		Endpoint: chatCompletionsEndpoint,
		ModelID:  "openai/gpt-4o",
	},
	"claude-3-sonnet": {
		Provider: "openrouter",
		Endpoint: chatCompletionsEndpoint,
		ModelID:  "anthropic/claude-3-5-sonnet-20241022",
	},
}

// ResolveModel returns the configuration for key, falling back to
// DefaultModelKey when the key is unknown or empty.
func ResolveModel(key string) ModelConfig {
	if cfg, ok := modelRegistry[key]; ok {
		return cfg
	}
	return modelRegistry[DefaultModelKey]
}

// KnownModelKeys lists the selectable model keys.
func KnownModelKeys() []string {
	keys := make([]string, 0, len(modelRegistry))
	for k := range modelRegistry {
		keys = append(keys, k)
	}
	return keys
}
