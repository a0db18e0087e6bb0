package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/postcraft/postcraft/types"
)

func completionBody(content string) map[string]any {
	return map[string]any{
		"id":    "gen-123",
		"model": "z-ai/glm-4.5-air:free",
		"choices": []map[string]any{
			{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			},
		},
	}
}

func testClient(endpoint string) *Client {
	return New(Config{
		APIKey:           "test-key",
		EndpointOverride: endpoint,
		RequestTimeout:   time.Second,
		MaxAttempts:      3,
		BaseDelay:        time.Millisecond,
	}, zap.NewNop())
}

func TestResolveModel(t *testing.T) {
	assert.Equal(t, "z-ai/glm-4.5-air:free", ResolveModel("glm-4.5-air").ModelID)
	assert.Equal(t, "openai/gpt-4o-mini", ResolveModel("gpt-4o-mini").ModelID)
	assert.Equal(t, "anthropic/claude-3-5-sonnet-20241022", ResolveModel("claude-3-sonnet").ModelID)

	// Unknown and empty keys fall back to the default.
	assert.Equal(t, ResolveModel(DefaultModelKey), ResolveModel("no-such-model"))
	assert.Equal(t, ResolveModel(DefaultModelKey), ResolveModel(""))
}

func TestGenerate_Success(t *testing.T) {
	var gotBody chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.Equal(t, "https://postcraft.app", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "PostCraft - AI Content Generator", r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(completionBody(`{"caption":"hello"}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	text, err := client.Generate(context.Background(), GenerateParams{
		ModelKey:     "glm-4.5-air",
		SystemPrompt: "system instructions",
		UserPrompt:   "user instructions",
	})

	require.NoError(t, err)
	assert.Equal(t, `{"caption":"hello"}`, text)

	assert.Equal(t, "z-ai/glm-4.5-air:free", gotBody.Model)
	require.Len(t, gotBody.Messages, 2)
	assert.Equal(t, "system", gotBody.Messages[0].Role)
	assert.Equal(t, "user", gotBody.Messages[1].Role)
	assert.Equal(t, 2000, gotBody.MaxTokens)
	assert.InDelta(t, 0.7, gotBody.Temperature, 0.001)
}

func TestGenerate_MissingAPIKey(t *testing.T) {
	client := New(Config{}, zap.NewNop())
	_, err := client.Generate(context.Background(), GenerateParams{ModelKey: "gpt-4o"})

	require.Error(t, err)
	assert.Equal(t, types.ErrConfiguration, types.GetErrorCode(err))
}

func TestGenerate_RetriesUntilSuccess(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"error":{"message":"overloaded"}}`))
			return
		}
		json.NewEncoder(w).Encode(completionBody("recovered"))
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	text, err := client.Generate(context.Background(), GenerateParams{ModelKey: "glm-4.5-air"})

	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestGenerate_ExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	_, err := client.Generate(context.Background(), GenerateParams{ModelKey: "glm-4.5-air"})

	require.Error(t, err)
	assert.Equal(t, int32(3), calls.Load(), "all attempts consumed")
	assert.Contains(t, err.Error(), "502")
}

func TestGenerate_NonRetryableErrorStillSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	_, err := client.Generate(context.Background(), GenerateParams{ModelKey: "glm-4.5-air"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestGenerate_AttemptTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	client := New(Config{
		APIKey:           "test-key",
		EndpointOverride: srv.URL,
		RequestTimeout:   20 * time.Millisecond,
		MaxAttempts:      2,
		BaseDelay:        time.Millisecond,
	}, zap.NewNop())

	start := time.Now()
	_, err := client.Generate(context.Background(), GenerateParams{ModelKey: "glm-4.5-air"})

	require.Error(t, err)
	assert.Equal(t, types.ErrTimeout, types.GetErrorCode(err))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestGenerate_EmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "gen-1", "choices": []any{}})
	}))
	defer srv.Close()

	client := testClient(srv.URL)
	_, err := client.Generate(context.Background(), GenerateParams{ModelKey: "glm-4.5-air"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no choices")
}
