package image

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProvider_Generate(t *testing.T) {
	var gotBody dalleRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer sk-img", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"b64_json": "aW1hZ2U=", "revised_prompt": "a nicer bicycle"},
			},
		})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-img", BaseURL: srv.URL})
	result, err := p.Generate(context.Background(), "a bicycle")

	require.NoError(t, err)
	assert.Equal(t, "aW1hZ2U=", result.B64)
	assert.Equal(t, "a nicer bicycle", result.RevisedPrompt)

	assert.Equal(t, "dall-e-3", gotBody.Model)
	assert.Equal(t, 1, gotBody.N)
	assert.Equal(t, "1024x1024", gotBody.Size)
	assert.Equal(t, "standard", gotBody.Quality)
	assert.Equal(t, "b64_json", gotBody.ResponseFormat)
}

func TestOpenAIProvider_ErrorIncludesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte("rate limited"))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-img", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "a bicycle")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
	assert.Contains(t, err.Error(), "rate limited")
}

func TestOpenAIProvider_EmptyData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"data": []any{}})
	}))
	defer srv.Close()

	p := NewOpenAIProvider(OpenAIConfig{APIKey: "sk-img", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "a bicycle")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image data")
}

func TestFluxProvider_Generate(t *testing.T) {
	var gotBody fluxRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer or-key", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("HTTP-Referer"))
		assert.NotEmpty(t, r.Header.Get("X-Title"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{{"url": "https://img.example/flux.png"}},
		})
	}))
	defer srv.Close()

	p := NewFluxProvider(FluxConfig{APIKey: "or-key", BaseURL: srv.URL})
	result, err := p.Generate(context.Background(), "a bicycle")

	require.NoError(t, err)
	assert.Equal(t, "https://img.example/flux.png", result.URL)

	assert.Equal(t, "black-forest-labs/flux-1-schnell", gotBody.Model)
	assert.Equal(t, 1024, gotBody.Width)
	assert.Equal(t, 1024, gotBody.Height)
	assert.Equal(t, 4, gotBody.Steps)
	assert.Equal(t, "url", gotBody.ResponseFormat)
}

func TestExtractFluxURL_ShapePriority(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
		ok   bool
	}{
		{
			name: "data array shape",
			body: `{"data":[{"url":"https://a"}]}`,
			want: "https://a",
			ok:   true,
		},
		{
			name: "top-level url shape",
			body: `{"url":"https://b"}`,
			want: "https://b",
			ok:   true,
		},
		{
			name: "images array shape",
			body: `{"images":[{"url":"https://c"}]}`,
			want: "https://c",
			ok:   true,
		},
		{
			name: "data shape wins over the others",
			body: `{"data":[{"url":"https://a"}],"url":"https://b","images":[{"url":"https://c"}]}`,
			want: "https://a",
			ok:   true,
		},
		{
			name: "top-level url wins over images",
			body: `{"url":"https://b","images":[{"url":"https://c"}]}`,
			want: "https://b",
			ok:   true,
		},
		{
			name: "empty data array falls through",
			body: `{"data":[],"url":"https://b"}`,
			want: "https://b",
			ok:   true,
		},
		{
			name: "no known shape",
			body: `{"result":{"sample":"https://d"}}`,
			ok:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var decoded map[string]any
			require.NoError(t, json.Unmarshal([]byte(tt.body), &decoded))

			got, ok := extractFluxURL(decoded)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFluxProvider_UnknownShapeErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"unexpected": true})
	}))
	defer srv.Close()

	p := NewFluxProvider(FluxConfig{APIKey: "or-key", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "a bicycle")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no image URL")
}

func TestStabilityProvider_Generate(t *testing.T) {
	var gotBody stabilityRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/generation/stable-diffusion-xl-1024x1024/text-to-image", r.URL.Path)
		assert.Equal(t, "Bearer st-key", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(map[string]any{
			"artifacts": []map[string]any{{"base64": "c3RhYmxl"}},
		})
	}))
	defer srv.Close()

	p := NewStabilityProvider(StabilityConfig{APIKey: "st-key", BaseURL: srv.URL})
	result, err := p.Generate(context.Background(), "a bicycle")

	require.NoError(t, err)
	assert.Equal(t, "c3RhYmxl", result.B64)

	require.Len(t, gotBody.TextPrompts, 1)
	assert.Equal(t, "a bicycle", gotBody.TextPrompts[0].Text)
	assert.Equal(t, 7, gotBody.CFGScale)
	assert.Equal(t, 1024, gotBody.Width)
	assert.Equal(t, 1024, gotBody.Height)
	assert.Equal(t, 1, gotBody.Samples)
	assert.Equal(t, 30, gotBody.Steps)
}

func TestStabilityProvider_NoArtifacts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"artifacts": []any{}})
	}))
	defer srv.Close()

	p := NewStabilityProvider(StabilityConfig{APIKey: "st-key", BaseURL: srv.URL})
	_, err := p.Generate(context.Background(), "a bicycle")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no artifacts")
}
