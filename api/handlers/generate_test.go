package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/postcraft/postcraft/content"
	"github.com/postcraft/postcraft/generation"
	"github.com/postcraft/postcraft/llm/providers/openrouter"
	"github.com/postcraft/postcraft/types"
)

type fixedText struct {
	response string
	err      error
	lastReq  openrouter.GenerateParams
}

func (f *fixedText) Generate(ctx context.Context, params openrouter.GenerateParams) (string, error) {
	f.lastReq = params
	return f.response, f.err
}

type noImages struct{}

func (noImages) Generate(ctx context.Context, prompts []string, network types.SocialNetwork) []types.GeneratedImage {
	return []types.GeneratedImage{}
}

func newTestHandler(text *fixedText) *GenerateHandler {
	svc := generation.NewService(text, noImages{}, content.NewParser(zap.NewNop()), nil, nil, zap.NewNop())
	return NewGenerateHandler(svc, zap.NewNop())
}

func postGenerate(t *testing.T, h *GenerateHandler, body string) (*httptest.ResponseRecorder, *types.GenerationResult) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/v1/generate", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.HandleGenerate(rec, req)

	var result types.GenerationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return rec, &result
}

func TestHandleGenerate_Success(t *testing.T) {
	text := &fixedText{response: `{"caption":"X","hashtags":["#a","#b"]}`}
	h := newTestHandler(text)

	rec, result := postGenerate(t, h, `{"network":"instagram","template":"ig-post","content":"novo produto","generateImages":false}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.True(t, result.Success)
	require.NotNil(t, result.Content)
	assert.Equal(t, "X", result.Content.Caption)
	assert.NotNil(t, result.Images)
	assert.Empty(t, result.Images)
	assert.Equal(t, "glm-4.5-air", result.Metadata.ModelUsed)
}

func TestHandleGenerate_DefaultsFlagsTrue(t *testing.T) {
	text := &fixedText{response: `{"caption":"c"}`}
	h := newTestHandler(text)

	postGenerate(t, h, `{"network":"tiktok","content":"tema"}`)

	assert.Contains(t, text.lastReq.SystemPrompt, "caption")
	assert.Contains(t, text.lastReq.SystemPrompt, "hashtags")
	assert.Contains(t, text.lastReq.SystemPrompt, "carousel_prompts")
}

func TestHandleGenerate_ExplicitFalseFlags(t *testing.T) {
	text := &fixedText{response: `{"caption":"c"}`}
	h := newTestHandler(text)

	postGenerate(t, h, `{"network":"tiktok","content":"tema","generateImages":false,"generateHashtags":false}`)

	assert.Contains(t, text.lastReq.SystemPrompt, "caption")
	assert.NotContains(t, text.lastReq.SystemPrompt, "carousel_prompts")
	assert.NotContains(t, text.lastReq.SystemPrompt, "hashtags")
}

func TestHandleGenerate_TextFailureStillHTTP200(t *testing.T) {
	text := &fixedText{err: types.NewError(types.ErrConfiguration, "OpenRouter API key not configured")}
	h := newTestHandler(text)

	rec, result := postGenerate(t, h, `{"network":"linkedin","content":"tema"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "OpenRouter API key not configured")
	require.NotNil(t, result.FallbackContent)
	assert.NotEmpty(t, result.FallbackContent.Caption)
}

func TestHandleGenerate_InvalidBodyStillHTTP200(t *testing.T) {
	h := newTestHandler(&fixedText{response: "{}"})

	rec, result := postGenerate(t, h, `{"network": `)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "invalid request body")
	require.NotNil(t, result.FallbackContent)
}

func TestHandleGenerate_Preflight(t *testing.T) {
	h := newTestHandler(&fixedText{response: "{}"})

	req := httptest.NewRequest(http.MethodOptions, "/v1/generate", nil)
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "authorization, x-client-info, apikey, content-type",
		rec.Header().Get("Access-Control-Allow-Headers"))
	assert.Empty(t, rec.Body.String())
}

func TestHandleGenerate_MethodNotAllowed(t *testing.T) {
	h := newTestHandler(&fixedText{response: "{}"})

	req := httptest.NewRequest(http.MethodGet, "/v1/generate", nil)
	rec := httptest.NewRecorder()
	h.HandleGenerate(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result types.GenerationResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "method not allowed")
}
