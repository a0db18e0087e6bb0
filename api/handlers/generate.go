package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/postcraft/postcraft/api"
	"github.com/postcraft/postcraft/content"
	"github.com/postcraft/postcraft/generation"
	"github.com/postcraft/postcraft/types"
)

// =============================================================================
// Content generation handler
// =============================================================================

// GenerateHandler serves POST /v1/generate.
type GenerateHandler struct {
	service *generation.Service
	logger  *zap.Logger
}

// NewGenerateHandler creates the generation handler.
func NewGenerateHandler(service *generation.Service, logger *zap.Logger) *GenerateHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerateHandler{
		service: service,
		logger:  logger,
	}
}

// HandleGenerate runs one generation request. The response is always
// HTTP 200 with the outcome encoded in the envelope body, so browser
// clients never hit transport-level error paths.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		HandlePreflight(w)
		return
	}

	start := time.Now()

	if r.Method != http.MethodPost {
		h.writeFailure(w, start, "", "method not allowed, use POST")
		return
	}

	var body api.GenerateRequest
	if err := DecodeJSONBody(r, &body, h.logger); err != nil {
		h.writeFailure(w, start, "", "invalid request body: "+err.Error())
		return
	}

	req := body.ToGenerationRequest()
	result := h.service.Generate(r.Context(), req)

	WriteJSON(w, http.StatusOK, result)
}

// writeFailure emits the degraded envelope for requests that never reach
// the orchestrator, mirroring its failure shape.
func (h *GenerateHandler) writeFailure(w http.ResponseWriter, start time.Time, model, message string) {
	h.logger.Warn("request rejected", zap.String("reason", message))

	WriteJSON(w, http.StatusOK, &types.GenerationResult{
		Success:         false,
		Error:           message,
		Images:          []types.GeneratedImage{},
		FallbackContent: content.StaticFallback(),
		Metadata: types.GenerationMetadata{
			ModelUsed:           model,
			TotalProcessingTime: time.Since(start).Milliseconds(),
			Timestamp:           time.Now().UTC().Format(time.RFC3339),
		},
	})
}
