// Package handlers implements the HTTP handlers of the public API.
package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// =============================================================================
// CORS
// =============================================================================

// Browser clients call the generation endpoint directly, so every response
// carries permissive CORS headers.
var corsHeaders = map[string]string{
	"Access-Control-Allow-Origin":  "*",
	"Access-Control-Allow-Headers": "authorization, x-client-info, apikey, content-type",
}

// ApplyCORS sets the shared CORS headers on a response.
func ApplyCORS(w http.ResponseWriter) {
	for k, v := range corsHeaders {
		w.Header().Set(k, v)
	}
}

// HandlePreflight answers an OPTIONS preflight with the CORS headers and
// an empty body. Callers must return immediately afterwards.
func HandlePreflight(w http.ResponseWriter) {
	ApplyCORS(w)
	w.WriteHeader(http.StatusOK)
}

// =============================================================================
// Response helpers
// =============================================================================

// WriteJSON writes a JSON response with the CORS headers applied.
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	ApplyCORS(w)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already out; nothing left to do but drop it.
		return
	}
}

// DecodeJSONBody decodes a JSON request body into dst.
func DecodeJSONBody(r *http.Request, dst interface{}, logger *zap.Logger) error {
	if r.Body == nil {
		return errEmptyBody
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if logger != nil {
			logger.Warn("invalid JSON body", zap.Error(err))
		}
		return err
	}
	return nil
}

var errEmptyBody = &bodyError{"request body is empty"}

type bodyError struct{ msg string }

func (e *bodyError) Error() string { return e.msg }

// =============================================================================
// Response wrapper (captures status for logging and metrics)
// =============================================================================

// ResponseWriter wraps http.ResponseWriter to capture the status code.
type ResponseWriter struct {
	http.ResponseWriter
	StatusCode int
	Written    bool
}

// NewResponseWriter creates a status-capturing wrapper.
func NewResponseWriter(w http.ResponseWriter) *ResponseWriter {
	return &ResponseWriter{
		ResponseWriter: w,
		StatusCode:     http.StatusOK,
	}
}

func (rw *ResponseWriter) WriteHeader(code int) {
	if !rw.Written {
		rw.StatusCode = code
		rw.Written = true
		rw.ResponseWriter.WriteHeader(code)
	}
}

func (rw *ResponseWriter) Write(b []byte) (int, error) {
	if !rw.Written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
