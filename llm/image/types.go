// Package image provides the image-generation providers and the
// cascading waterfall that drives them.
package image

import (
	"context"
	"fmt"
)

// Result is one image returned by a provider call. Exactly one of URL or
// B64 is expected to be set.
type Result struct {
	URL           string
	B64           string
	RevisedPrompt string
}

// Provider is a single image-generation backend. Generate performs one
// uncached, unretried call for one prompt; retry, timeout, and pacing are
// owned by the waterfall.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// Configured reports whether a credential is available. Unconfigured
	// providers are skipped by the waterfall, never called.
	Configured() bool

	// Generate produces one image from a prompt.
	Generate(ctx context.Context, prompt string) (*Result, error)
}

// DataURL embeds base64 PNG bytes as a data URL.
func DataURL(b64 string) string {
	return fmt.Sprintf("data:image/png;base64,%s", b64)
}
