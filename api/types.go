// Package api defines the wire types of the public HTTP surface.
package api

import (
	"github.com/postcraft/postcraft/types"
)

// =============================================================================
// Generation request / response types
// =============================================================================

// GenerateRequest is the inbound body of POST /v1/generate. The three
// generate* toggles default to true when omitted, so they are pointers.
type GenerateRequest struct {
	// Campaign objective, used as source text when content and theme are absent
	Objective string `json:"objective,omitempty" example:"aumentar engajamento"`
	// Target social network (instagram, linkedin, tiktok)
	Network string `json:"network" example:"instagram"`
	// Template identifier, informational only
	Template string `json:"template,omitempty" example:"ig-post"`
	// Content theme, used as source text when content is absent
	Theme string `json:"theme,omitempty" example:"marketing digital"`
	// Primary source text for the generation
	Content string `json:"content,omitempty" example:"lançamento do novo produto"`
	// Model key (glm-4.5-air, gpt-4o-mini, gpt-4o, claude-3-sonnet)
	Model string `json:"model,omitempty" example:"glm-4.5-air"`
	// Whether to generate carousel prompts and images (default true)
	GenerateImages *bool `json:"generateImages,omitempty"`
	// Whether to generate a caption (default true)
	GenerateCaption *bool `json:"generateCaption,omitempty"`
	// Whether to generate hashtags (default true)
	GenerateHashtags *bool `json:"generateHashtags,omitempty"`
	// Verbatim replacement for the default user prompt
	CustomPrompt string `json:"customPrompt,omitempty"`
}

// ToGenerationRequest applies defaults and converts to the internal
// request type.
func (r *GenerateRequest) ToGenerationRequest() *types.GenerationRequest {
	return &types.GenerationRequest{
		Objective:        r.Objective,
		Network:          types.SocialNetwork(r.Network),
		TemplateID:       r.Template,
		Theme:            r.Theme,
		Content:          r.Content,
		ModelKey:         r.Model,
		GenerateImages:   boolOrTrue(r.GenerateImages),
		GenerateCaption:  boolOrTrue(r.GenerateCaption),
		GenerateHashtags: boolOrTrue(r.GenerateHashtags),
		CustomPrompt:     r.CustomPrompt,
	}
}

func boolOrTrue(b *bool) bool {
	return b == nil || *b
}
