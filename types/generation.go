package types

// SocialNetwork identifies the target network for a post.
type SocialNetwork string

const (
	NetworkInstagram SocialNetwork = "instagram"
	NetworkLinkedIn  SocialNetwork = "linkedin"
	NetworkTikTok    SocialNetwork = "tiktok"
)

// GenerationRequest carries the normalized parameters for one content
// generation run. It is built by the API layer from the inbound JSON body
// with defaults already applied.
type GenerationRequest struct {
	Network          SocialNetwork `json:"network"`
	TemplateID       string        `json:"template"`
	Objective        string        `json:"objective,omitempty"`
	Theme            string        `json:"theme,omitempty"`
	Content          string        `json:"content,omitempty"`
	ModelKey         string        `json:"model"`
	GenerateImages   bool          `json:"generate_images"`
	GenerateCaption  bool          `json:"generate_caption"`
	GenerateHashtags bool          `json:"generate_hashtags"`
	CustomPrompt     string        `json:"custom_prompt,omitempty"`
}

// SourceText returns the first non-empty of content, theme, objective.
// It is what the prompts and the parser fallback are built from.
func (r *GenerationRequest) SourceText() string {
	if r.Content != "" {
		return r.Content
	}
	if r.Theme != "" {
		return r.Theme
	}
	return r.Objective
}

// GeneratedContent is the typed payload extracted from the text model
// response. Fields not requested may be absent.
type GeneratedContent struct {
	Caption         string   `json:"caption,omitempty"`
	Hashtags        []string `json:"hashtags,omitempty"`
	CarouselPrompts []string `json:"carousel_prompts,omitempty"`
}

// GeneratedImage is one materialized image. URL is either a remote URL or
// an embedded base64 data URL. Instances are never mutated after creation.
type GeneratedImage struct {
	Prompt        string `json:"prompt"`
	URL           string `json:"url"`
	ImageBase64   string `json:"image,omitempty"`
	Format        string `json:"format"`
	RevisedPrompt string `json:"revised_prompt"`
}

// GenerationMetadata describes how a generation run went.
type GenerationMetadata struct {
	ModelUsed           string `json:"model_used"`
	ImagesGenerated     int    `json:"images_generated"`
	TotalProcessingTime int64  `json:"total_processing_time"`
	Timestamp           string `json:"timestamp"`
}

// GenerationResult is the response envelope. It is constructed once per
// request and returned unconditionally; failures are encoded in the body,
// never as transport-level errors.
type GenerationResult struct {
	Success         bool               `json:"success"`
	Content         *GeneratedContent  `json:"content,omitempty"`
	Images          []GeneratedImage   `json:"images"`
	Metadata        GenerationMetadata `json:"metadata"`
	Error           string             `json:"error,omitempty"`
	FallbackContent *GeneratedContent  `json:"fallback_content,omitempty"`
}
