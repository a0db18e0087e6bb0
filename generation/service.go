// Package generation sequences one content-generation run: text
// generation, response parsing, and the image waterfall, assembled into a
// response envelope that is returned unconditionally.
package generation

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/postcraft/postcraft/content"
	"github.com/postcraft/postcraft/internal/cache"
	"github.com/postcraft/postcraft/internal/metrics"
	"github.com/postcraft/postcraft/llm/providers/openrouter"
	"github.com/postcraft/postcraft/types"
)

// TextGenerator produces raw model text for a pair of prompts.
type TextGenerator interface {
	Generate(ctx context.Context, params openrouter.GenerateParams) (string, error)
}

// ImageGenerator materializes images for a list of prompts. It never
// fails; degraded outcomes are an empty or partial slice.
type ImageGenerator interface {
	Generate(ctx context.Context, prompts []string, network types.SocialNetwork) []types.GeneratedImage
}

// Service is the request orchestrator.
type Service struct {
	text    TextGenerator
	images  ImageGenerator
	parser  *content.Parser
	cache   *cache.Manager
	metrics *metrics.Collector
	logger  *zap.Logger
}

// NewService creates the orchestrator. cache and collector may be nil.
func NewService(text TextGenerator, images ImageGenerator, parser *content.Parser,
	resultCache *cache.Manager, collector *metrics.Collector, logger *zap.Logger) *Service {
	if parser == nil {
		parser = content.NewParser(logger)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		text:    text,
		images:  images,
		parser:  parser,
		cache:   resultCache,
		metrics: collector,
		logger:  logger.With(zap.String("component", "generation")),
	}
}

// Generate runs the full pipeline for one request and always returns a
// well-formed envelope. Text-stage failures degrade to success=false with
// static fallback content; they are never surfaced as errors.
func (s *Service) Generate(ctx context.Context, req *types.GenerationRequest) *types.GenerationResult {
	start := time.Now()

	if req.ModelKey == "" {
		req.ModelKey = openrouter.DefaultModelKey
	}

	s.logger.Info("processing request",
		zap.String("network", string(req.Network)),
		zap.String("template", req.TemplateID),
		zap.String("model", req.ModelKey),
		zap.Bool("generate_images", req.GenerateImages),
		zap.Bool("generate_caption", req.GenerateCaption),
		zap.Bool("generate_hashtags", req.GenerateHashtags),
	)

	cacheKey := cache.Key(req)
	if cached, ok := s.cache.GetResult(ctx, cacheKey); ok {
		s.metrics.RecordCacheHit("result")
		s.logger.Info("serving cached result")
		return cached
	}
	s.metrics.RecordCacheMiss("result")

	rawText, err := s.text.Generate(ctx, openrouter.GenerateParams{
		ModelKey:     req.ModelKey,
		SystemPrompt: content.BuildSystemPrompt(req),
		UserPrompt:   content.BuildUserPrompt(req),
	})
	if err != nil {
		s.logger.Error("request failed",
			zap.Error(err),
			zap.Duration("processing_time", time.Since(start)),
		)
		s.metrics.RecordGeneration(string(req.Network), false, time.Since(start))
		return s.degradedResult(req, err, start)
	}
	s.logger.Info("AI text generated successfully")

	parsed, source := s.parser.Parse(rawText, req.Network, req.SourceText(), content.Fields{
		Caption:         req.GenerateCaption,
		Hashtags:        req.GenerateHashtags,
		CarouselPrompts: req.GenerateImages,
	})

	images := []types.GeneratedImage{}
	if req.GenerateImages && len(parsed.CarouselPrompts) > 0 {
		images = s.images.Generate(ctx, parsed.CarouselPrompts, req.Network)
	}

	result := &types.GenerationResult{
		Success: true,
		Content: parsed,
		Images:  images,
		Metadata: types.GenerationMetadata{
			ModelUsed:           req.ModelKey,
			ImagesGenerated:     len(images),
			TotalProcessingTime: time.Since(start).Milliseconds(),
			Timestamp:           time.Now().UTC().Format(time.RFC3339),
		},
	}

	// Fallback-sourced content means the model output was unusable; not
	// worth reusing on a resubmission.
	if source == content.SourceParsed {
		s.cache.SetResult(ctx, cacheKey, result)
	}

	s.metrics.RecordGeneration(string(req.Network), true, time.Since(start))
	s.logger.Info("request completed successfully",
		zap.Duration("processing_time", time.Since(start)),
		zap.Int("images_generated", len(images)),
	)

	return result
}

func (s *Service) degradedResult(req *types.GenerationRequest, err error, start time.Time) *types.GenerationResult {
	return &types.GenerationResult{
		Success:         false,
		Error:           err.Error(),
		Images:          []types.GeneratedImage{},
		FallbackContent: content.StaticFallback(),
		Metadata: types.GenerationMetadata{
			ModelUsed:           req.ModelKey,
			ImagesGenerated:     0,
			TotalProcessingTime: time.Since(start).Milliseconds(),
			Timestamp:           time.Now().UTC().Format(time.RFC3339),
		},
	}
}
