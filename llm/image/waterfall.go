package image

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/postcraft/postcraft/internal/metrics"
	"github.com/postcraft/postcraft/llm/retry"
	"github.com/postcraft/postcraft/llm/timeout"
	"github.com/postcraft/postcraft/types"
)

// Step is one rung of the waterfall: a provider plus its independent
// retry, timeout, image-count, and pacing policy.
type Step struct {
	Provider    Provider
	MaxImages   int
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration

	// Pacing is the minimum interval between consecutive image requests
	// within this step. Zero disables pacing (used by tests).
	Pacing time.Duration
}

// Waterfall tries image providers in fixed priority order, stopping as
// soon as any provider yields at least one image. It never fails: missing
// credentials and provider errors produce an empty or partial result.
type Waterfall struct {
	steps   []Step
	logger  *zap.Logger
	metrics *metrics.Collector
}

// NewWaterfall creates a waterfall over the given steps in priority order.
func NewWaterfall(steps []Step, logger *zap.Logger, collector *metrics.Collector) *Waterfall {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Waterfall{
		steps:   steps,
		logger:  logger.With(zap.String("component", "image_waterfall")),
		metrics: collector,
	}
}

// DefaultSteps builds the production cascade: DALL-E (premium), then Flux
// (fast fallback), then Stability (final fallback, capped at 2 images).
func DefaultSteps(openAICfg OpenAIConfig, fluxCfg FluxConfig, stabilityCfg StabilityConfig) []Step {
	return []Step{
		{
			Provider:    NewOpenAIProvider(openAICfg),
			MaxImages:   3,
			Timeout:     openAICfg.Timeout,
			MaxAttempts: 2,
			BaseDelay:   3 * time.Second,
			Pacing:      openAICfg.Pacing,
		},
		{
			Provider:    NewFluxProvider(fluxCfg),
			MaxImages:   3,
			Timeout:     fluxCfg.Timeout,
			MaxAttempts: 2,
			BaseDelay:   3 * time.Second,
			Pacing:      fluxCfg.Pacing,
		},
		{
			Provider:    NewStabilityProvider(stabilityCfg),
			MaxImages:   2,
			Timeout:     stabilityCfg.Timeout,
			MaxAttempts: 2,
			BaseDelay:   5 * time.Second,
			Pacing:      stabilityCfg.Pacing,
		},
	}
}

// Generate materializes images for the given prompts. Providers are tried
// strictly in priority order; within a provider, images are generated
// strictly in prompt order under the step's pacing delay. Per-image
// errors are logged and skipped.
func (w *Waterfall) Generate(ctx context.Context, prompts []string, network types.SocialNetwork) []types.GeneratedImage {
	if len(prompts) == 0 {
		return []types.GeneratedImage{}
	}

	w.logger.Info("starting image generation",
		zap.Int("prompt_count", len(prompts)),
		zap.String("network", string(network)),
	)

	for _, step := range w.steps {
		if !step.Provider.Configured() {
			w.logger.Debug("provider not configured, skipping",
				zap.String("provider", step.Provider.Name()))
			continue
		}

		images := w.runStep(ctx, step, prompts, network)
		if len(images) > 0 {
			w.logger.Info("image generation completed",
				zap.String("provider", step.Provider.Name()),
				zap.Int("total_generated", len(images)),
			)
			return images
		}
	}

	w.logger.Warn("image generation produced no images")
	return []types.GeneratedImage{}
}

func (w *Waterfall) runStep(ctx context.Context, step Step, prompts []string, network types.SocialNetwork) []types.GeneratedImage {
	logger := w.logger.With(zap.String("provider", step.Provider.Name()))
	logger.Info("attempting provider")

	maxImages := min(len(prompts), step.MaxImages)
	retryer := retry.NewBackoffRetryer(&retry.Policy{
		MaxAttempts: step.MaxAttempts,
		BaseDelay:   step.BaseDelay,
	}, logger)

	var limiter *rate.Limiter
	if step.Pacing > 0 {
		limiter = rate.NewLimiter(rate.Every(step.Pacing), 1)
	}

	images := make([]types.GeneratedImage, 0, maxImages)
	for i := 0; i < maxImages; i++ {
		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				logger.Warn("pacing wait cancelled", zap.Error(err))
				break
			}
		}

		logger.Info("generating image",
			zap.Int("index", i+1),
			zap.Int("total", maxImages),
		)

		enhanced := enhancePrompt(prompts[i], network)
		result, err := retry.DoWithResultTyped(retryer, ctx, func() (*Result, error) {
			return timeout.Do(ctx, step.Timeout, func(ctx context.Context) (*Result, error) {
				return step.Provider.Generate(ctx, enhanced)
			})
		})
		if err != nil {
			w.metrics.RecordProviderAttempt(step.Provider.Name(), false)
			logger.Error("generation failed for image",
				zap.Int("index", i+1),
				zap.Error(err),
			)
			continue
		}

		w.metrics.RecordProviderAttempt(step.Provider.Name(), true)
		w.metrics.RecordImageGenerated(step.Provider.Name())
		images = append(images, assembleImage(prompts[i], result))
	}

	return images
}

// enhancePrompt appends the quality and network-suitability boilerplate
// shared by all providers.
func enhancePrompt(prompt string, network types.SocialNetwork) string {
	return fmt.Sprintf("%s. High quality, professional, suitable for %s social media post. Modern design, vibrant colors, engaging composition.", prompt, network)
}

func assembleImage(prompt string, result *Result) types.GeneratedImage {
	img := types.GeneratedImage{
		Prompt:        prompt,
		Format:        "png",
		RevisedPrompt: result.RevisedPrompt,
	}
	if img.RevisedPrompt == "" {
		img.RevisedPrompt = prompt
	}
	if result.B64 != "" {
		img.URL = DataURL(result.B64)
		img.ImageBase64 = result.B64
	} else {
		img.URL = result.URL
	}
	return img
}
