package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/postcraft/postcraft/api/handlers"
	"github.com/postcraft/postcraft/config"
	"github.com/postcraft/postcraft/content"
	"github.com/postcraft/postcraft/generation"
	"github.com/postcraft/postcraft/internal/cache"
	"github.com/postcraft/postcraft/internal/metrics"
	"github.com/postcraft/postcraft/internal/server"
	"github.com/postcraft/postcraft/llm/image"
	"github.com/postcraft/postcraft/llm/providers/openrouter"
)

// =============================================================================
// Server
// =============================================================================

// Server wires the configuration into the running service.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	httpManager    *server.Manager
	metricsManager *server.Manager

	generateHandler *handlers.GenerateHandler
	healthHandler   *handlers.HealthHandler

	metricsCollector *metrics.Collector
	resultCache      *cache.Manager
}

// NewServer creates a server from cfg.
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	return &Server{
		cfg:    cfg,
		logger: logger,
	}
}

// Start brings up the cache, the generation pipeline, and both listeners.
func (s *Server) Start() error {
	s.metricsCollector = metrics.NewCollector("postcraft", nil, s.logger)

	if err := s.initCache(); err != nil {
		// Cache is optional; without it every request is generated fresh.
		s.logger.Warn("Result cache unavailable, continuing without it", zap.Error(err))
	}

	s.initHandlers()

	if err := s.startHTTPServer(); err != nil {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	if err := s.startMetricsServer(); err != nil {
		return fmt.Errorf("failed to start metrics server: %w", err)
	}

	s.logger.Info("All servers started",
		zap.Int("http_port", s.cfg.Server.HTTPPort),
		zap.Int("metrics_port", s.cfg.Server.MetricsPort),
		zap.Bool("cache_enabled", s.resultCache != nil),
	)
	return nil
}

func (s *Server) initCache() error {
	if s.cfg.Cache.Addr == "" {
		return nil
	}
	manager, err := cache.NewManager(cache.Config{
		Addr:         s.cfg.Cache.Addr,
		Password:     s.cfg.Cache.Password,
		DB:           s.cfg.Cache.DB,
		DefaultTTL:   s.cfg.Cache.TTL,
		PoolSize:     s.cfg.Cache.PoolSize,
		MinIdleConns: s.cfg.Cache.MinIdleConns,
	}, s.logger)
	if err != nil {
		return err
	}
	s.resultCache = manager
	return nil
}

func (s *Server) initHandlers() {
	textClient := openrouter.New(openrouter.Config{
		APIKey:         s.cfg.OpenRouter.APIKey,
		Referer:        s.cfg.OpenRouter.Referer,
		Title:          s.cfg.OpenRouter.Title,
		RequestTimeout: s.cfg.OpenRouter.RequestTimeout,
		MaxAttempts:    s.cfg.OpenRouter.MaxAttempts,
		BaseDelay:      s.cfg.OpenRouter.BaseDelay,
		MaxTokens:      s.cfg.OpenRouter.MaxTokens,
		Temperature:    float32(s.cfg.OpenRouter.Temperature),
	}, s.logger)
	if !textClient.Configured() {
		s.logger.Warn("OpenRouter API key not configured, generation requests will return fallback content")
	}

	waterfall := image.NewWaterfall(
		image.DefaultSteps(s.openAIConfig(), s.fluxConfig(), s.stabilityConfig()),
		s.logger, s.metricsCollector,
	)

	parser := content.NewParser(s.logger)
	service := generation.NewService(textClient, waterfall, parser,
		s.resultCache, s.metricsCollector, s.logger)

	s.generateHandler = handlers.NewGenerateHandler(service, s.logger)
	s.healthHandler = handlers.NewHealthHandler(s.logger)
	if s.resultCache != nil {
		s.healthHandler.RegisterCheck(handlers.NewPingHealthCheck("redis", s.resultCache.Ping))
	}

	s.logger.Info("Handlers initialized")
}

func (s *Server) openAIConfig() image.OpenAIConfig {
	cfg := image.DefaultOpenAIConfig()
	cfg.APIKey = s.cfg.Images.OpenAI.APIKey
	applyOverrides(&cfg.BaseURL, s.cfg.Images.OpenAI.BaseURL, &cfg.Model, s.cfg.Images.OpenAI.Model)
	return cfg
}

func (s *Server) fluxConfig() image.FluxConfig {
	cfg := image.DefaultFluxConfig()
	cfg.APIKey = s.cfg.Images.Flux.APIKey
	if cfg.APIKey == "" {
		// Flux rides on the OpenRouter account used for text.
		cfg.APIKey = s.cfg.OpenRouter.APIKey
	}
	cfg.Referer = s.cfg.OpenRouter.Referer
	applyOverrides(&cfg.BaseURL, s.cfg.Images.Flux.BaseURL, &cfg.Model, s.cfg.Images.Flux.Model)
	return cfg
}

func (s *Server) stabilityConfig() image.StabilityConfig {
	cfg := image.DefaultStabilityConfig()
	cfg.APIKey = s.cfg.Images.Stability.APIKey
	applyOverrides(&cfg.BaseURL, s.cfg.Images.Stability.BaseURL, &cfg.Model, s.cfg.Images.Stability.Model)
	return cfg
}

func applyOverrides(baseURL *string, baseURLOverride string, model *string, modelOverride string) {
	if baseURLOverride != "" {
		*baseURL = baseURLOverride
	}
	if modelOverride != "" {
		*model = modelOverride
	}
}

// =============================================================================
// HTTP servers
// =============================================================================

func (s *Server) startHTTPServer() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.healthHandler.HandleHealthz)
	mux.HandleFunc("/readyz", s.healthHandler.HandleReady)
	mux.HandleFunc("/version", s.healthHandler.HandleVersion(Version, BuildTime, GitCommit))
	mux.HandleFunc("/v1/generate", s.generateHandler.HandleGenerate)

	handler := handlers.Chain(s.logger, s.metricsCollector, mux)

	serverConfig := server.DefaultConfig()
	serverConfig.Addr = fmt.Sprintf(":%d", s.cfg.Server.HTTPPort)
	serverConfig.ReadTimeout = s.cfg.Server.ReadTimeout
	serverConfig.WriteTimeout = s.cfg.Server.WriteTimeout
	serverConfig.ShutdownTimeout = s.cfg.Server.ShutdownTimeout

	s.httpManager = server.NewManager(handler, serverConfig, s.logger)
	if err := s.httpManager.Start(); err != nil {
		return err
	}

	s.logger.Info("HTTP server started", zap.Int("port", s.cfg.Server.HTTPPort))
	return nil
}

func (s *Server) startMetricsServer() error {
	if s.cfg.Server.MetricsPort == 0 {
		s.logger.Info("Metrics server disabled")
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	serverConfig := server.DefaultConfig()
	serverConfig.Addr = fmt.Sprintf(":%d", s.cfg.Server.MetricsPort)
	serverConfig.WriteTimeout = 30 * time.Second

	s.metricsManager = server.NewManager(mux, serverConfig, s.logger)
	if err := s.metricsManager.Start(); err != nil {
		return err
	}

	s.logger.Info("Metrics server started", zap.Int("port", s.cfg.Server.MetricsPort))
	return nil
}

// WaitForShutdown blocks until a signal arrives, then stops everything.
func (s *Server) WaitForShutdown() {
	s.httpManager.WaitForShutdown()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if s.metricsManager != nil {
		if err := s.metricsManager.Shutdown(ctx); err != nil {
			s.logger.Error("Metrics server shutdown failed", zap.Error(err))
		}
	}
	if err := s.resultCache.Close(); err != nil {
		s.logger.Error("Cache close failed", zap.Error(err))
	}
}
