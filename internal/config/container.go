package config

import (
	"context"
	"fmt"

	"image-text-reader/internal/domain"
	"image-text-reader/internal/metrics"
	"image-text-reader/internal/prompt"
	"image-text-reader/internal/repository"
	"image-text-reader/internal/service"
)

// Container holds all application dependencies
type Container struct {
	Config      domain.Config
	Logger      domain.Logger
	Metrics     *metrics.Recorder
	FileStore   *service.LocalFileStore
	ModelClient domain.ModelClient
	Analyzer    *service.AnalysisService
	closers     []func() error
}

// NewContainer wires the store, the model client and the analysis service
// for an already validated configuration.
func NewContainer(ctx context.Context, cfg domain.Config, appLogger domain.Logger) (*Container, error) {
	recorder := metrics.NewRecorder()

	store, err := service.NewLocalFileStore(cfg.GetUploadPath(), cfg.GetAllowedExtensions(), appLogger)
	if err != nil {
		return nil, err
	}

	promptText, err := prompt.Load(cfg.GetPromptFile())
	if err != nil {
		return nil, err
	}

	c := &Container{
		Config:    cfg,
		Logger:    appLogger,
		Metrics:   recorder,
		FileStore: store,
	}

	gen := domain.DefaultGenerationConfig()
	switch cfg.GetAIProvider() {
	case ProviderVertex:
		vertex, err := repository.NewVertexClient(
			ctx,
			cfg.GetGCPProjectID(),
			cfg.GetGCPLocation(),
			cfg.GetGeminiModel(),
			gen,
			appLogger,
		)
		if err != nil {
			return nil, err
		}
		c.ModelClient = vertex
		c.closers = append(c.closers, vertex.Close)
	case ProviderGemini:
		c.ModelClient = repository.NewGeminiClient(
			cfg.GetGeminiAPIKey(),
			cfg.GetGeminiModel(),
			cfg.GetGeminiRequestTimeout(),
			appLogger,
		)
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.GetAIProvider())
	}

	c.Analyzer = service.NewAnalysisService(
		c.ModelClient,
		promptText,
		service.RetryPolicy{
			MaxAttempts: cfg.GetAnalysisMaxAttempts(),
			BaseDelay:   cfg.GetAnalysisRetryBaseDelay(),
		},
		appLogger,
		recorder,
		service.WithGenerationConfig(gen),
	)

	appLogger.Info("Container initialized",
		"provider", cfg.GetAIProvider(),
		"model", cfg.GetGeminiModel(),
		"upload_dir", store.Dir(),
		"custom_prompt", cfg.GetPromptFile() != "",
	)

	return c, nil
}

// Close releases remote clients held by the container
func (c *Container) Close() error {
	var firstErr error
	for _, closeFn := range c.closers {
		if err := closeFn(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
