package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"image-text-reader/internal/domain"
)

// RetryPolicy bounds the attempts made against the model.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// AnalysisService sends a stored image and the extraction prompt to a model.
type AnalysisService struct {
	client     domain.ModelClient
	prompt     string
	generation domain.GenerationConfig
	retry      RetryPolicy
	maxDim     int
	logger     domain.Logger
	metrics    domain.MetricsRecorder
	sleep      func(ctx context.Context, d time.Duration) error
}

// AnalysisOption customizes an AnalysisService.
type AnalysisOption func(*AnalysisService)

// WithSleep replaces the backoff sleep, mostly for tests.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) AnalysisOption {
	return func(s *AnalysisService) { s.sleep = sleep }
}

// WithMaxDimension overrides the downscale ceiling.
func WithMaxDimension(px int) AnalysisOption {
	return func(s *AnalysisService) { s.maxDim = px }
}

// WithGenerationConfig overrides the sampling parameters.
func WithGenerationConfig(cfg domain.GenerationConfig) AnalysisOption {
	return func(s *AnalysisService) { s.generation = cfg }
}

func NewAnalysisService(
	client domain.ModelClient,
	prompt string,
	retry RetryPolicy,
	logger domain.Logger,
	metrics domain.MetricsRecorder,
	opts ...AnalysisOption,
) *AnalysisService {
	if retry.MaxAttempts < 1 {
		retry.MaxAttempts = 1
	}
	s := &AnalysisService{
		client:     client,
		prompt:     prompt,
		generation: domain.DefaultGenerationConfig(),
		retry:      retry,
		maxDim:     MaxImageDimension,
		logger:     logger,
		metrics:    metrics,
		sleep:      sleepContext,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Analyze extracts text from the image at path. Terminal failures are *domain.AnalysisError.
func (s *AnalysisService) Analyze(ctx context.Context, path string) (*domain.AnalysisResult, error) {
	start := time.Now()

	img, err := PrepareImage(path, s.maxDim)
	if err != nil {
		if errors.Is(err, domain.ErrFileNotFound) {
			return nil, err
		}
		return nil, s.fail(start, &domain.AnalysisError{Kind: domain.FailureUnknown, Detail: err.Error(), Cause: err})
	}
	if img.Resized {
		s.logger.Debug("Downscaled image before analysis", "path", path, "width", img.Width, "height", img.Height)
	}

	req := &domain.ModelRequest{
		Prompt:     s.prompt,
		Image:      img.Data,
		MIMEType:   img.MIMEType,
		Generation: s.generation,
	}

	delay := s.retry.BaseDelay
	for attempt := 1; ; attempt++ {
		s.metrics.ObserveAttempt()
		text, err := s.client.Generate(ctx, req)
		if err == nil {
			if text == "" {
				return nil, s.fail(start, &domain.AnalysisError{
					Kind:     domain.FailureEmptyResponse,
					Detail:   domain.ErrEmptyResponse.Error(),
					Attempts: attempt,
					Cause:    domain.ErrEmptyResponse,
				})
			}
			s.metrics.ObserveAnalysis("success", time.Since(start))
			s.logger.Info("Image analyzed", "path", path, "attempts", attempt, "chars", len(text))
			return &domain.AnalysisResult{Type: domain.ResultTypeImage, Content: text}, nil
		}

		msg := err.Error()
		if IsTransient(msg) && attempt < s.retry.MaxAttempts {
			s.logger.Warn("Model call timed out, retrying", "attempt", attempt, "delay", delay.String(), "error", msg)
			if sleepErr := s.sleep(ctx, delay); sleepErr != nil {
				return nil, s.fail(start, &domain.AnalysisError{Kind: domain.FailureTimeout, Detail: msg, Attempts: attempt, Cause: sleepErr})
			}
			delay *= 2
			continue
		}

		return nil, s.fail(start, &domain.AnalysisError{Kind: ClassifyFailure(msg), Detail: msg, Attempts: attempt, Cause: err})
	}
}

func (s *AnalysisService) fail(start time.Time, aErr *domain.AnalysisError) error {
	s.metrics.ObserveAnalysis(string(aErr.Kind), time.Since(start))
	s.logger.Error("Image analysis failed", aErr.Cause, "kind", string(aErr.Kind), "attempts", aErr.Attempts)
	return aErr
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("backoff interrupted: %w", ctx.Err())
	case <-t.C:
		return nil
	}
}
