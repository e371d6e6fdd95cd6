package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"image-text-reader/internal/config"
	"image-text-reader/internal/domain"
	"image-text-reader/internal/handler"
	"image-text-reader/pkg/logger"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 15 * time.Second
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.NewConfig()
	appLogger := logger.NewLogger(cfg.GetLogLevel())

	if err := cfg.Validate(); err != nil {
		appLogger.Error("Invalid configuration", err)
		syncLogger(appLogger)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, cfg, appLogger)
	stop()

	if err != nil {
		appLogger.Error("Server stopped with error", err)
		syncLogger(appLogger)
		os.Exit(1)
	}
	appLogger.Info("Server exited")
	syncLogger(appLogger)
}

func run(ctx context.Context, cfg domain.Config, appLogger domain.Logger) error {
	// Wiring
	container, err := config.NewContainer(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Error("Failed to close model client", err)
		}
	}()

	if cfg.GetSecretKey() == config.DefaultSecretKey {
		appLogger.Warn("SECRET_KEY is not set, using the development default")
	}

	// Handlers
	imageHandler := handler.NewImageHandler(
		container.FileStore,
		container.Analyzer,
		container.Metrics,
		container.Logger,
		cfg.GetMaxFileSize(),
		cfg.GetPublicBaseURL(),
	)

	// Router
	router := handler.NewRouter(
		imageHandler,
		handler.NewRequestMiddleware(container.Logger),
		handler.RouterOptions{
			UploadDir:      container.FileStore.Dir(),
			AllowedOrigins: cfg.GetCORSAllowedOrigins(),
			Metrics:        container.Metrics.Handler(),
		},
	)

	server := &http.Server{
		Addr:              ":" + cfg.GetServerPort(),
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout(cfg),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		appLogger.Info("Server listening", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		appLogger.Info("Shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// writeTimeout covers every model attempt plus the backoff between them
func writeTimeout(cfg domain.Config) time.Duration {
	attempts := cfg.GetAnalysisMaxAttempts()
	total := time.Duration(attempts) * cfg.GetGeminiRequestTimeout()
	delay := cfg.GetAnalysisRetryBaseDelay()
	for i := 1; i < attempts; i++ {
		total += delay
		delay *= 2
	}
	return total + 30*time.Second
}

func syncLogger(l domain.Logger) {
	if s, ok := l.(interface{ Sync() error }); ok {
		_ = s.Sync()
	}
}
