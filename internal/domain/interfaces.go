package domain

import (
	"context"
	"io"
	"time"
)

// FileStore persists uploaded images under a single directory.
type FileStore interface {
	IsAllowed(filename string) bool
	Store(file io.Reader, originalName string) (*StoredUpload, error)
	Remove(path string) bool
	Resolve(filename string) (string, error)
	Exists(path string) bool
}

// ImageAnalyzer extracts text from a stored image using a remote model.
type ImageAnalyzer interface {
	Analyze(ctx context.Context, path string) (*AnalysisResult, error)
}

// ModelClient performs a single call to a remote multimodal model.
// An empty string with a nil error means the model answered without text.
type ModelClient interface {
	Generate(ctx context.Context, req *ModelRequest) (string, error)
}

// MetricsRecorder receives analysis and upload events.
type MetricsRecorder interface {
	ObserveAttempt()
	ObserveAnalysis(outcome string, duration time.Duration)
	ObserveUpload(result string)
}

// Logger defines the interface for logging operations
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, err error, fields ...interface{})
	Debug(msg string, fields ...interface{})
	Warn(msg string, fields ...interface{})
}

// Config defines the interface for configuration management
type Config interface {
	GetServerPort() string
	GetUploadPath() string
	GetMaxFileSize() int64
	GetAllowedExtensions() []string
	GetLogLevel() string
	GetSecretKey() string
	GetAIProvider() string
	GetGeminiAPIKey() string
	GetGeminiModel() string
	GetGeminiRequestTimeout() time.Duration
	GetGCPProjectID() string
	GetGCPLocation() string
	GetAnalysisMaxAttempts() int
	GetAnalysisRetryBaseDelay() time.Duration
	GetPromptFile() string
	GetPublicBaseURL() string
	GetCORSAllowedOrigins() []string
	Validate() error
}
