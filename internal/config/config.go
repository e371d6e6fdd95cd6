package config

import (
	"strconv"
	"strings"
	"time"

	"image-text-reader/internal/domain"

	"github.com/spf13/viper"
)

const (
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"

	defaultMaxFileSize      int64 = 16 * 1024 * 1024
	defaultMaxAttempts            = 3
	defaultRetryBaseDelay         = 3 * time.Second
	defaultGeminiTimeout          = 120 * time.Second
	DefaultSecretKey              = "dev-secret-key-change-in-production"
	defaultAllowedExtensions      = "png,jpg,jpeg,gif,bmp,webp"
	defaultCORSAllowedOrigins     = "http://localhost:5173,http://localhost:4173,http://localhost:3000"
)

// AppConfig implements the domain.Config interface
type AppConfig struct {
	ServerPort             string
	UploadPath             string
	MaxFileSize            int64
	AllowedExtensions      []string
	LogLevel               string
	SecretKey              string
	AIProvider             string
	GeminiAPIKey           string
	GeminiModel            string
	GeminiRequestTimeout   time.Duration
	GCPProjectID           string
	GCPLocation            string
	AnalysisMaxAttempts    int
	AnalysisRetryBaseDelay time.Duration
	PromptFile             string
	PublicBaseURL          string
	CORSAllowedOrigins     []string
}

// NewConfig creates a new configuration instance from the environment
func NewConfig() domain.Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("UPLOAD_PATH", "./uploads")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SECRET_KEY", DefaultSecretKey)
	v.SetDefault("AI_PROVIDER", ProviderGemini)
	v.SetDefault("GCP_LOCATION", "us-central1")
	v.SetDefault("ALLOWED_EXTENSIONS", defaultAllowedExtensions)
	v.SetDefault("CORS_ALLOWED_ORIGINS", defaultCORSAllowedOrigins)

	return &AppConfig{
		// Cloud Run (and many PaaS) provide the listening port via PORT.
		// Keep SERVER_PORT for local/dev compatibility.
		ServerPort:             getStringOrDefault(v, "PORT", v.GetString("SERVER_PORT")),
		UploadPath:             v.GetString("UPLOAD_PATH"),
		MaxFileSize:            getPositiveInt64OrDefault(v, "MAX_FILE_SIZE", defaultMaxFileSize),
		AllowedExtensions:      normalizeExtensions(splitList(v.GetString("ALLOWED_EXTENSIONS"))),
		LogLevel:               v.GetString("LOG_LEVEL"),
		SecretKey:              v.GetString("SECRET_KEY"),
		AIProvider:             strings.ToLower(strings.TrimSpace(v.GetString("AI_PROVIDER"))),
		GeminiAPIKey:           strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		GeminiModel:            strings.TrimSpace(v.GetString("GEMINI_MODEL")),
		GeminiRequestTimeout:   getDurationOrDefault(v, "GEMINI_REQUEST_TIMEOUT", defaultGeminiTimeout),
		GCPProjectID:           strings.TrimSpace(v.GetString("GCP_PROJECT_ID")),
		GCPLocation:            v.GetString("GCP_LOCATION"),
		AnalysisMaxAttempts:    getPositiveIntOrDefault(v, "ANALYSIS_MAX_ATTEMPTS", defaultMaxAttempts),
		AnalysisRetryBaseDelay: getDurationOrDefault(v, "ANALYSIS_RETRY_BASE_DELAY", defaultRetryBaseDelay),
		PromptFile:             strings.TrimSpace(v.GetString("PROMPT_FILE")),
		PublicBaseURL:          strings.TrimRight(strings.TrimSpace(v.GetString("PUBLIC_BASE_URL")), "/"),
		CORSAllowedOrigins:     splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}
}

// Validate reports missing settings the server cannot start without.
func (c *AppConfig) Validate() error {
	switch c.AIProvider {
	case ProviderGemini:
		if c.GeminiAPIKey == "" {
			return &domain.ValidationError{Field: "GEMINI_API_KEY", Message: "environment variable is not set"}
		}
	case ProviderVertex:
		if c.GCPProjectID == "" {
			return &domain.ValidationError{Field: "GCP_PROJECT_ID", Message: "environment variable is not set"}
		}
	default:
		return &domain.ValidationError{Field: "AI_PROVIDER", Message: "must be one of gemini, vertex"}
	}
	if c.GeminiModel == "" {
		return &domain.ValidationError{Field: "GEMINI_MODEL", Message: "environment variable is not set"}
	}
	if len(c.AllowedExtensions) == 0 {
		return &domain.ValidationError{Field: "ALLOWED_EXTENSIONS", Message: "at least one extension is required"}
	}
	if c.MaxFileSize <= 0 {
		return &domain.ValidationError{Field: "MAX_FILE_SIZE", Message: "must be a positive number of bytes"}
	}
	return nil
}

// GetServerPort returns the server port
func (c *AppConfig) GetServerPort() string {
	return c.ServerPort
}

// GetUploadPath returns the upload directory path
func (c *AppConfig) GetUploadPath() string {
	return c.UploadPath
}

// GetMaxFileSize returns the maximum allowed request body size for uploads
func (c *AppConfig) GetMaxFileSize() int64 {
	return c.MaxFileSize
}

// GetAllowedExtensions returns lowercased extensions without the leading dot
func (c *AppConfig) GetAllowedExtensions() []string {
	return c.AllowedExtensions
}

// GetLogLevel returns the logging level
func (c *AppConfig) GetLogLevel() string {
	return c.LogLevel
}

// GetSecretKey returns the session signing key
func (c *AppConfig) GetSecretKey() string {
	return c.SecretKey
}

// GetAIProvider returns gemini or vertex
func (c *AppConfig) GetAIProvider() string {
	return c.AIProvider
}

// GetGeminiAPIKey returns the Gemini API key
func (c *AppConfig) GetGeminiAPIKey() string {
	return c.GeminiAPIKey
}

// GetGeminiModel returns the model identifier
func (c *AppConfig) GetGeminiModel() string {
	return c.GeminiModel
}

func (c *AppConfig) GetGeminiRequestTimeout() time.Duration {
	return c.GeminiRequestTimeout
}

func (c *AppConfig) GetGCPProjectID() string {
	return c.GCPProjectID
}

func (c *AppConfig) GetGCPLocation() string {
	return c.GCPLocation
}

func (c *AppConfig) GetAnalysisMaxAttempts() int {
	return c.AnalysisMaxAttempts
}

func (c *AppConfig) GetAnalysisRetryBaseDelay() time.Duration {
	return c.AnalysisRetryBaseDelay
}

func (c *AppConfig) GetPromptFile() string {
	return c.PromptFile
}

func (c *AppConfig) GetPublicBaseURL() string {
	return c.PublicBaseURL
}

func (c *AppConfig) GetCORSAllowedOrigins() []string {
	return c.CORSAllowedOrigins
}

// Helper functions for environment variable handling
func getStringOrDefault(v *viper.Viper, key, defaultValue string) string {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value
	}
	return defaultValue
}

func getPositiveInt64OrDefault(v *viper.Viper, key string, defaultValue int64) int64 {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

func getPositiveIntOrDefault(v *viper.Viper, key string, defaultValue int) int {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil && intValue > 0 {
			return intValue
		}
	}
	return defaultValue
}

// getDurationOrDefault accepts Go durations ("3s") or bare seconds ("3").
func getDurationOrDefault(v *viper.Viper, key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(v.GetString(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil && d >= 0 {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimPrefix(ext, "."))
		if ext != "" {
			out = append(out, ext)
		}
	}
	return out
}
