package config

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"image-text-reader/internal/domain"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "SERVER_PORT", "UPLOAD_PATH", "MAX_FILE_SIZE", "ALLOWED_EXTENSIONS",
		"LOG_LEVEL", "SECRET_KEY", "AI_PROVIDER", "GEMINI_API_KEY", "GEMINI_MODEL",
		"GEMINI_REQUEST_TIMEOUT", "GCP_PROJECT_ID", "GCP_LOCATION", "ANALYSIS_MAX_ATTEMPTS",
		"ANALYSIS_RETRY_BASE_DELAY", "PROMPT_FILE", "PUBLIC_BASE_URL", "CORS_ALLOWED_ORIGINS",
	} {
		t.Setenv(key, "")
	}
}

func TestNewConfig_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := NewConfig()

	if cfg.GetServerPort() != "8080" {
		t.Fatalf("expected default server port 8080, got %s", cfg.GetServerPort())
	}
	if cfg.GetUploadPath() != "./uploads" {
		t.Fatalf("expected default upload path ./uploads, got %s", cfg.GetUploadPath())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	wantExt := []string{"png", "jpg", "jpeg", "gif", "bmp", "webp"}
	if !reflect.DeepEqual(cfg.GetAllowedExtensions(), wantExt) {
		t.Fatalf("expected default extensions %v, got %v", wantExt, cfg.GetAllowedExtensions())
	}
	if cfg.GetLogLevel() != "info" {
		t.Fatalf("expected default log level info, got %s", cfg.GetLogLevel())
	}
	if cfg.GetSecretKey() != DefaultSecretKey {
		t.Fatalf("expected default secret key, got %s", cfg.GetSecretKey())
	}
	if cfg.GetAIProvider() != ProviderGemini {
		t.Fatalf("expected default provider gemini, got %s", cfg.GetAIProvider())
	}
	if cfg.GetAnalysisMaxAttempts() != 3 {
		t.Fatalf("expected 3 attempts, got %d", cfg.GetAnalysisMaxAttempts())
	}
	if cfg.GetAnalysisRetryBaseDelay() != 3*time.Second {
		t.Fatalf("expected 3s base delay, got %s", cfg.GetAnalysisRetryBaseDelay())
	}
	if cfg.GetGeminiRequestTimeout() != 120*time.Second {
		t.Fatalf("expected 120s timeout, got %s", cfg.GetGeminiRequestTimeout())
	}
	if cfg.GetGCPLocation() != "us-central1" {
		t.Fatalf("expected default location us-central1, got %s", cfg.GetGCPLocation())
	}
	if len(cfg.GetCORSAllowedOrigins()) != 3 {
		t.Fatalf("expected 3 default origins, got %v", cfg.GetCORSAllowedOrigins())
	}
}

func TestNewConfig_Overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("SERVER_PORT", "7070")
	t.Setenv("UPLOAD_PATH", "/tmp/uploads")
	t.Setenv("MAX_FILE_SIZE", "12345")
	t.Setenv("ALLOWED_EXTENSIONS", ".PNG, jpg")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("AI_PROVIDER", "Vertex")
	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	t.Setenv("GCP_PROJECT_ID", "proj")
	t.Setenv("ANALYSIS_MAX_ATTEMPTS", "2")
	t.Setenv("ANALYSIS_RETRY_BASE_DELAY", "250ms")
	t.Setenv("GEMINI_REQUEST_TIMEOUT", "45")
	t.Setenv("PUBLIC_BASE_URL", "https://reader.example.com/")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9090" {
		t.Fatalf("expected server port 9090, got %s", cfg.GetServerPort())
	}
	if cfg.GetUploadPath() != "/tmp/uploads" {
		t.Fatalf("expected upload path override, got %s", cfg.GetUploadPath())
	}
	if cfg.GetMaxFileSize() != 12345 {
		t.Fatalf("expected max file size 12345, got %d", cfg.GetMaxFileSize())
	}
	if !reflect.DeepEqual(cfg.GetAllowedExtensions(), []string{"png", "jpg"}) {
		t.Fatalf("unexpected extensions %v", cfg.GetAllowedExtensions())
	}
	if cfg.GetLogLevel() != "debug" {
		t.Fatalf("expected log level debug, got %s", cfg.GetLogLevel())
	}
	if cfg.GetAIProvider() != ProviderVertex {
		t.Fatalf("expected provider vertex, got %s", cfg.GetAIProvider())
	}
	if cfg.GetAnalysisMaxAttempts() != 2 {
		t.Fatalf("expected 2 attempts, got %d", cfg.GetAnalysisMaxAttempts())
	}
	if cfg.GetAnalysisRetryBaseDelay() != 250*time.Millisecond {
		t.Fatalf("expected 250ms delay, got %s", cfg.GetAnalysisRetryBaseDelay())
	}
	if cfg.GetGeminiRequestTimeout() != 45*time.Second {
		t.Fatalf("expected 45s timeout, got %s", cfg.GetGeminiRequestTimeout())
	}
	if cfg.GetPublicBaseURL() != "https://reader.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %s", cfg.GetPublicBaseURL())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected vertex config to validate, got %v", err)
	}
}

func TestNewConfig_Fallbacks(t *testing.T) {
	clearEnv(t)
	t.Setenv("SERVER_PORT", "9091")
	t.Setenv("MAX_FILE_SIZE", "not-a-number")
	t.Setenv("ANALYSIS_MAX_ATTEMPTS", "0")
	t.Setenv("ANALYSIS_RETRY_BASE_DELAY", "soon")

	cfg := NewConfig()

	if cfg.GetServerPort() != "9091" {
		t.Fatalf("expected server port 9091, got %s", cfg.GetServerPort())
	}
	if cfg.GetMaxFileSize() != defaultMaxFileSize {
		t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, cfg.GetMaxFileSize())
	}
	if cfg.GetAnalysisMaxAttempts() != defaultMaxAttempts {
		t.Fatalf("expected default attempts, got %d", cfg.GetAnalysisMaxAttempts())
	}
	if cfg.GetAnalysisRetryBaseDelay() != defaultRetryBaseDelay {
		t.Fatalf("expected default delay, got %s", cfg.GetAnalysisRetryBaseDelay())
	}
}

func TestNewConfig_NonPositiveMaxFileSize(t *testing.T) {
	for _, value := range []string{"0", "-5"} {
		t.Run(value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("MAX_FILE_SIZE", value)

			if got := NewConfig().GetMaxFileSize(); got != defaultMaxFileSize {
				t.Fatalf("expected default max file size %d, got %d", defaultMaxFileSize, got)
			}
		})
	}
}

func TestValidate_RejectsNonPositiveMaxFileSize(t *testing.T) {
	cfg := &AppConfig{
		AIProvider:        ProviderGemini,
		GeminiAPIKey:      "key",
		GeminiModel:       "gemini-2.5-pro",
		AllowedExtensions: []string{"png"},
		MaxFileSize:       0,
	}

	var vErr *domain.ValidationError
	if err := cfg.Validate(); !errors.As(err, &vErr) || vErr.Field != "MAX_FILE_SIZE" {
		t.Fatalf("expected MAX_FILE_SIZE validation error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantField string
	}{
		{
			name:      "missing api key",
			env:       map[string]string{"GEMINI_MODEL": "gemini-2.5-pro"},
			wantField: "GEMINI_API_KEY",
		},
		{
			name:      "missing model",
			env:       map[string]string{"GEMINI_API_KEY": "key"},
			wantField: "GEMINI_MODEL",
		},
		{
			name:      "vertex without project",
			env:       map[string]string{"AI_PROVIDER": "vertex", "GEMINI_MODEL": "m"},
			wantField: "GCP_PROJECT_ID",
		},
		{
			name:      "unknown provider",
			env:       map[string]string{"AI_PROVIDER": "openai", "GEMINI_MODEL": "m"},
			wantField: "AI_PROVIDER",
		},
		{
			name: "valid gemini",
			env:  map[string]string{"GEMINI_API_KEY": "key", "GEMINI_MODEL": "gemini-2.5-pro"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := NewConfig().Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			var vErr *domain.ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if vErr.Field != tt.wantField {
				t.Fatalf("expected field %s, got %s", tt.wantField, vErr.Field)
			}
		})
	}
}
