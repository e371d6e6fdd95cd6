package service

import (
	"strings"

	"image-text-reader/internal/domain"
)

// The model clients surface failures as free text only, so classification
// works on the lowercased message.
var (
	quotaMarkers   = []string{"429", "quota", "rate limit", "resource exhausted", "resource_exhausted", "resourceexhausted"}
	timeoutMarkers = []string{"deadline", "timeout", "timed out"}
)

// ClassifyFailure maps a remote failure message to a FailureKind.
func ClassifyFailure(msg string) domain.FailureKind {
	lower := strings.ToLower(msg)
	switch {
	case containsAny(lower, quotaMarkers):
		return domain.FailureQuotaExceeded
	case containsAny(lower, timeoutMarkers):
		return domain.FailureTimeout
	default:
		return domain.FailureUnknown
	}
}

// IsTransient reports whether a failure is worth another attempt.
func IsTransient(msg string) bool {
	return ClassifyFailure(msg) == domain.FailureTimeout
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}
