package service

import (
	"testing"

	"image-text-reader/internal/domain"
)

func TestClassifyFailure(t *testing.T) {
	tests := []struct {
		msg  string
		want domain.FailureKind
	}{
		{"gemini api error (status 429 RESOURCE_EXHAUSTED): Resource has been exhausted", domain.FailureQuotaExceeded},
		{"You exceeded your current QUOTA, please check your plan", domain.FailureQuotaExceeded},
		{"Rate limit reached for requests", domain.FailureQuotaExceeded},
		{"rpc error: code = ResourceExhausted desc = try later", domain.FailureQuotaExceeded},
		{"rpc error: code = DeadlineExceeded desc = context deadline exceeded", domain.FailureTimeout},
		{"504 Gateway Timeout", domain.FailureTimeout},
		{"read tcp: i/o timeout", domain.FailureTimeout},
		{"quota check timed out", domain.FailureQuotaExceeded},
		{"invalid argument: image too small", domain.FailureUnknown},
		{"", domain.FailureUnknown},
	}

	for _, tt := range tests {
		if got := ClassifyFailure(tt.msg); got != tt.want {
			t.Fatalf("ClassifyFailure(%q) = %s, want %s", tt.msg, got, tt.want)
		}
	}
}

func TestIsTransient(t *testing.T) {
	if !IsTransient("Deadline Exceeded") {
		t.Fatalf("expected deadline to be transient")
	}
	if IsTransient("429 quota exceeded") {
		t.Fatalf("expected quota not to be transient")
	}
	if IsTransient("permission denied") {
		t.Fatalf("expected permission errors not to be transient")
	}
}
