package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrFileNotFound       = errors.New("file not found")
	ErrFileTypeNotAllowed = errors.New("file type not allowed")
	ErrInvalidFilename    = errors.New("invalid filename")
	ErrEmptyResponse      = errors.New("empty response from model")
)

// ValidationError represents a validation error with field and message information.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return e.Field + ": " + e.Message
	}
	return e.Message
}

// StorageError wraps a filesystem failure while writing or deleting an upload.
type StorageError struct {
	Op   string
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// FailureKind is the closed set of terminal analysis failures.
type FailureKind string

const (
	FailureQuotaExceeded FailureKind = "quota_exceeded"
	FailureTimeout       FailureKind = "timeout"
	FailureEmptyResponse FailureKind = "empty_response"
	FailureUnknown       FailureKind = "unknown"
)

// AnalysisError is returned by an ImageAnalyzer once retries are over.
type AnalysisError struct {
	Kind     FailureKind
	Detail   string
	Attempts int
	Cause    error
}

func (e *AnalysisError) Error() string {
	switch e.Kind {
	case FailureQuotaExceeded:
		return "API quota exceeded. Please try again later."
	case FailureTimeout:
		return "The analysis timed out. Please try again."
	case FailureEmptyResponse:
		return "Empty response from model"
	default:
		return "Error analyzing image: " + e.Detail
	}
}

func (e *AnalysisError) Unwrap() error {
	return e.Cause
}
