package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "image-text-reader/pkg/errors"
)

type contextKey string

const requestIDContextKey contextKey = "request_id"

// GetRequestIDFromContext returns the ID assigned by the logging middleware
func GetRequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDContextKey).(string)
	return id
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response (helper function)
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}

// writeAppError writes err with the status of the AppError in its chain.
// Errors without one are reported as a generic 500.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		writeError(w, apperrors.GetStatusCode(err), "Internal server error")
		return
	}
	writeError(w, apperrors.GetStatusCode(err), appErr.Message)
}
