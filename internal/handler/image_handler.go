package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"image-text-reader/internal/domain"
	apperrors "image-text-reader/pkg/errors"

	"github.com/gorilla/mux"
)

const (
	uploadFormField    = "file"
	staticUploadsPath  = "/static/uploads/"
	maxAnalyzeBodySize = 1 << 20
	multipartMemory    = 8 << 20
)

// ImageHandler handles upload, analysis and deletion of images
type ImageHandler struct {
	store         domain.FileStore
	analyzer      domain.ImageAnalyzer
	metrics       domain.MetricsRecorder
	logger        domain.Logger
	maxUploadSize int64
	publicBaseURL string
}

func NewImageHandler(
	store domain.FileStore,
	analyzer domain.ImageAnalyzer,
	metrics domain.MetricsRecorder,
	logger domain.Logger,
	maxUploadSize int64,
	publicBaseURL string,
) *ImageHandler {
	return &ImageHandler{
		store:         store,
		analyzer:      analyzer,
		metrics:       metrics,
		logger:        logger,
		maxUploadSize: maxUploadSize,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// Upload handles POST /api/upload
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength > h.maxUploadSize {
		h.rejectUpload(w, "too_large", h.tooLargeError())
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		if isBodyTooLarge(err) {
			h.rejectUpload(w, "too_large", h.tooLargeError())
			return
		}
		h.logger.Debug("Could not parse upload form", "error", err.Error())
		h.rejectUpload(w, "rejected", apperrors.NewValidationError("No file provided"))
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		// A part sent with an empty filename is parsed as a plain form value.
		if _, ok := r.MultipartForm.Value[uploadFormField]; ok {
			h.rejectUpload(w, "rejected", apperrors.NewValidationError("No file selected"))
			return
		}
		h.rejectUpload(w, "rejected", apperrors.NewValidationError("No file provided"))
		return
	}
	defer file.Close()

	if header.Filename == "" {
		h.rejectUpload(w, "rejected", apperrors.NewValidationError("No file selected"))
		return
	}
	if !h.store.IsAllowed(header.Filename) {
		h.rejectUpload(w, "rejected", apperrors.NewValidationError("File type not allowed. Please upload an image."))
		return
	}

	stored, err := h.store.Store(file, header.Filename)
	if err != nil {
		h.logger.Error("Failed to save upload", err, "original_name", header.Filename)
		h.rejectUpload(w, "error", apperrors.NewStorageError("Error saving file", err))
		return
	}

	h.metrics.ObserveUpload("stored")
	h.logger.Info("Image uploaded",
		"filename", stored.Filename,
		"size", stored.Size,
		"request_id", GetRequestIDFromContext(r.Context()),
	)

	writeJSON(w, http.StatusOK, domain.UploadResponse{
		Success:  true,
		Filename: stored.Filename,
		FileURL:  h.fileURL(r, stored.Filename),
	})
}

// Analyze handles POST /api/analyze
func (h *ImageHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalyzeRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxAnalyzeBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Filename) == "" {
		writeError(w, http.StatusBadRequest, "Filename not provided")
		return
	}

	path, err := h.store.Resolve(req.Filename)
	if err != nil {
		writeAppError(w, apperrors.NewValidationError("Invalid filename"))
		return
	}
	if !h.store.Exists(path) {
		writeAppError(w, apperrors.NewNotFoundError("File not found"))
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), path)
	if err != nil {
		appErr := analysisAppError(err)
		fields := []interface{}{
			"filename", req.Filename,
			"status", appErr.StatusCode,
			"request_id", GetRequestIDFromContext(r.Context()),
		}
		if apperrors.IsType(appErr, apperrors.ErrorTypeInternal) {
			h.logger.Error("Analysis failed", err, fields...)
		} else {
			h.logger.Warn("Analysis failed", append(fields, "error", err.Error())...)
		}
		writeAppError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, domain.AnalyzeResponse{
		Success: true,
		Result:  result,
	})
}

// Delete handles DELETE /api/delete/{filename}
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	filename := mux.Vars(r)["filename"]

	path, err := h.store.Resolve(filename)
	if err != nil || !h.store.Remove(path) {
		writeAppError(w, apperrors.NewNotFoundError("File not found or could not be deleted"))
		return
	}

	h.logger.Info("Image deleted", "filename", filename)
	writeJSON(w, http.StatusOK, domain.DeleteResponse{
		Success: true,
		Message: "File deleted",
	})
}

func (h *ImageHandler) rejectUpload(w http.ResponseWriter, result string, err *apperrors.AppError) {
	h.metrics.ObserveUpload(result)
	writeAppError(w, err)
}

func (h *ImageHandler) tooLargeError() *apperrors.AppError {
	return apperrors.NewPayloadTooLargeError(
		fmt.Sprintf("File too large. Maximum size is %dMB.", h.maxUploadSize/(1<<20)),
	)
}

// fileURL builds the absolute URL a client can fetch the stored upload from
func (h *ImageHandler) fileURL(r *http.Request, filename string) string {
	base := h.publicBaseURL
	if base == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
		}
		base = scheme + "://" + r.Host
	}
	return base + staticUploadsPath + url.PathEscape(filename)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

// analysisAppError maps analyzer failures onto HTTP errors
func analysisAppError(err error) *apperrors.AppError {
	if errors.Is(err, domain.ErrFileNotFound) {
		return apperrors.NewNotFoundError("File not found")
	}

	var analysisErr *domain.AnalysisError
	if !errors.As(err, &analysisErr) {
		return apperrors.NewInternalError("Error analyzing image: "+err.Error(), err)
	}

	switch analysisErr.Kind {
	case domain.FailureQuotaExceeded:
		return apperrors.NewQuotaExceededError(analysisErr.Error(), err)
	case domain.FailureTimeout:
		return apperrors.NewTimeoutError(analysisErr.Error(), err)
	case domain.FailureEmptyResponse:
		return apperrors.NewEmptyResponseError(analysisErr.Error(), err)
	default:
		return apperrors.NewInternalError(analysisErr.Error(), err)
	}
}
