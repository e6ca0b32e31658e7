package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agroecology/cropvision/internal/domain"
	"go.uber.org/zap"
)

// Error types reported by identify input validation.
const (
	errTypeValidation      = "validation_error"
	errTypeEmptyFile       = "empty_file_error"
	errTypeImageProcessing = "image_processing_error"
)

// multipartOverhead is allowed on top of the image limit for the other
// form fields and part headers.
const multipartOverhead = 1 << 20

type identifyErrorDetail struct {
	Message           string   `json:"message"`
	ErrorType         string   `json:"error_type"`
	FallbackAvailable bool     `json:"fallback_available"`
	Suggestions       []string `json:"suggestions"`
}

type IdentifyHandler struct {
	svc      domain.Identifier
	maxBytes int64
	timeout  time.Duration
	logger   *zap.Logger
}

func NewIdentifyHandler(svc domain.Identifier, maxBytes int64, timeout time.Duration, logger *zap.Logger) *IdentifyHandler {
	return &IdentifyHandler{svc: svc, maxBytes: maxBytes, timeout: timeout, logger: logger}
}

// Identify accepts a multipart upload and always answers 200 with a
// result once the image passes validation.
func (h *IdentifyHandler) Identify(w http.ResponseWriter, r *http.Request) {
	image, detail := h.readImage(w, r)
	if detail != nil {
		h.logger.Info("identify request rejected",
			zap.String("error_type", detail.ErrorType),
			zap.String("reason", detail.Message))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"detail": detail})
		return
	}

	req := domain.IdentificationRequest{
		Image:          image,
		CropType:       strings.TrimSpace(r.FormValue("crop_type")),
		Location:       strings.TrimSpace(r.FormValue("location")),
		AdditionalInfo: strings.TrimSpace(r.FormValue("additional_info")),
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	writeJSON(w, http.StatusOK, h.svc.Identify(ctx, req))
}

func (h *IdentifyHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Status())
}

func (h *IdentifyHandler) readImage(w http.ResponseWriter, r *http.Request) ([]byte, *identifyErrorDetail) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, h.tooLarge()
		}
		return nil, validationError("Request must be multipart form data with an image field")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, validationError("No image file provided")
	}
	defer func() { _ = file.Close() }()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return nil, validationError("File must be an image")
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxBytes+1))
	if err != nil {
		return nil, &identifyErrorDetail{
			Message:           "Could not read the uploaded image",
			ErrorType:         errTypeImageProcessing,
			FallbackAvailable: true,
			Suggestions:       []string{"Try uploading the image again", "Try a different image format (JPEG, PNG)"},
		}
	}
	if len(data) == 0 {
		return nil, &identifyErrorDetail{
			Message:           "Empty file uploaded",
			ErrorType:         errTypeEmptyFile,
			FallbackAvailable: true,
			Suggestions:       []string{"Select a non-empty image file", "Check that the photo saved correctly"},
		}
	}
	if int64(len(data)) > h.maxBytes {
		return nil, h.tooLarge()
	}

	if sniffed := http.DetectContentType(data); !strings.HasPrefix(sniffed, "image/") {
		return nil, &identifyErrorDetail{
			Message:           fmt.Sprintf("Uploaded file is not a valid image (detected %s)", sniffed),
			ErrorType:         errTypeImageProcessing,
			FallbackAvailable: true,
			Suggestions:       []string{"Upload a JPEG, PNG, GIF or WebP photo", "Make sure the file is not corrupted"},
		}
	}
	return data, nil
}

func (h *IdentifyHandler) tooLarge() *identifyErrorDetail {
	return validationError("File too large. Maximum size is " + formatSize(h.maxBytes))
}

func formatSize(n int64) string {
	if n >= 1<<20 && n%(1<<20) == 0 {
		return fmt.Sprintf("%dMB", n>>20)
	}
	if n >= 1<<10 && n%(1<<10) == 0 {
		return fmt.Sprintf("%dKB", n>>10)
	}
	return fmt.Sprintf("%d bytes", n)
}

func validationError(msg string) *identifyErrorDetail {
	return &identifyErrorDetail{
		Message:           msg,
		ErrorType:         errTypeValidation,
		FallbackAvailable: true,
		Suggestions: []string{
			"Upload a clear photo of the affected plant part",
			"Use JPEG or PNG format",
			"Keep the file under the size limit",
		},
	}
}
