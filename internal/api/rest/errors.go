package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/orivyx/orivyx-backend/internal/directory"
)

// APIError represents a structured API error response
type APIError struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Error codes for common scenarios
const (
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeTimeout          = "TIMEOUT"
	ErrCodeUpstreamError    = "UPSTREAM_ERROR"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, APIError{Error: message})
}

func respondErrorWithCode(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, APIError{Error: message, Code: code, Message: message})
}

// respondDirectoryError maps the directory error taxonomy onto HTTP
// statuses. The server-supplied message is passed through so the dashboard
// can show it inline.
func respondDirectoryError(w http.ResponseWriter, err error) {
	var (
		notFound   *directory.NotFoundError
		validation *directory.ValidationError
		authErr    *directory.AuthTokenError
		timeout    *directory.TimeoutError
		httpErr    *directory.HTTPError
	)
	switch {
	case errors.As(err, &notFound):
		respondErrorWithCode(w, http.StatusNotFound, ErrCodeNotFound, notFound.Error())
	case errors.As(err, &validation):
		respondErrorWithCode(w, http.StatusBadRequest, ErrCodeValidationFailed, validation.Error())
	case errors.As(err, &authErr):
		respondErrorWithCode(w, http.StatusBadGateway, ErrCodeUpstreamError, "directory authorization failed")
	case errors.As(err, &timeout):
		respondErrorWithCode(w, http.StatusGatewayTimeout, ErrCodeTimeout, timeout.Error())
	case errors.As(err, &httpErr):
		respondErrorWithCode(w, http.StatusBadGateway, ErrCodeUpstreamError, httpErr.Error())
	default:
		respondErrorWithCode(w, http.StatusBadGateway, ErrCodeUpstreamError, err.Error())
	}
}
