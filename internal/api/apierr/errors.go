package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/services/auth"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest   = "INVALID_REQUEST"
	CodeInvalidDocument  = "INVALID_DOCUMENT"
	CodeDocumentNotFound = "DOCUMENT_NOT_FOUND"
	CodeNotFound         = "NOT_FOUND"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeAdminDisabled    = "ADMIN_DISABLED"
	CodeTooLarge         = "TOO_LARGE"
	CodeInternalError    = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	if he.status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Basic realm="cwmc directory", charset="UTF-8"`)
	}
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, model.ErrDocumentNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeDocumentNotFound, "Document has not been published yet"}}
	case errors.Is(err, model.ErrInvalidDocument):
		// The validation message tells organizers what to fix
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidDocument, err.Error()}}
	case errors.As(err, &tooLarge):
		return &httpError{http.StatusRequestEntityTooLarge, APIError{CodeTooLarge, "Document is too large"}}

	// Map auth errors
	case errors.Is(err, auth.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Invalid username or password"}}
	case errors.Is(err, auth.ErrAdminDisabled):
		return &httpError{http.StatusForbidden, APIError{CodeAdminDisabled, "Document uploads are disabled on this server"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "Authentication required"}}
}

// NewNotFoundError creates a not found error for unknown routes
func NewNotFoundError() error {
	return &httpError{http.StatusNotFound, APIError{CodeNotFound, "Not found"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
