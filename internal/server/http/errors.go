package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tracknest/tracknest/internal/errs"
	"github.com/tracknest/tracknest/internal/model"
)

// apiError is the fixed error response body returned to clients.
type apiError struct {
	Timestamp   string            `json:"timestamp"`
	Status      int               `json:"status"`
	Error       string            `json:"error"`
	Message     string            `json:"message"`
	Path        string            `json:"path"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeAPIError(w http.ResponseWriter, r *http.Request, status int, code, message string, fieldErrors map[string]string) {
	writeJSON(w, status, apiError{
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Status:      status,
		Error:       code,
		Message:     message,
		Path:        r.URL.Path,
		FieldErrors: fieldErrors,
	})
}

// writeError is the single boundary translator from typed service errors to
// the fixed error body. Unexpected errors are logged and masked as 500.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *errs.ValidationError
	switch {
	case errors.As(err, &ve):
		writeAPIError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed.", ve.Fields)
	case errors.Is(err, errs.ErrDuplicateUsername):
		writeAPIError(w, r, http.StatusConflict, "DUPLICATE ENTRY", "Username is already taken.", nil)
	case errors.Is(err, errs.ErrInvalidInput):
		writeAPIError(w, r, http.StatusBadRequest, "INVALID", err.Error(), nil)
	case errors.Is(err, errs.ErrTaskNotFound):
		writeAPIError(w, r, http.StatusNotFound, "TASK_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, errs.ErrPersonNotFound):
		writeAPIError(w, r, http.StatusNotFound, "USER_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, errs.ErrBadCredentials):
		// Fixed message: must not reveal whether the username exists.
		writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid username or password.", nil)
	case errors.Is(err, errs.ErrForbidden):
		writeAPIError(w, r, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action.", nil)
	case errors.Is(err, errs.ErrRateLimited):
		writeAPIError(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "Too many failed login attempts. Please try again later.", nil)
	default:
		s.log.Error("unhandled error", zap.String("path", r.URL.Path), zap.Error(err))
		writeAPIError(w, r, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Unexpected server error.", nil)
	}
}

// writeEnumMismatch mirrors the enum path/query parameter failure: the value
// is reported together with the available options.
func writeEnumMismatch[T ~string](w http.ResponseWriter, r *http.Request, value string, options []T) {
	msg := fmt.Sprintf("'%s' not part of available options: %v", value, options)
	writeAPIError(w, r, http.StatusNotFound, "ENUM_ARG_MISMATCH", msg, nil)
}

// writeIntMismatch reports a path/query parameter that is not a valid integer.
func writeIntMismatch(w http.ResponseWriter, r *http.Request, name, value string) {
	msg := fmt.Sprintf("Parameter '%s' should be of type int64, but value '%s' is of type string", name, value)
	writeAPIError(w, r, http.StatusBadRequest, "MISMATCH: INT64 IS NOT STRING", msg, nil)
}

func (s *Server) unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	writeAPIError(w, r, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func (s *Server) forbidden(w http.ResponseWriter, r *http.Request) {
	writeAPIError(w, r, http.StatusForbidden, "FORBIDDEN", "You do not have permission to perform this action.", nil)
}

// requirePrincipal returns the request principal or writes a 401.
func (s *Server) requirePrincipal(w http.ResponseWriter, r *http.Request) (model.Principal, bool) {
	p, ok := PrincipalFromCtx(r.Context())
	if !ok {
		s.unauthorized(w, r, "Authentication required.")
		return model.Principal{}, false
	}
	return p, true
}

// requireAdmin returns the request principal, writing 401 for anonymous
// requests and 403 for non-admin principals.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) (model.Principal, bool) {
	p, ok := s.requirePrincipal(w, r)
	if !ok {
		return model.Principal{}, false
	}
	if !p.IsAdmin() {
		s.forbidden(w, r)
		return model.Principal{}, false
	}
	return p, true
}
