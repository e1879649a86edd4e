package errors

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"
)

type ErrorResponse struct {
	Error   string      `json:"error"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

const (
	ErrCodeInvalidInput      = "INVALID_INPUT"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeRateLimitExceeded = "RATE_LIMIT_EXCEEDED"
	ErrCodeUnavailable       = "STORE_UNAVAILABLE"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// Kind classifies a failure so the transport can pick a status without
// inspecting messages.
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindUnauthorized
	KindForbidden
	KindConflict
	KindStore
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindConflict:
		return "conflict"
	case KindStore:
		return "store"
	default:
		return "internal"
	}
}

// Error is the typed failure returned by engine services.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validation(msg string) *Error { return &Error{Kind: KindValidation, Message: msg} }
func NotFound(msg string) *Error   { return &Error{Kind: KindNotFound, Message: msg} }
func Forbidden(msg string) *Error  { return &Error{Kind: KindForbidden, Message: msg} }
func Conflict(msg string) *Error   { return &Error{Kind: KindConflict, Message: msg} }

func Unauthorized(msg string) *Error {
	return &Error{Kind: KindUnauthorized, Message: msg}
}

// Store wraps a failed read or write against the backing store. These are
// recoverable; callers are expected to retry manually.
func Store(op string, err error) *Error {
	return &Error{Kind: KindStore, Message: op + " failed", Err: err}
}

// KindOf reports the Kind of err, or KindInternal for untyped errors.
func KindOf(err error) Kind {
	var e *Error
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func statusFor(kind Kind) (int, string) {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest, ErrCodeInvalidInput
	case KindNotFound:
		return http.StatusNotFound, ErrCodeNotFound
	case KindUnauthorized:
		return http.StatusUnauthorized, ErrCodeUnauthorized
	case KindForbidden:
		return http.StatusForbidden, ErrCodeForbidden
	case KindConflict:
		return http.StatusConflict, ErrCodeConflict
	case KindStore:
		return http.StatusServiceUnavailable, ErrCodeUnavailable
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// Write renders err with the status matching its kind. Internal and store
// causes are not leaked to the client.
func Write(w http.ResponseWriter, err error) {
	var e *Error
	if !stderrors.As(err, &e) {
		WriteError(w, http.StatusInternalServerError, ErrCodeInternal, "Internal error", nil)
		return
	}
	status, code := statusFor(e.Kind)
	WriteError(w, status, code, e.Message, nil)
}

func WriteError(w http.ResponseWriter, status int, code, message string, details interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    code,
		Details: details,
	})
}
