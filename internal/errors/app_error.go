package errors

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// AppError is the error type returned by every client operation.
// Fields holds per-field messages returned by the server for a rejected payload.
type AppError struct {
	Code       string
	Message    string
	Detail     string
	StatusCode int
	Fields     map[string][]string
	Err        error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail

	return e
}

func (e *AppError) WithError(err error) *AppError {
	e.Err = err

	return e
}

func (e *AppError) WithFields(fields map[string][]string) *AppError {
	e.Fields = fields

	return e
}

const (
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeAuthRequired = "AUTH_REQUIRED"
	ErrCodeNetwork      = "NETWORK_ERROR"
	ErrCodeHTTP         = "HTTP_ERROR"
	ErrCodeInternal     = "INTERNAL_ERROR"
	ErrCodeDecode       = "DECODE_ERROR"
	ErrCodePrecondition = "PRECONDITION_FAILED"
	ErrCodeSessionStore = "SESSION_STORE_ERROR"
)

func ValidationError(message string) *AppError {
	return NewAppError(ErrCodeValidation, message, http.StatusBadRequest)
}

func BadRequestError(message string) *AppError {
	return NewAppError(ErrCodeBadRequest, message, http.StatusBadRequest)
}

func NotFoundError(message string) *AppError {
	return NewAppError(ErrCodeNotFound, message, http.StatusNotFound)
}

func UnauthorizedError(message string) *AppError {
	return NewAppError(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

func ForbiddenError(message string) *AppError {
	return NewAppError(ErrCodeForbidden, message, http.StatusForbidden)
}

// AuthRequiredError is raised on the client before any request is sent.
func AuthRequiredError(message string) *AppError {
	return NewAppError(ErrCodeAuthRequired, message, 0)
}

func NetworkError(message string) *AppError {
	return NewAppError(ErrCodeNetwork, message, 0)
}

func HTTPError(message string, statusCode int) *AppError {
	return NewAppError(ErrCodeHTTP, message, statusCode)
}

func InternalError(message string) *AppError {
	return NewAppError(ErrCodeInternal, message, http.StatusInternalServerError)
}

func DecodeError(message string) *AppError {
	return NewAppError(ErrCodeDecode, message, 0)
}

func PreconditionError(message string) *AppError {
	return NewAppError(ErrCodePrecondition, message, 0)
}

func SessionStoreError(message string) *AppError {
	return NewAppError(ErrCodeSessionStore, message, 0)
}

func IsAppError(err error) (*AppError, bool) {
	var appError *AppError

	if errors.As(err, &appError) {
		return appError, true
	}

	return nil, false
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	appErr, ok := IsAppError(err)

	return ok && appErr.Code == code
}

// field validation error.
func AddValidationError(field, reason string) *AppError {
	return ValidationError(fmt.Sprintf("Invalid field '%s': %s", field, reason)).
		WithFields(map[string][]string{field: {reason}})
}

// FieldSummary flattens Fields into "field: message" lines sorted by field name.
func (e *AppError) FieldSummary() []string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}

	return lines
}
