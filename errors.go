package strata

import (
	"errors"
	"fmt"
	"net/http"
)

// Error is a tagged, status-coded error. Recovery code matches on the status
// tag rather than on error identity, so "not found" raised as an error and
// "not found" inspected as a status are the same thing.
type Error struct {
	Status  int            `json:"-"`                 // HTTP status code (not in JSON)
	Code    string         `json:"code"`              // Machine-readable error code
	Message string         `json:"message"`           // Human-readable message
	Details map[string]any `json:"details,omitempty"` // Optional context
}

// Error implements the error interface.
func (e Error) Error() string {
	return e.Message
}

// WithMessage returns a copy of the error with a custom message.
func (e Error) WithMessage(message string) Error {
	e.Message = message
	return e
}

// WithDetails returns a copy of the error with additional details.
func (e Error) WithDetails(details map[string]any) Error {
	e.Details = details
	return e
}

// Predefined HTTP errors using http.StatusText for default messages.
var (
	ErrBadRequest           = Error{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: http.StatusText(http.StatusBadRequest)}
	ErrUnauthorized         = Error{Status: http.StatusUnauthorized, Code: "UNAUTHORIZED", Message: http.StatusText(http.StatusUnauthorized)}
	ErrForbidden            = Error{Status: http.StatusForbidden, Code: "FORBIDDEN", Message: http.StatusText(http.StatusForbidden)}
	ErrNotFoundHTTP         = Error{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: http.StatusText(http.StatusNotFound)}
	ErrMethodNotAllowedHTTP = Error{Status: http.StatusMethodNotAllowed, Code: "METHOD_NOT_ALLOWED", Message: http.StatusText(http.StatusMethodNotAllowed)}
	ErrConflict             = Error{Status: http.StatusConflict, Code: "CONFLICT", Message: http.StatusText(http.StatusConflict)}
	ErrUnprocessableEntity  = Error{Status: http.StatusUnprocessableEntity, Code: "UNPROCESSABLE_ENTITY", Message: http.StatusText(http.StatusUnprocessableEntity)}
	ErrTooManyRequests      = Error{Status: http.StatusTooManyRequests, Code: "TOO_MANY_REQUESTS", Message: http.StatusText(http.StatusTooManyRequests)}
	ErrInternalServerError  = Error{Status: http.StatusInternalServerError, Code: "INTERNAL_SERVER_ERROR", Message: http.StatusText(http.StatusInternalServerError)}
	ErrNotImplemented       = Error{Status: http.StatusNotImplemented, Code: "NOT_IMPLEMENTED", Message: http.StatusText(http.StatusNotImplemented)}
	ErrServiceUnavailable   = Error{Status: http.StatusServiceUnavailable, Code: "SERVICE_UNAVAILABLE", Message: http.StatusText(http.StatusServiceUnavailable)}
)

// Resolution errors, routed through the pipeline's fallback converter.
var (
	ErrNotFound         = errors.New("no view matches the request")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrNilResponse      = errors.New("handler returned nil response")
)

// Startup configuration errors. These abort pipeline construction; none of
// them can surface at request time.
var (
	ErrNotUsed           = errors.New("middleware not used")
	ErrNilTerminal       = errors.New("terminal handler is required")
	ErrNilResolver       = errors.New("resolver is required")
	ErrNoContextFactory  = errors.New("no context factory provided and C is not *RequestContext")
	ErrUnknownMiddleware = errors.New("unknown middleware identifier")
)

// Deferred rendering errors.
var (
	ErrAlreadyRendered = errors.New("deferred response rendered twice")
	ErrNilRenderer     = errors.New("deferred response has no renderer")
	ErrTemplateHookNil = errors.New("template hook returned no response")
)

// ErrStreamUnsupported is returned when the response writer cannot flush.
var ErrStreamUnsupported = errors.New("response writer does not support streaming")

// convertError maps an unrecovered error to a status-coded response. Known
// tags keep their status; everything else becomes a generic internal error.
func convertError[C Context](ctx C, err error) Response {
	var appErr Error
	if errors.As(err, &appErr) {
		return JSONWithStatus(appErr, appErr.Status)
	}

	switch {
	case errors.Is(err, ErrNotFound):
		return JSONWithStatus(ErrNotFoundHTTP, http.StatusNotFound)
	case errors.Is(err, ErrMethodNotAllowed):
		return JSONWithStatus(ErrMethodNotAllowedHTTP, http.StatusMethodNotAllowed)
	default:
		return JSONWithStatus(ErrInternalServerError, http.StatusInternalServerError)
	}
}

// toError converts a recovered panic value to an error.
func toError(v any) error {
	switch e := v.(type) {
	case error:
		return e
	case string:
		return errors.New(e)
	default:
		return fmt.Errorf("panic: %v", e)
	}
}
