package strata

import (
	"context"
	"net/http"
)

// Context is the contract request contexts satisfy. It extends the standard
// context with access to the HTTP exchange and a per-request attribute bag.
// All request-scoped state belongs in the bag: middleware instances are
// shared across concurrent requests and must not hold per-request fields.
type Context interface {
	context.Context
	Request() *http.Request
	ResponseWriter() http.ResponseWriter
	Param(key string) string
	SetValue(key, val any)
}

// Response renders HTTP responses. Implementations set headers, status code,
// and body. Rendering errors are handled by the pipeline's error handler.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// HandlerFunc processes one request. Exactly one of the results is set per
// invocation: a non-nil Response, or a non-nil error.
type HandlerFunc[C Context] func(ctx C) (Response, error)

// View is the terminal application handler, invoked with the positional and
// keyword arguments the resolver extracted from the request.
type View[C Context] func(ctx C, args []string, kwargs map[string]string) (Response, error)

// Middleware is a single pipeline layer. Handle may short-circuit by
// returning a response without calling next, delegate and pass the result
// through unchanged, transform the returned response, or convert an error
// from next into a response. It must not both swallow an error and return
// a nil response.
type Middleware[C Context] interface {
	Handle(ctx C, next HandlerFunc[C]) (Response, error)
}

// MiddlewareFunc adapts a plain function to the Middleware interface.
type MiddlewareFunc[C Context] func(ctx C, next HandlerFunc[C]) (Response, error)

// Handle implements Middleware.
func (f MiddlewareFunc[C]) Handle(ctx C, next HandlerFunc[C]) (Response, error) {
	return f(ctx, next)
}

// ViewHook is an optional middleware capability, detected by type assertion
// when the chain is built. HandleView runs after routing resolved the target
// view and before it executes, in configuration order. Returning a non-nil
// response skips the remaining view hooks and the view itself; returning
// (nil, nil) continues to the next hook.
type ViewHook[C Context] interface {
	HandleView(ctx C, view View[C], args []string, kwargs map[string]string) (Response, error)
}

// TemplateHook is an optional middleware capability, detected by type
// assertion when the chain is built. HandleTemplate runs in reverse
// configuration order for deferred responses only, before the single render
// step. It may mutate the render inputs in place or substitute a new
// deferred response, but what it returns must still have a pending render
// step.
type TemplateHook[C Context] interface {
	HandleTemplate(ctx C, res *DeferredResponse) (*DeferredResponse, error)
}

// Resolver maps a request to the view that should handle it. A failed
// resolution returns ErrNotFound or ErrMethodNotAllowed.
type Resolver[C Context] interface {
	Resolve(r *http.Request) (*Match[C], error)
}

// Match is a resolved route: the target view plus the positional and keyword
// arguments extracted from the request path.
type Match[C Context] struct {
	View   View[C]
	Args   []string
	Kwargs map[string]string
}

// ErrorHandler converts an unrecovered error into the response sent to the
// client. Returning nil falls back to a plain 500.
type ErrorHandler[C Context] func(ctx C, err error) Response
