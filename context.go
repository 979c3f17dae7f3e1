package strata

import (
	"net/http"
	"time"
)

// RequestContext is the default Context implementation. It delegates the
// context.Context methods to the request's context and keeps URL parameters
// and the attribute bag locally.
type RequestContext struct {
	w      http.ResponseWriter
	r      *http.Request
	params map[string]string
	values map[any]any
}

// NewRequestContext creates a RequestContext for the given exchange.
func NewRequestContext(w http.ResponseWriter, r *http.Request) *RequestContext {
	return &RequestContext{w: w, r: r}
}

// Deadline delegates to the request's context.
func (c *RequestContext) Deadline() (deadline time.Time, ok bool) {
	return c.r.Context().Deadline()
}

// Done delegates to the request's context.
func (c *RequestContext) Done() <-chan struct{} {
	return c.r.Context().Done()
}

// Err delegates to the request's context.
func (c *RequestContext) Err() error {
	return c.r.Context().Err()
}

// Value consults the attribute bag first, then the request's context.
func (c *RequestContext) Value(key any) any {
	if val, ok := c.values[key]; ok {
		return val
	}
	return c.r.Context().Value(key)
}

// Request returns the *http.Request associated with the context.
func (c *RequestContext) Request() *http.Request {
	return c.r
}

// ResponseWriter returns the http.ResponseWriter associated with the context.
func (c *RequestContext) ResponseWriter() http.ResponseWriter {
	return c.w
}

// Param returns the value of the URL parameter by key.
func (c *RequestContext) Param(key string) string {
	if c.params == nil {
		return ""
	}
	return c.params[key]
}

// SetParam sets a URL parameter value.
func (c *RequestContext) SetParam(key, value string) {
	if c.params == nil {
		c.params = make(map[string]string)
	}
	c.params[key] = value
}

// SetValue stores a request-scoped value in the attribute bag.
func (c *RequestContext) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}
