package middleware

import (
	"github.com/google/uuid"

	"github.com/stratahttp/strata"
)

type ctxKeyRequestID struct{}

// DefaultRequestIDHeader is the header the request ID is read from and
// echoed on.
const DefaultRequestIDHeader = "X-Request-ID"

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	// HeaderName overrides DefaultRequestIDHeader.
	HeaderName string
}

// RequestID accepts an inbound request ID or generates one, stores it in the
// context for downstream layers, and echoes it on the response.
type RequestID[C strata.Context] struct {
	header string
}

// NewRequestID creates the request ID middleware.
func NewRequestID[C strata.Context](cfg RequestIDConfig) *RequestID[C] {
	header := cfg.HeaderName
	if header == "" {
		header = DefaultRequestIDHeader
	}
	return &RequestID[C]{header: header}
}

// Handle implements the middleware contract.
func (m *RequestID[C]) Handle(ctx C, next strata.HandlerFunc[C]) (strata.Response, error) {
	id := ctx.Request().Header.Get(m.header)
	if id == "" {
		id = uuid.NewString()
	}
	ctx.SetValue(ctxKeyRequestID{}, id)

	res, err := next(ctx)
	if err != nil {
		return nil, err
	}
	return strata.WithHeaders(res, map[string]string{m.header: id}), nil
}

// GetRequestID returns the request ID stored by the middleware, or "".
func GetRequestID(ctx strata.Context) string {
	id, _ := ctx.Value(ctxKeyRequestID{}).(string)
	return id
}
