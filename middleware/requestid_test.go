package middleware_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratahttp/strata"
	"github.com/stratahttp/strata/middleware"
)

func newPipeline(t *testing.T, view strata.View[*strata.RequestContext], mws ...strata.Middleware[*strata.RequestContext]) *strata.Pipeline[*strata.RequestContext] {
	t.Helper()

	routes := strata.NewRouteMap[*strata.RequestContext]()
	routes.Handle(http.MethodGet, "/test", view)

	p, err := strata.New(routes, mws,
		strata.WithLogger[*strata.RequestContext](slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)
	return p
}

func okView(body string) strata.View[*strata.RequestContext] {
	return func(ctx *strata.RequestContext, args []string, kwargs map[string]string) (strata.Response, error) {
		return strata.String(body), nil
	}
}

func TestRequestIDGenerated(t *testing.T) {
	t.Parallel()

	var captured string
	p := newPipeline(t, func(ctx *strata.RequestContext, args []string, kwargs map[string]string) (strata.Response, error) {
		captured = middleware.GetRequestID(ctx)
		return strata.String("ok"), nil
	}, middleware.NewRequestID[*strata.RequestContext](middleware.RequestIDConfig{}))

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, captured)
	assert.Len(t, captured, 36, "generated ID should be a UUID")
	assert.Equal(t, captured, w.Header().Get("X-Request-ID"))
}

func TestRequestIDInboundPreserved(t *testing.T) {
	t.Parallel()

	var captured string
	p := newPipeline(t, func(ctx *strata.RequestContext, args []string, kwargs map[string]string) (strata.Response, error) {
		captured = middleware.GetRequestID(ctx)
		return strata.String("ok"), nil
	}, middleware.NewRequestID[*strata.RequestContext](middleware.RequestIDConfig{}))

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("X-Request-ID", "upstream-id-123")

	w := httptest.NewRecorder()
	p.ServeHTTP(w, req)

	assert.Equal(t, "upstream-id-123", captured)
	assert.Equal(t, "upstream-id-123", w.Header().Get("X-Request-ID"))
}

func TestRequestIDCustomHeader(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, okView("ok"),
		middleware.NewRequestID[*strata.RequestContext](middleware.RequestIDConfig{HeaderName: "X-Trace-ID"}))

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	assert.Empty(t, w.Header().Get("X-Request-ID"))
}
