package strata_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stratahttp/strata"
)

type outerKey struct{}

func TestRequestContextValueBag(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(context.WithValue(req.Context(), outerKey{}, "from-request"))

	ctx := strata.NewRequestContext(httptest.NewRecorder(), req)

	// Falls through to the request context when the bag has no entry.
	assert.Equal(t, "from-request", ctx.Value(outerKey{}))

	// The bag shadows the request context.
	ctx.SetValue(outerKey{}, "from-bag")
	assert.Equal(t, "from-bag", ctx.Value(outerKey{}))
}

func TestRequestContextParams(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := strata.NewRequestContext(httptest.NewRecorder(), req)

	assert.Empty(t, ctx.Param("id"))

	ctx.SetParam("id", "9")
	assert.Equal(t, "9", ctx.Param("id"))
}

func TestRequestContextDelegatesCancellation(t *testing.T) {
	t.Parallel()

	base, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(base)
	ctx := strata.NewRequestContext(httptest.NewRecorder(), req)

	assert.NoError(t, ctx.Err())
	cancel()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}

func TestRequestContextExchange(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/submit", nil)
	ctx := strata.NewRequestContext(w, req)

	assert.Same(t, req, ctx.Request())
	assert.Equal(t, http.ResponseWriter(w), ctx.ResponseWriter())
}
