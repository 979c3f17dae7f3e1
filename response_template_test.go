package strata_test

import (
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratahttp/strata"
)

func TestHTMLRenderer(t *testing.T) {
	t.Parallel()

	tpl := template.Must(template.New("greet.html").Parse("<h1>Hello, {{.name}}!</h1>"))
	renderer := strata.HTMLRenderer{Templates: tpl}

	body, err := renderer.Render("greet.html", map[string]any{"name": "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hello, Ada!</h1>", string(body))
}

func TestHTMLRendererEscapesData(t *testing.T) {
	t.Parallel()

	tpl := template.Must(template.New("x").Parse("{{.v}}"))
	renderer := strata.HTMLRenderer{Templates: tpl}

	body, err := renderer.Render("x", map[string]any{"v": "<script>"})
	require.NoError(t, err)
	assert.Equal(t, "&lt;script&gt;", string(body))
}

func TestDeferredResponseRendersOnWrite(t *testing.T) {
	t.Parallel()

	renderer := &countingRenderer{}
	res := strata.Deferred(renderer, "home.html", map[string]any{"k": "v"})

	assert.False(t, res.Rendered())
	assert.Nil(t, res.Body())

	w := httptest.NewRecorder()
	require.NoError(t, res.Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

	assert.True(t, res.Rendered())
	assert.Equal(t, 1, renderer.calls)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "<p>home.html</p>", w.Body.String())
	assert.Equal(t, "text/html; charset=utf-8", w.Header().Get("Content-Type"))
}

func TestDeferredResponseStatusAndHeaders(t *testing.T) {
	t.Parallel()

	res := strata.DeferredWithStatus(&countingRenderer{}, "missing.html", nil, http.StatusNotFound)
	res.Header().Set("X-Robots-Tag", "noindex")

	w := httptest.NewRecorder()
	require.NoError(t, res.Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "noindex", w.Header().Get("X-Robots-Tag"))
}

func TestDeferredResponseHookMutation(t *testing.T) {
	t.Parallel()

	res := strata.Deferred(&countingRenderer{}, "a.html", nil)

	// Hooks mutate the render inputs in place before the render step.
	res.SetData("injected", 1)
	res.SetTemplate("b.html")

	assert.Equal(t, "b.html", res.Template())
	assert.Equal(t, 1, res.Data()["injected"])
}

func TestDeferredResponseNilRenderer(t *testing.T) {
	t.Parallel()

	res := strata.Deferred(nil, "x.html", nil)

	w := httptest.NewRecorder()
	err := res.Render(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.ErrorIs(t, err, strata.ErrNilRenderer)
}
