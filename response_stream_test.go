package strata_test

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratahttp/strata"
)

// countingSource counts pulls so laziness can be asserted.
type countingSource struct {
	src   strata.ChunkSource
	pulls int
}

func (s *countingSource) Next() ([]byte, error) {
	s.pulls++
	return s.src.Next()
}

func TestStreamWritesChunksLazily(t *testing.T) {
	t.Parallel()

	src := &countingSource{src: strata.Chunks(
		[]byte("one"),
		[]byte("two"),
		[]byte("three"),
	)}

	res := strata.Stream(src)
	res.SetContentType("text/plain")

	// Building the response must not consume anything.
	assert.Zero(t, src.pulls)

	w := httptest.NewRecorder()
	require.NoError(t, res.Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "onetwothree", w.Body.String())
	assert.Equal(t, "text/plain", w.Header().Get("Content-Type"))
	assert.Equal(t, "no-cache", w.Header().Get("Cache-Control"))

	// One pull per chunk plus the terminating pull.
	assert.Equal(t, 4, src.pulls)
}

func TestStreamStopsWhenContextCancelled(t *testing.T) {
	t.Parallel()

	src := &countingSource{src: strata.Chunks([]byte("never"))}
	res := strata.Stream(src)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)

	w := httptest.NewRecorder()
	require.NoError(t, res.Render(w, req))

	// A gone consumer means no further pulls, not an error.
	assert.Zero(t, src.pulls)
}

func TestStreamThroughPipeline(t *testing.T) {
	t.Parallel()

	src := &countingSource{src: strata.Chunks([]byte("a"), []byte("b"))}

	routes := strata.NewRouteMap[*strata.RequestContext]()
	routes.Handle(http.MethodGet, "/stream", func(ctx *strata.RequestContext, args []string, kwargs map[string]string) (strata.Response, error) {
		return strata.Stream(src), nil
	})

	p := newTestPipeline(t, routes)

	w := httptest.NewRecorder()
	p.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stream", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ab", w.Body.String())
	assert.Equal(t, 3, src.pulls)
}

func TestMapChunksStaysLazy(t *testing.T) {
	t.Parallel()

	src := &countingSource{src: strata.Chunks([]byte("x"), []byte("y"))}
	upper := strata.MapChunks(src, bytes.ToUpper)

	assert.Zero(t, src.pulls)

	chunk, err := upper.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("X"), chunk)
	// Exactly one chunk pulled per pull on the wrapper.
	assert.Equal(t, 1, src.pulls)

	chunk, err = upper.Next()
	require.NoError(t, err)
	assert.Equal(t, []byte("Y"), chunk)

	_, err = upper.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReaderChunks(t *testing.T) {
	t.Parallel()

	src := strata.ReaderChunks(strings.NewReader("abcdefgh"), 3)

	var got []byte
	for {
		chunk, err := src.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, chunk...)
	}
	assert.Equal(t, "abcdefgh", string(got))
}

func TestStreamWithStatus(t *testing.T) {
	t.Parallel()

	res := strata.StreamWithStatus(strata.Chunks([]byte("partial")), http.StatusPartialContent)

	w := httptest.NewRecorder()
	require.NoError(t, res.Render(w, httptest.NewRequest(http.MethodGet, "/", nil)))

	assert.Equal(t, http.StatusPartialContent, w.Code)
	assert.Equal(t, "partial", w.Body.String())
}
