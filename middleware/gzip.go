package middleware

import (
	"io"
	"net/http"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/stratahttp/strata"
)

// GzipConfig configures the compression middleware.
type GzipConfig struct {
	// Level is a gzip compression level; defaults to gzip.DefaultCompression.
	Level int
}

// Gzip compresses response bodies when the client accepts gzip encoding.
// Compression happens at render time, so it also covers streamed bodies:
// each flush cycles the compressor so chunks stay incrementally decodable.
type Gzip[C strata.Context] struct {
	level int
}

// NewGzip creates the compression middleware.
func NewGzip[C strata.Context](cfg GzipConfig) (*Gzip[C], error) {
	level := cfg.Level
	if level == 0 {
		level = gzip.DefaultCompression
	}
	// Validate the level at startup instead of on the first response.
	if _, err := gzip.NewWriterLevel(io.Discard, level); err != nil {
		return nil, err
	}
	return &Gzip[C]{level: level}, nil
}

// Handle implements the middleware contract.
func (m *Gzip[C]) Handle(ctx C, next strata.HandlerFunc[C]) (strata.Response, error) {
	res, err := next(ctx)
	if err != nil || res == nil {
		return res, err
	}
	if !strings.Contains(ctx.Request().Header.Get("Accept-Encoding"), "gzip") {
		return res, nil
	}
	return &gzipResponse{wrapped: res, level: m.level}, nil
}

type gzipResponse struct {
	wrapped strata.Response
	level   int
}

func (r *gzipResponse) Render(w http.ResponseWriter, req *http.Request) error {
	zw, err := gzip.NewWriterLevel(w, r.level)
	if err != nil {
		return err
	}

	gw := &gzipWriter{ResponseWriter: w, zw: zw}
	if err := r.wrapped.Render(gw, req); err != nil {
		zw.Close()
		return err
	}
	return zw.Close()
}

// gzipWriter routes body bytes through the compressor while headers and
// status pass straight through.
type gzipWriter struct {
	http.ResponseWriter
	zw          *gzip.Writer
	wroteHeader bool
}

func (w *gzipWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		w.Header().Set("Content-Encoding", "gzip")
		w.Header().Add("Vary", "Accept-Encoding")
		// Length refers to the uncompressed body.
		w.Header().Del("Content-Length")
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *gzipWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.zw.Write(b)
}

func (w *gzipWriter) Flush() {
	w.zw.Flush()
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
