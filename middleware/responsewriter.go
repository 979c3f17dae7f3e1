package middleware

import (
	"errors"
	"net/http"

	"github.com/stratahttp/strata"
)

// captureWriter records the status code and body size written through it.
type captureWriter struct {
	http.ResponseWriter
	status  int
	size    int64
	written bool
}

func (w *captureWriter) WriteHeader(code int) {
	if !w.written {
		w.status = code
		w.written = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *captureWriter) Write(b []byte) (int, error) {
	if !w.written {
		w.status = http.StatusOK
		w.written = true
	}
	n, err := w.ResponseWriter.Write(b)
	w.size += int64(n)
	return n, err
}

func (w *captureWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// observedResponse wraps a response and reports the rendered status and body
// size once rendering finishes.
type observedResponse struct {
	wrapped strata.Response
	done    func(status int, size int64)
}

func (r *observedResponse) Render(w http.ResponseWriter, req *http.Request) error {
	cw := &captureWriter{ResponseWriter: w, status: http.StatusOK}
	err := r.wrapped.Render(cw, req)
	r.done(cw.status, cw.size)
	return err
}

// observe instruments a response so done runs after it renders.
func observe(res strata.Response, done func(status int, size int64)) strata.Response {
	if res == nil {
		return nil
	}
	return &observedResponse{wrapped: res, done: done}
}

// statusFromError derives the HTTP status an unrecovered error will map to.
func statusFromError(err error) int {
	var appErr strata.Error
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	switch {
	case errors.Is(err, strata.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, strata.ErrMethodNotAllowed):
		return http.StatusMethodNotAllowed
	}
	return http.StatusInternalServerError
}
