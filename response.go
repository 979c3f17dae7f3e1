package strata

import (
	"net/http"
	"strconv"
)

// materializedResponse is the simplest response shape: status, content type
// and body are all known before rendering begins, so rendering is a single
// header-then-body write with no pending work.
type materializedResponse struct {
	status      int
	contentType string
	body        []byte
}

// Render implements the Response interface.
func (r materializedResponse) Render(w http.ResponseWriter, req *http.Request) error {
	if r.contentType != "" {
		w.Header().Set("Content-Type", r.contentType)
	}
	if len(r.body) > 0 {
		w.Header().Set("Content-Length", strconv.Itoa(len(r.body)))
	}

	w.WriteHeader(r.status)

	if len(r.body) == 0 || req.Method == http.MethodHead {
		return nil
	}
	_, err := w.Write(r.body)
	return err
}

// String creates a plain-text response with 200 OK status.
func String(content string) Response {
	return materializedResponse{
		status:      http.StatusOK,
		contentType: "text/plain; charset=utf-8",
		body:        []byte(content),
	}
}

// StringWithStatus creates a plain-text response with a custom status code.
func StringWithStatus(content string, status int) Response {
	return materializedResponse{
		status:      status,
		contentType: "text/plain; charset=utf-8",
		body:        []byte(content),
	}
}

// HTML creates a text/html response with 200 OK status from content that is
// already fully rendered. Views producing HTML through a template and a
// pending render step return a DeferredResponse instead.
func HTML(content string) Response {
	return materializedResponse{
		status:      http.StatusOK,
		contentType: "text/html; charset=utf-8",
		body:        []byte(content),
	}
}

// Bytes creates a response with the given content type and 200 OK status.
func Bytes(content []byte, contentType string) Response {
	return materializedResponse{
		status:      http.StatusOK,
		contentType: contentType,
		body:        content,
	}
}

// NoContent creates an empty 204 No Content response.
func NoContent() Response {
	return materializedResponse{status: http.StatusNoContent}
}

// Status creates an empty response with the given status code. The pipeline
// uses it as the last-resort reply when the error handler yields nothing.
func Status(code int) Response {
	return materializedResponse{status: code}
}
