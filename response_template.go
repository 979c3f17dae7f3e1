package strata

import (
	"bytes"
	"html/template"
	"net/http"
)

// Renderer materializes deferred responses. Rendering engines are external
// collaborators; HTMLRenderer adapts html/template for the common case.
type Renderer interface {
	Render(name string, data any) ([]byte, error)
}

// HTMLRenderer renders named templates from an html/template collection
// (e.g. from ParseFiles or ParseGlob).
type HTMLRenderer struct {
	Templates *template.Template
}

// Render implements the Renderer interface.
func (r HTMLRenderer) Render(name string, data any) ([]byte, error) {
	if r.Templates == nil {
		return nil, ErrInternalServerError.WithMessage("template collection is nil")
	}
	var buf bytes.Buffer
	if err := r.Templates.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeferredResponse carries a pending render step: a template name, its data,
// and the renderer that will materialize them. Template hooks may mutate the
// data map in place or swap the template before the pipeline executes the
// render step, which runs exactly once after the last hook.
type DeferredResponse struct {
	renderer Renderer
	template string
	data     map[string]any
	status   int
	header   http.Header
	body     []byte
	rendered bool
}

// Deferred creates a deferred response with 200 OK status. The body is
// produced later by rendering the named template with the given data.
func Deferred(renderer Renderer, name string, data map[string]any) *DeferredResponse {
	return &DeferredResponse{
		renderer: renderer,
		template: name,
		data:     data,
		status:   http.StatusOK,
	}
}

// DeferredWithStatus creates a deferred response with a custom status code.
func DeferredWithStatus(renderer Renderer, name string, data map[string]any, status int) *DeferredResponse {
	d := Deferred(renderer, name, data)
	d.status = status
	return d
}

// Template returns the pending template name.
func (d *DeferredResponse) Template() string {
	return d.template
}

// SetTemplate swaps the template rendered later.
func (d *DeferredResponse) SetTemplate(name string) {
	d.template = name
}

// Data returns the render inputs, initializing the map on first use so that
// hooks can mutate it in place.
func (d *DeferredResponse) Data() map[string]any {
	if d.data == nil {
		d.data = make(map[string]any)
	}
	return d.data
}

// SetData replaces a single render input.
func (d *DeferredResponse) SetData(key string, val any) {
	d.Data()[key] = val
}

// Status returns the response status code.
func (d *DeferredResponse) Status() int {
	return d.status
}

// SetStatus changes the response status code.
func (d *DeferredResponse) SetStatus(status int) {
	d.status = status
}

// Header returns the response headers, initializing them on first use.
func (d *DeferredResponse) Header() http.Header {
	if d.header == nil {
		d.header = make(http.Header)
	}
	return d.header
}

// Rendered reports whether the render step has executed.
func (d *DeferredResponse) Rendered() bool {
	return d.rendered
}

// Body returns the materialized content, nil before the render step.
func (d *DeferredResponse) Body() []byte {
	return d.body
}

// render executes the pending render step. The pipeline calls it exactly
// once, after the last template hook; a second call means the same response
// value was reused across requests and is rejected.
func (d *DeferredResponse) render() error {
	if d.rendered {
		return ErrAlreadyRendered
	}
	if d.renderer == nil {
		return ErrNilRenderer
	}
	body, err := d.renderer.Render(d.template, d.data)
	if err != nil {
		return err
	}
	d.body = body
	d.rendered = true
	return nil
}

// Render implements the Response interface. It materializes the body if the
// pipeline has not already done so, then writes headers, status, and content.
func (d *DeferredResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if !d.rendered {
		if err := d.render(); err != nil {
			return err
		}
	}

	for k, vals := range d.header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}

	w.WriteHeader(d.status)

	if len(d.body) > 0 {
		_, err := w.Write(d.body)
		return err
	}
	return nil
}
