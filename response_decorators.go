package strata

import "net/http"

// decoratedResponse runs a header-stage step before delegating to the
// wrapped response. Decorators compose: the one applied last runs its step
// first, and the innermost response still controls status and body.
type decoratedResponse struct {
	wrapped Response
	before  func(w http.ResponseWriter)
}

// Render implements the Response interface.
func (r *decoratedResponse) Render(w http.ResponseWriter, req *http.Request) error {
	r.before(w)
	return r.wrapped.Render(w, req)
}

// WithHeaders wraps a response so the given headers are set before it
// renders. Middleware return legs use it to stamp headers onto whatever
// response came back from deeper layers.
func WithHeaders(res Response, headers map[string]string) Response {
	if res == nil || len(headers) == 0 {
		return res
	}
	return &decoratedResponse{
		wrapped: res,
		before: func(w http.ResponseWriter) {
			for k, v := range headers {
				w.Header().Set(k, v)
			}
		},
	}
}

// WithCookie wraps a response so the cookie is set before it renders.
func WithCookie(res Response, cookie *http.Cookie) Response {
	if res == nil || cookie == nil {
		return res
	}
	return &decoratedResponse{
		wrapped: res,
		before: func(w http.ResponseWriter) {
			http.SetCookie(w, cookie)
		},
	}
}
