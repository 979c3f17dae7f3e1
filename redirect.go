package strata

import "net/http"

// redirectResponse writes a Location header and a 3xx status with no body.
type redirectResponse struct {
	location string
	status   int
}

// Render implements the Response interface. A status outside the redirect
// range is clamped to 303 so the shape can never emit a bodiless non-3xx
// reply.
func (r redirectResponse) Render(w http.ResponseWriter, req *http.Request) error {
	status := r.status
	if status < http.StatusMultipleChoices || status > http.StatusPermanentRedirect {
		status = http.StatusSeeOther
	}
	w.Header().Set("Location", r.location)
	w.WriteHeader(status)
	return nil
}

// Redirect creates a 302 Found response pointing at location.
func Redirect(location string) Response {
	return redirectResponse{location: location, status: http.StatusFound}
}

// RedirectPermanent creates a 301 Moved Permanently response.
func RedirectPermanent(location string) Response {
	return redirectResponse{location: location, status: http.StatusMovedPermanently}
}

// RedirectSeeOther creates a 303 See Other response, the usual reply after
// a state-changing request.
func RedirectSeeOther(location string) Response {
	return redirectResponse{location: location, status: http.StatusSeeOther}
}

// RedirectWithStatus creates a redirect with an explicit 3xx status, e.g.
// 307 or 308 when the request method must be preserved.
func RedirectWithStatus(location string, status int) Response {
	return redirectResponse{location: location, status: status}
}
