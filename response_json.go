package strata

import (
	"encoding/json"
	"net/http"
	"strconv"
)

// jsonResponse encodes its payload at render time. Marshalling happens
// before any header is written, so an unencodable payload surfaces as a
// render error the pipeline can still convert into a proper reply instead
// of a half-written body.
type jsonResponse struct {
	data   any
	status int
}

// Render implements the Response interface.
func (r *jsonResponse) Render(w http.ResponseWriter, req *http.Request) error {
	body, err := json.Marshal(r.data)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(r.status)

	if req.Method == http.MethodHead {
		return nil
	}
	_, err = w.Write(body)
	return err
}

// JSON creates an application/json response with 200 OK status.
func JSON(v any) Response {
	return &jsonResponse{data: v, status: http.StatusOK}
}

// JSONWithStatus creates an application/json response with a custom status
// code. The pipeline's error converter uses it to serialize tagged errors.
func JSONWithStatus(v any, status int) Response {
	return &jsonResponse{data: v, status: status}
}
