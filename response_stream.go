package strata

import (
	"io"
	"net/http"
)

// ChunkSource is a pull-based, finite, single-use body sequence. Next
// returns the next chunk, or io.EOF once the body is exhausted. Sources are
// not restartable; pulling after EOF, or from two consumers, is undefined.
//
// Wrappers transforming a source must stay lazy: pull one chunk per pull and
// never drain or buffer the underlying sequence. The type system cannot
// enforce this, so it is a caller obligation.
type ChunkSource interface {
	Next() ([]byte, error)
}

// ChunkFunc adapts a function to the ChunkSource interface.
type ChunkFunc func() ([]byte, error)

// Next implements ChunkSource.
func (f ChunkFunc) Next() ([]byte, error) {
	return f()
}

// Chunks returns a source yielding the given chunks in order. Useful for
// tests and small bodies; real streaming sources generate chunks on demand.
func Chunks(chunks ...[]byte) ChunkSource {
	i := 0
	return ChunkFunc(func() ([]byte, error) {
		if i >= len(chunks) {
			return nil, io.EOF
		}
		c := chunks[i]
		i++
		return c, nil
	})
}

// ReaderChunks streams from r in chunks of at most size bytes.
func ReaderChunks(r io.Reader, size int) ChunkSource {
	if size <= 0 {
		size = 32 * 1024
	}
	buf := make([]byte, size)
	return ChunkFunc(func() ([]byte, error) {
		for {
			n, err := r.Read(buf)
			if n > 0 {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])
				return chunk, nil
			}
			if err != nil {
				return nil, err
			}
		}
	})
}

// MapChunks wraps src with a per-chunk transform. Each pull from the wrapper
// pulls exactly one chunk from the source, so at most one untransformed
// chunk is held in memory at a time. The transform must not retain its
// input slice.
func MapChunks(src ChunkSource, fn func([]byte) []byte) ChunkSource {
	return ChunkFunc(func() ([]byte, error) {
		chunk, err := src.Next()
		if err != nil {
			return nil, err
		}
		return fn(chunk), nil
	})
}

// StreamResponse writes a lazy chunk sequence to the client without ever
// holding the full body in memory. The source is consumed exactly once, and
// consumption stops as soon as the client disconnects.
type StreamResponse struct {
	src         ChunkSource
	status      int
	contentType string
	header      http.Header
}

// Stream creates a streaming response with 200 OK status.
func Stream(src ChunkSource) *StreamResponse {
	return &StreamResponse{src: src, status: http.StatusOK}
}

// StreamWithStatus creates a streaming response with a custom status code.
func StreamWithStatus(src ChunkSource, status int) *StreamResponse {
	return &StreamResponse{src: src, status: status}
}

// Source returns the pending chunk sequence.
func (s *StreamResponse) Source() ChunkSource {
	return s.src
}

// SetSource replaces the chunk sequence, typically with a lazy wrapper
// around the previous one.
func (s *StreamResponse) SetSource(src ChunkSource) {
	s.src = src
}

// SetContentType overrides the Content-Type header (default
// application/octet-stream).
func (s *StreamResponse) SetContentType(ct string) {
	s.contentType = ct
}

// Header returns the response headers, initializing them on first use.
func (s *StreamResponse) Header() http.Header {
	if s.header == nil {
		s.header = make(http.Header)
	}
	return s.header
}

// Render implements the Response interface. Chunks are pulled one at a time,
// written, and flushed; the consumer ceasing iteration is the cancellation
// signal, so once the request context is done no further chunks are pulled.
func (s *StreamResponse) Render(w http.ResponseWriter, r *http.Request) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamUnsupported
	}

	for k, vals := range s.header {
		for _, v := range vals {
			w.Header().Add(k, v)
		}
	}
	ct := s.contentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	w.Header().Set("Content-Type", ct)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("X-Accel-Buffering", "no")

	w.WriteHeader(s.status)

	for {
		if r.Context().Err() != nil {
			return nil
		}

		chunk, err := s.src.Next()
		if err == io.EOF {
			flusher.Flush()
			return nil
		}
		if err != nil {
			return err
		}
		if len(chunk) == 0 {
			continue
		}

		if _, err := w.Write(chunk); err != nil {
			// Client went away mid-stream; stop pulling.
			return nil
		}
		flusher.Flush()
	}
}
