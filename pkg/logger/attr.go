// Package logger provides slog attribute helpers shared by the middleware
// for consistent structured log field names.
package logger

import (
	"log/slog"
	"strconv"
	"time"
)

func Component(name string) slog.Attr { return slog.String("component", name) }
func Event(name string) slog.Attr     { return slog.String("event", name) }
func Method(m string) slog.Attr       { return slog.String("method", m) }
func Path(p string) slog.Attr         { return slog.String("path", p) }
func Query(q string) slog.Attr        { return slog.String("query", q) }
func RemoteAddr(a string) slog.Attr   { return slog.String("remote_addr", a) }
func RequestID(id string) slog.Attr   { return slog.String("request_id", id) }
func StatusCode(code int) slog.Attr   { return slog.Int("status_code", code) }
func BytesOut(n int64) slog.Attr      { return slog.Int64("bytes_out", n) }

func Duration(d time.Duration) slog.Attr { return slog.Duration("duration", d) }

// Group collects attributes under a single key.
func Group(key string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: key, Value: slog.GroupValue(attrs...)}
}

// Error returns an "error" attribute, or an empty attribute for nil errors
// so it disappears from the output.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Errors groups the non-nil errors under one "errors" attribute.
func Errors(errs ...error) slog.Attr {
	var attrs []slog.Attr
	for _, err := range errs {
		if err == nil {
			continue
		}
		attrs = append(attrs, slog.Any(strconv.Itoa(len(attrs)), err))
	}
	if len(attrs) == 0 {
		return slog.Attr{}
	}
	return Group("errors", attrs...)
}
