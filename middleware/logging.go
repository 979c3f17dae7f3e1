package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/stratahttp/strata"
	"github.com/stratahttp/strata/pkg/logger"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Logger defaults to slog.Default().
	Logger *slog.Logger
	// SlowThreshold escalates requests slower than this to warn level.
	// Zero disables the escalation.
	SlowThreshold time.Duration
	// Skip suppresses logging for matching requests, e.g. health checks.
	Skip func(r *http.Request) bool
}

// Logging emits a structured log line per request with method, path, status,
// duration and response size. Server errors log at error level, client
// errors and slow requests at warn.
type Logging[C strata.Context] struct {
	log  *slog.Logger
	slow time.Duration
	skip func(r *http.Request) bool
}

// NewLogging creates the logging middleware.
func NewLogging[C strata.Context](cfg LoggingConfig) *Logging[C] {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Logging[C]{log: log, slow: cfg.SlowThreshold, skip: cfg.Skip}
}

// Handle implements the middleware contract.
func (m *Logging[C]) Handle(ctx C, next strata.HandlerFunc[C]) (strata.Response, error) {
	r := ctx.Request()
	if m.skip != nil && m.skip(r) {
		return next(ctx)
	}

	start := time.Now()
	res, err := next(ctx)
	if err != nil {
		m.emit(ctx, statusFromError(err), 0, time.Since(start), err)
		return nil, err
	}

	return observe(res, func(status int, size int64) {
		m.emit(ctx, status, size, time.Since(start), nil)
	}), nil
}

func (m *Logging[C]) emit(ctx C, status int, size int64, elapsed time.Duration, err error) {
	r := ctx.Request()
	attrs := []slog.Attr{
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.StatusCode(status),
		logger.BytesOut(size),
		logger.Duration(elapsed),
		logger.RemoteAddr(r.RemoteAddr),
	}
	if q := r.URL.RawQuery; q != "" {
		attrs = append(attrs, logger.Query(q))
	}
	if id := GetRequestID(ctx); id != "" {
		attrs = append(attrs, logger.RequestID(id))
	}
	if err != nil {
		attrs = append(attrs, logger.Error(err))
	}

	level := slog.LevelInfo
	switch {
	case status >= http.StatusInternalServerError:
		level = slog.LevelError
	case status >= http.StatusBadRequest:
		level = slog.LevelWarn
	case m.slow > 0 && elapsed > m.slow:
		level = slog.LevelWarn
		attrs = append(attrs, logger.Event("slow_request"))
	}

	m.log.LogAttrs(ctx, level, "http request", attrs...)
}
