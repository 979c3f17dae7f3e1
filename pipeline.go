package strata

import (
	"errors"
	"log/slog"
	"net/http"
)

// resolvedKey marks the resolved route in the request attribute bag.
type resolvedKey struct{}

// Resolved returns the route match the pipeline stashed on the context,
// available to any middleware running after routing.
func Resolved[C Context](ctx Context) (*Match[C], bool) {
	m, ok := ctx.Value(resolvedKey{}).(*Match[C])
	return m, ok
}

// Pipeline executes the middleware chain around resolved views. It is
// constructed once at startup and shared by all concurrent requests; the
// chain topology is immutable after New returns.
type Pipeline[C Context] struct {
	chain        *Chain[C]
	resolver     Resolver[C]
	newContext   func(http.ResponseWriter, *http.Request) C
	errorHandler ErrorHandler[C]
	log          *slog.Logger
}

// Option configures a Pipeline during construction.
type Option[C Context] func(*Pipeline[C])

// WithErrorHandler sets a custom fallback converter for unrecovered errors.
func WithErrorHandler[C Context](h ErrorHandler[C]) Option[C] {
	return func(p *Pipeline[C]) {
		if h != nil {
			p.errorHandler = h
		}
	}
}

// WithContextFactory sets a custom request context factory.
func WithContextFactory[C Context](f func(http.ResponseWriter, *http.Request) C) Option[C] {
	return func(p *Pipeline[C]) {
		p.newContext = f
	}
}

// WithLogger sets the logger used for internal failure reporting.
func WithLogger[C Context](log *slog.Logger) Option[C] {
	return func(p *Pipeline[C]) {
		if log != nil {
			p.log = log
		}
	}
}

// New builds a pipeline. The middleware chain is composed exactly once and
// hook capabilities are collected here, so configuration problems fail at
// startup rather than at request time.
func New[C Context](resolver Resolver[C], mws []Middleware[C], opts ...Option[C]) (*Pipeline[C], error) {
	if resolver == nil {
		return nil, ErrNilResolver
	}

	p := &Pipeline[C]{
		resolver: resolver,
		log:      slog.Default(),
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.errorHandler == nil {
		p.errorHandler = convertError[C]
	}

	if p.newContext == nil {
		var zero C
		if _, ok := any(zero).(*RequestContext); !ok {
			return nil, ErrNoContextFactory
		}
		p.newContext = func(w http.ResponseWriter, r *http.Request) C {
			return any(NewRequestContext(w, r)).(C)
		}
	}

	chain, err := NewChain(p.dispatch, mws...)
	if err != nil {
		return nil, err
	}
	p.chain = chain

	return p, nil
}

// ServeHTTP implements http.Handler. Per request the outermost middleware
// runs first, the unwind mirrors entry order, and exactly one materialized
// response reaches the wire regardless of short-circuits, errors, or panics.
func (p *Pipeline[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := &responseWriter{ResponseWriter: w}
	ctx := p.newContext(ww, r)

	defer func() {
		if v := recover(); v != nil {
			err := toError(v)
			p.log.ErrorContext(r.Context(), "panic while handling request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Any("error", err),
			)
			if !ww.Written() {
				p.write(ctx, ww, r, p.fail(ctx, err))
			}
		}
	}()

	res, err := p.chain.Handler()(ctx)
	switch {
	case err != nil:
		res = p.fail(ctx, err)
	case res == nil:
		res = p.fail(ctx, ErrNilResponse)
	}

	// A middleware that short-circuits with a deferred response bypasses the
	// view path where template hooks and the render step live. Materialize
	// it here so an unrendered body never reaches the client.
	if d, ok := res.(*DeferredResponse); ok && !d.Rendered() {
		if rerr := d.render(); rerr != nil {
			res = p.fail(ctx, rerr)
		}
	}

	p.write(ctx, ww, r, res)
}

// dispatch is the innermost handler: it resolves the route, runs view hooks
// in configuration order, invokes the view, then runs template hooks in
// reverse configuration order and executes the single render step for
// deferred responses.
func (p *Pipeline[C]) dispatch(ctx C) (Response, error) {
	match, err := p.resolver.Resolve(ctx.Request())
	if err != nil {
		return nil, err
	}

	if rc, ok := any(ctx).(*RequestContext); ok {
		for k, v := range match.Kwargs {
			rc.SetParam(k, v)
		}
	}
	ctx.SetValue(resolvedKey{}, match)

	var res Response
	for _, h := range p.chain.viewHooks {
		res, err = h.HandleView(ctx, match.View, match.Args, match.Kwargs)
		if err != nil {
			return nil, err
		}
		if res != nil {
			// Short-circuit: the remaining hooks and the view are skipped,
			// but the response still takes the normal return path below.
			break
		}
	}

	if res == nil {
		res, err = match.View(ctx, match.Args, match.Kwargs)
		if err != nil {
			return nil, err
		}
		if res == nil {
			return nil, ErrNilResponse
		}
	}

	if d, ok := res.(*DeferredResponse); ok {
		for _, h := range p.chain.templateHooks {
			d, err = h.HandleTemplate(ctx, d)
			if err != nil {
				return nil, err
			}
			if d == nil {
				return nil, ErrTemplateHookNil
			}
		}
		if err := d.render(); err != nil {
			return nil, err
		}
		res = d
	}

	return res, nil
}

// fail converts an unrecovered error into a response. Internal failures are
// reported to the logger before conversion so causes are never dropped.
func (p *Pipeline[C]) fail(ctx C, err error) Response {
	if p.isInternal(err) {
		req := ctx.Request()
		p.log.ErrorContext(ctx, "request failed",
			slog.String("method", req.Method),
			slog.String("path", req.URL.Path),
			slog.Any("error", err),
		)
	}

	res := p.errorHandler(ctx, err)
	if res == nil {
		res = Status(http.StatusInternalServerError)
	}
	return res
}

// isInternal reports whether err carries no client-facing status below 500.
func (p *Pipeline[C]) isInternal(err error) bool {
	var appErr Error
	if errors.As(err, &appErr) {
		return appErr.Status >= http.StatusInternalServerError
	}
	return !errors.Is(err, ErrNotFound) && !errors.Is(err, ErrMethodNotAllowed)
}

func (p *Pipeline[C]) write(ctx C, ww *responseWriter, r *http.Request, res Response) {
	err := res.Render(ww, r)
	if err == nil {
		return
	}

	if ww.Written() {
		// Headers are on the wire; all that is left is to report the cause.
		p.log.ErrorContext(ctx, "response write failed after headers were sent",
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		return
	}

	fallback := p.fail(ctx, err)
	if rerr := fallback.Render(ww, r); rerr != nil {
		p.log.ErrorContext(ctx, "fallback response write failed",
			slog.String("path", r.URL.Path),
			slog.Any("error", rerr),
		)
	}
}
