package strata

import (
	"errors"
	"fmt"
	"log/slog"
)

// Factory constructs one middleware instance at process startup. Returning
// ErrNotUsed excludes the layer from the chain; any other error aborts
// startup. Factories run exactly once, never per request.
type Factory[C Context] func() (Middleware[C], error)

// Registry resolves middleware identifiers from startup configuration to
// factories.
type Registry[C Context] struct {
	factories map[string]Factory[C]
	log       *slog.Logger
}

// NewRegistry creates an empty registry. A nil logger falls back to
// slog.Default().
func NewRegistry[C Context](log *slog.Logger) *Registry[C] {
	if log == nil {
		log = slog.Default()
	}
	return &Registry[C]{
		factories: make(map[string]Factory[C]),
		log:       log,
	}
}

// Register maps an identifier to a factory. Re-registering an identifier
// replaces the previous factory.
func (r *Registry[C]) Register(name string, f Factory[C]) {
	r.factories[name] = f
}

// Build instantiates the named middleware in order. Unknown identifiers fail
// fatally; factories signalling ErrNotUsed are skipped with a diagnostic,
// preserving the relative order of the remaining layers.
func (r *Registry[C]) Build(names []string) ([]Middleware[C], error) {
	mws := make([]Middleware[C], 0, len(names))
	for _, name := range names {
		f, ok := r.factories[name]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownMiddleware, name)
		}

		mw, err := f()
		if err != nil {
			if errors.Is(err, ErrNotUsed) {
				r.log.Debug("middleware excluded from chain", slog.String("middleware", name))
				continue
			}
			return nil, fmt.Errorf("middleware %q: %w", name, err)
		}
		mws = append(mws, mw)
	}
	return mws, nil
}
