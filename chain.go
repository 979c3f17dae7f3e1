package strata

import "slices"

// Chain is the fully composed middleware pipeline around a terminal handler.
// It is built once at startup and shared, read-only, by every request.
type Chain[C Context] struct {
	root          HandlerFunc[C]
	viewHooks     []ViewHook[C]
	templateHooks []TemplateHook[C]
}

// NewChain wraps the terminal handler in the given middleware, in reverse
// order so the first middleware becomes the outermost layer. Nil entries
// (layers excluded at startup) are skipped without disturbing the relative
// order of the rest. View and template hook capabilities are collected here,
// each middleware inspected exactly once.
func NewChain[C Context](terminal HandlerFunc[C], mws ...Middleware[C]) (*Chain[C], error) {
	if terminal == nil {
		return nil, ErrNilTerminal
	}

	c := &Chain[C]{}
	h := terminal

	// Wrap in reverse so the first middleware runs first.
	for i := len(mws) - 1; i >= 0; i-- {
		mw := mws[i]
		if mw == nil {
			continue
		}
		next := h
		h = func(ctx C) (Response, error) {
			return mw.Handle(ctx, next)
		}
		if vh, ok := mw.(ViewHook[C]); ok {
			c.viewHooks = append(c.viewHooks, vh)
		}
		if th, ok := mw.(TemplateHook[C]); ok {
			c.templateHooks = append(c.templateHooks, th)
		}
	}

	// The loop visits middleware inner-to-outer. View hooks must run in
	// configuration order; template hooks in reverse configuration order.
	slices.Reverse(c.viewHooks)

	c.root = h
	return c, nil
}

// Handler returns the outermost handler of the chain.
func (c *Chain[C]) Handler() HandlerFunc[C] {
	return c.root
}
