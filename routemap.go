package strata

import (
	"net/http"
	"strings"
)

// RouteMap is a minimal Resolver implementation: an ordered method+pattern
// table. Patterns are /-separated literal segments, {name} parameters that
// become keyword arguments, and an optional trailing * wildcard whose
// remaining path segments become positional arguments. Routing syntax beyond
// that belongs to an external resolver.
type RouteMap[C Context] struct {
	routes []routeEntry[C]
}

type routeEntry[C Context] struct {
	method   string
	segments []string
	wildcard bool
	view     View[C]
}

// NewRouteMap creates an empty route table.
func NewRouteMap[C Context]() *RouteMap[C] {
	return &RouteMap[C]{}
}

// Handle registers a view for the given method and pattern. Registration
// happens at startup; invalid patterns panic there, never at request time.
func (m *RouteMap[C]) Handle(method, pattern string, view View[C]) *RouteMap[C] {
	if !strings.HasPrefix(pattern, "/") {
		panic("strata: routing pattern must begin with '/'")
	}
	if view == nil {
		panic("strata: cannot register nil view for " + pattern)
	}

	segs := splitPath(pattern)
	wildcard := false
	if n := len(segs); n > 0 && segs[n-1] == "*" {
		wildcard = true
		segs = segs[:n-1]
	}

	m.routes = append(m.routes, routeEntry[C]{
		method:   strings.ToUpper(method),
		segments: segs,
		wildcard: wildcard,
		view:     view,
	})
	return m
}

// Resolve implements the Resolver interface. Routes are tried in
// registration order; a path that matches only under other methods yields
// ErrMethodNotAllowed, no match at all yields ErrNotFound.
func (m *RouteMap[C]) Resolve(r *http.Request) (*Match[C], error) {
	path := splitPath(r.URL.Path)

	pathMatched := false
	for _, rt := range m.routes {
		args, kwargs, ok := rt.match(path)
		if !ok {
			continue
		}
		if rt.method != r.Method {
			pathMatched = true
			continue
		}
		return &Match[C]{View: rt.view, Args: args, Kwargs: kwargs}, nil
	}

	if pathMatched {
		return nil, ErrMethodNotAllowed
	}
	return nil, ErrNotFound
}

func (rt routeEntry[C]) match(path []string) (args []string, kwargs map[string]string, ok bool) {
	if len(path) < len(rt.segments) {
		return nil, nil, false
	}
	if !rt.wildcard && len(path) != len(rt.segments) {
		return nil, nil, false
	}

	for i, seg := range rt.segments {
		if strings.HasPrefix(seg, "{") && strings.HasSuffix(seg, "}") {
			if kwargs == nil {
				kwargs = make(map[string]string)
			}
			kwargs[seg[1:len(seg)-1]] = path[i]
			continue
		}
		if seg != path[i] {
			return nil, nil, false
		}
	}

	if rt.wildcard {
		args = append(args, path[len(rt.segments):]...)
	}
	return args, kwargs, true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
