package middleware

import (
	"fmt"
	"net/http"

	"golang.org/x/crypto/bcrypt"

	"github.com/stratahttp/strata"
)

type ctxKeyBasicUser struct{}

// BasicAuthConfig configures the basic auth middleware.
type BasicAuthConfig struct {
	// Users maps usernames to bcrypt password hashes.
	Users map[string]string
	// Realm defaults to "Restricted".
	Realm string
	// Skip bypasses authentication for matching requests.
	Skip func(r *http.Request) bool
}

// BasicAuth rejects requests without valid credentials before anything
// deeper in the pipeline runs.
type BasicAuth[C strata.Context] struct {
	users map[string]string
	realm string
	skip  func(r *http.Request) bool
}

// NewBasicAuth creates the basic auth middleware.
func NewBasicAuth[C strata.Context](cfg BasicAuthConfig) *BasicAuth[C] {
	realm := cfg.Realm
	if realm == "" {
		realm = "Restricted"
	}
	return &BasicAuth[C]{users: cfg.Users, realm: realm, skip: cfg.Skip}
}

// Handle implements the middleware contract.
func (m *BasicAuth[C]) Handle(ctx C, next strata.HandlerFunc[C]) (strata.Response, error) {
	if m.skip != nil && m.skip(ctx.Request()) {
		return next(ctx)
	}

	user, pass, ok := ctx.Request().BasicAuth()
	if ok {
		if hash, known := m.users[user]; known {
			if bcrypt.CompareHashAndPassword([]byte(hash), []byte(pass)) == nil {
				ctx.SetValue(ctxKeyBasicUser{}, user)
				return next(ctx)
			}
		}
	}

	return strata.WithHeaders(
		strata.JSONWithStatus(strata.ErrUnauthorized, http.StatusUnauthorized),
		map[string]string{"WWW-Authenticate": fmt.Sprintf("Basic realm=%q", m.realm)},
	), nil
}

// BasicAuthUser returns the authenticated username stored by the middleware.
func BasicAuthUser(ctx strata.Context) (string, bool) {
	user, ok := ctx.Value(ctxKeyBasicUser{}).(string)
	return user, ok
}
