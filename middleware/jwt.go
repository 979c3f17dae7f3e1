package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/stratahttp/strata"
)

type ctxKeyClaims struct{}

// JWTConfig configures the JWT middleware.
type JWTConfig struct {
	// SigningKey is the HMAC secret used when KeyFunc is not set.
	SigningKey []byte
	// KeyFunc overrides the default HMAC verification.
	KeyFunc jwt.Keyfunc
	// HeaderName defaults to "Authorization"; the value is expected to be a
	// bearer token.
	HeaderName string
	// Exempt marks requests that may reach their view without a token.
	Exempt func(r *http.Request) bool
}

// JWT parses and verifies a bearer token on the way in, making the claims
// available to downstream layers and views. Enforcement happens after
// routing: requests without valid claims are rejected before the selected
// view executes, unless exempt.
type JWT[C strata.Context] struct {
	keyFunc jwt.Keyfunc
	header  string
	exempt  func(r *http.Request) bool
}

// NewJWT creates the JWT middleware.
func NewJWT[C strata.Context](cfg JWTConfig) (*JWT[C], error) {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		if len(cfg.SigningKey) == 0 {
			return nil, errors.New("jwt middleware: signing key or key func is required")
		}
		key := cfg.SigningKey
		keyFunc = func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return key, nil
		}
	}

	header := cfg.HeaderName
	if header == "" {
		header = "Authorization"
	}
	return &JWT[C]{keyFunc: keyFunc, header: header, exempt: cfg.Exempt}, nil
}

// Handle implements the middleware contract. Parsing never rejects the
// request; a missing or invalid token simply leaves no claims behind.
func (m *JWT[C]) Handle(ctx C, next strata.HandlerFunc[C]) (strata.Response, error) {
	if raw := m.bearerToken(ctx.Request()); raw != "" {
		token, err := jwt.Parse(raw, m.keyFunc)
		if err == nil && token.Valid {
			if claims, ok := token.Claims.(jwt.MapClaims); ok {
				ctx.SetValue(ctxKeyClaims{}, claims)
			}
		}
	}
	return next(ctx)
}

// HandleView enforces authentication once the target view is known.
func (m *JWT[C]) HandleView(ctx C, _ strata.View[C], _ []string, _ map[string]string) (strata.Response, error) {
	if m.exempt != nil && m.exempt(ctx.Request()) {
		return nil, nil
	}
	if _, ok := GetClaims(ctx); !ok {
		return nil, strata.ErrUnauthorized
	}
	return nil, nil
}

func (m *JWT[C]) bearerToken(r *http.Request) string {
	value := r.Header.Get(m.header)
	if len(value) > 7 && strings.EqualFold(value[:7], "Bearer ") {
		return strings.TrimSpace(value[7:])
	}
	return ""
}

// GetClaims returns the verified claims stored by the middleware.
func GetClaims(ctx strata.Context) (jwt.MapClaims, bool) {
	claims, ok := ctx.Value(ctxKeyClaims{}).(jwt.MapClaims)
	return claims, ok
}
