package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/stratahttp/strata"
	"github.com/stratahttp/strata/pkg/logger"
	"github.com/stratahttp/strata/session"
)

type ctxKeySession struct{}

// SessionsConfig configures the session middleware.
type SessionsConfig struct {
	// Store is the session backend. Required.
	Store session.Store
	// CookieName defaults to "session_id".
	CookieName string
	// TTL defaults to 24 hours.
	TTL time.Duration
	// Secure marks the session cookie as HTTPS-only.
	Secure bool
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Sessions loads the request's session on the way in and saves it on the way
// out if it was modified. A failing store degrades to a fresh session rather
// than failing the request.
type Sessions[C strata.Context] struct {
	store  session.Store
	cookie string
	ttl    time.Duration
	secure bool
	log    *slog.Logger
}

// NewSessions creates the session middleware.
func NewSessions[C strata.Context](cfg SessionsConfig) (*Sessions[C], error) {
	if cfg.Store == nil {
		return nil, errors.New("session middleware: store is required")
	}
	cookie := cfg.CookieName
	if cookie == "" {
		cookie = "session_id"
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Sessions[C]{store: cfg.Store, cookie: cookie, ttl: ttl, secure: cfg.Secure, log: log}, nil
}

// Handle implements the middleware contract.
func (m *Sessions[C]) Handle(ctx C, next strata.HandlerFunc[C]) (strata.Response, error) {
	var sess *session.Session
	if c, err := ctx.Request().Cookie(m.cookie); err == nil && c.Value != "" {
		loaded, err := m.store.Load(ctx, c.Value)
		switch {
		case err == nil:
			sess = loaded
		case !errors.Is(err, session.ErrNotFound):
			m.log.LogAttrs(ctx, slog.LevelWarn, "session load failed",
				logger.Component("session"), logger.Error(err))
		}
	}

	isNew := sess == nil
	if isNew {
		sess = session.New(uuid.NewString())
	}
	ctx.SetValue(ctxKeySession{}, sess)

	res, err := next(ctx)
	if err != nil || res == nil {
		return res, err
	}
	return &sessionResponse[C]{wrapped: res, mw: m, sess: sess, setCookie: isNew}, nil
}

// sessionResponse saves a dirty session and sets the cookie before the
// wrapped response writes its headers.
type sessionResponse[C strata.Context] struct {
	wrapped   strata.Response
	mw        *Sessions[C]
	sess      *session.Session
	setCookie bool
}

func (r *sessionResponse[C]) Render(w http.ResponseWriter, req *http.Request) error {
	if r.sess.Dirty() {
		if err := r.mw.store.Save(req.Context(), r.sess, r.mw.ttl); err != nil {
			r.mw.log.LogAttrs(req.Context(), slog.LevelError, "session save failed",
				logger.Component("session"), logger.Error(err))
		} else {
			r.sess.MarkClean()
			if r.setCookie {
				http.SetCookie(w, r.mw.cookieFor(r.sess))
			}
		}
	}
	return r.wrapped.Render(w, req)
}

func (m *Sessions[C]) cookieFor(sess *session.Session) *http.Cookie {
	return &http.Cookie{
		Name:     m.cookie,
		Value:    sess.Token,
		Path:     "/",
		MaxAge:   int(m.ttl.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// GetSession returns the session stored by the middleware.
func GetSession(ctx strata.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(ctxKeySession{}).(*session.Session)
	return sess, ok
}
