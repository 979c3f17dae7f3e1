// Package session defines the session model and the Store contract its
// backends implement. Sessions carry an opaque token, an optional
// authenticated user, and a free-form value bag; mutations mark the session
// dirty so the middleware knows when a save is required.
package session

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by stores when no session exists for a token.
var ErrNotFound = errors.New("session: not found")

// Session is the per-request session state. The zero value is not usable;
// create sessions through New.
type Session struct {
	Token  string
	UserID string
	Values map[string]any

	dirty bool
}

// New creates an empty session for the given token.
func New(token string) *Session {
	return &Session{
		Token:  token,
		Values: make(map[string]any),
	}
}

// Get returns a stored value.
func (s *Session) Get(key string) (any, bool) {
	v, ok := s.Values[key]
	return v, ok
}

// Set stores a value and marks the session dirty.
func (s *Session) Set(key string, val any) {
	if s.Values == nil {
		s.Values = make(map[string]any)
	}
	s.Values[key] = val
	s.dirty = true
}

// Delete removes a value. Deleting an absent key does not dirty the session.
func (s *Session) Delete(key string) {
	if _, ok := s.Values[key]; !ok {
		return
	}
	delete(s.Values, key)
	s.dirty = true
}

// Authenticate binds the session to a user and marks it dirty.
func (s *Session) Authenticate(userID string) {
	s.UserID = userID
	s.dirty = true
}

// IsAuthenticated reports whether a user is bound to the session.
func (s *Session) IsAuthenticated() bool { return s.UserID != "" }

// Dirty reports whether the session has unsaved mutations.
func (s *Session) Dirty() bool { return s.dirty }

// MarkClean resets the dirty flag, typically after a successful save.
func (s *Session) MarkClean() { s.dirty = false }

// Store persists sessions. Implementations must be safe for concurrent use.
type Store interface {
	// Load retrieves the session for a token, or ErrNotFound.
	Load(ctx context.Context, token string) (*Session, error)
	// Save persists the session with the given time to live.
	Save(ctx context.Context, sess *Session, ttl time.Duration) error
	// Delete removes the session for a token. Deleting an absent token is
	// not an error.
	Delete(ctx context.Context, token string) error
}
