// Package memstore provides an in-memory session store for development and
// tests. Entries expire lazily on access.
package memstore

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/stratahttp/strata/session"
)

type entry struct {
	sess      session.Session
	values    map[string]any
	expiresAt time.Time
}

// Store is a concurrency-safe in-memory session store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]entry
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{sessions: make(map[string]entry)}
}

// Load implements session.Store. The returned session is a copy; mutations
// are not visible until saved.
func (s *Store) Load(ctx context.Context, token string) (*session.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, session.ErrNotFound
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return nil, session.ErrNotFound
	}

	sess := e.sess
	sess.Values = maps.Clone(e.values)
	return &sess, nil
}

// Save implements session.Store.
func (s *Store) Save(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	e := entry{
		sess:   *sess,
		values: maps.Clone(sess.Values),
	}
	e.sess.Values = nil
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	s.mu.Lock()
	s.sessions[sess.Token] = e
	s.mu.Unlock()
	return nil
}

// Delete implements session.Store.
func (s *Store) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}
