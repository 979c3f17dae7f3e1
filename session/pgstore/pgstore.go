// Package pgstore persists sessions in PostgreSQL via pgx. Expired rows are
// filtered on read and reaped opportunistically.
package pgstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stratahttp/strata/session"
)

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	token      TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL DEFAULT '',
	data       JSONB NOT NULL DEFAULT '{}',
	expires_at TIMESTAMPTZ NOT NULL
)`

// Store persists sessions in a PostgreSQL table.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL, verifies the connection, and ensures the
// sessions table exists.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensure sessions table: %w", err)
	}
	return &Store{pool: pool}, nil
}

// NewWithPool wraps an existing pool. The caller retains ownership.
func NewWithPool(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Load implements session.Store.
func (s *Store) Load(ctx context.Context, token string) (*session.Session, error) {
	var (
		userID string
		values map[string]any
	)
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, data FROM sessions WHERE token = $1 AND expires_at > now()`,
		token,
	).Scan(&userID, &values)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}

	sess := session.New(token)
	sess.UserID = userID
	if values != nil {
		sess.Values = values
	}
	return sess, nil
}

// Save implements session.Store.
func (s *Store) Save(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (token, user_id, data, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (token) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			data = EXCLUDED.data,
			expires_at = EXCLUDED.expires_at`,
		sess.Token, sess.UserID, sess.Values, time.Now().Add(ttl),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// Delete implements session.Store.
func (s *Store) Delete(ctx context.Context, token string) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Reap removes expired sessions and returns the number deleted.
func (s *Store) Reap(ctx context.Context) (int64, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sessions WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("reap sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Healthcheck verifies the database connection.
func (s *Store) Healthcheck(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() {
	s.pool.Close()
}
