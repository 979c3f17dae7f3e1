// Package redisstore persists sessions in Redis with TTL-based expiry.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/stratahttp/strata/session"
)

const keyPrefix = "session:"

// record is the JSON shape stored per session.
type record struct {
	UserID string         `json:"user_id,omitempty"`
	Values map[string]any `json:"values,omitempty"`
}

// Store persists sessions in Redis.
type Store struct {
	client *redis.Client
}

// New connects to Redis using a connection URL and verifies the connection.
func New(ctx context.Context, redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, errors.Join(fmt.Errorf("ping redis: %w", err), client.Close())
	}
	return &Store{client: client}, nil
}

// NewWithClient wraps an existing Redis client. The caller retains ownership
// of the client; Close becomes a no-op for the connection.
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Load implements session.Store.
func (s *Store) Load(ctx context.Context, token string) (*session.Session, error) {
	data, err := s.client.Get(ctx, keyPrefix+token).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}

	sess := session.New(token)
	sess.UserID = rec.UserID
	if rec.Values != nil {
		sess.Values = rec.Values
	}
	return sess, nil
}

// Save implements session.Store.
func (s *Store) Save(ctx context.Context, sess *session.Session, ttl time.Duration) error {
	data, err := json.Marshal(record{UserID: sess.UserID, Values: sess.Values})
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+sess.Token, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Delete implements session.Store.
func (s *Store) Delete(ctx context.Context, token string) error {
	if err := s.client.Del(ctx, keyPrefix+token).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Healthcheck verifies the Redis connection.
func (s *Store) Healthcheck(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close releases the underlying Redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
