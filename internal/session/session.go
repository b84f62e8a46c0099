// Package session resolves dashboard sessions stored in Redis.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/dentaldesk/config"
	"github.com/Alijeyrad/dentaldesk/pkg/reqctx"
)

var (
	ErrNotFound    = errors.New("session not found")
	ErrInvalidRole = errors.New("session has an unknown role")
)

const DefaultKeyPrefix = "session:"

// Store looks up sessions by id.
type Store interface {
	Lookup(ctx context.Context, id string) (*reqctx.Session, error)
}

// Client is the part of the Redis API the store uses.
type Client interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// record is the JSON value stored under a session key.
type record struct {
	UserID string      `json:"user_id"`
	Name   string      `json:"name,omitempty"`
	Role   reqctx.Role `json:"role"`
}

type RedisStore struct {
	rdb    Client
	prefix string
}

func NewRedisStore(rdb Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func NewFromCentral(rdb Client, cfg config.SessionConfig) *RedisStore {
	return NewRedisStore(rdb, cfg.KeyPrefix)
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

func (s *RedisStore) Lookup(ctx context.Context, id string) (*reqctx.Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	raw, err := s.rdb.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("session lookup: %w", err)
	}
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("session %s: decode: %w", id, err)
	}
	if !rec.Role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, rec.Role)
	}
	return &reqctx.Session{ID: id, UserID: rec.UserID, Name: rec.Name, Role: rec.Role}, nil
}

// Open stores a new session and returns it with a fresh id.
func (s *RedisStore) Open(ctx context.Context, userID, name string, role reqctx.Role, ttl time.Duration) (*reqctx.Session, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	raw, err := json.Marshal(record{UserID: userID, Name: name, Role: role})
	if err != nil {
		return nil, err
	}
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, s.key(id), raw, ttl).Err(); err != nil {
		return nil, fmt.Errorf("session open: %w", err)
	}
	return &reqctx.Session{ID: id, UserID: userID, Name: name, Role: role}, nil
}

func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("session revoke: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
