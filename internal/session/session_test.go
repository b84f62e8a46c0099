package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/dentaldesk/pkg/reqctx"
)

type memClient struct {
	mu   sync.Mutex
	data map[string]string
	ttl  map[string]time.Duration
	err  error
}

func newMemClient() *memClient {
	return &memClient{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (m *memClient) Get(_ context.Context, key string) *redis.StringCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return redis.NewStringResult("", m.err)
	}
	v, ok := m.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (m *memClient) Set(_ context.Context, key string, value any, exp time.Duration) *redis.StatusCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		m.data[key] = string(v)
	case string:
		m.data[key] = v
	}
	m.ttl[key] = exp
	return redis.NewStatusResult("OK", nil)
}

func (m *memClient) Del(_ context.Context, keys ...string) *redis.IntCmd {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := m.data[k]; ok {
			delete(m.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestLookup(t *testing.T) {
	rdb := newMemClient()
	rdb.data["session:abc"] = `{"user_id":"u1","name":"Dr. Rahimi","role":"dentist"}`
	rdb.data["session:bad-role"] = `{"user_id":"u2","role":"admin"}`
	rdb.data["session:garbled"] = `{`
	store := NewRedisStore(rdb, "")

	s, err := store.Lookup(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, &reqctx.Session{ID: "abc", UserID: "u1", Name: "Dr. Rahimi", Role: reqctx.RoleDentist}, s)

	_, err = store.Lookup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Lookup(context.Background(), "bad-role")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = store.Lookup(context.Background(), "garbled")
	assert.Error(t, err)
}

func TestLookupSurfacesRedisErrors(t *testing.T) {
	rdb := newMemClient()
	rdb.err = errors.New("connection refused")
	store := NewRedisStore(rdb, "")

	_, err := store.Lookup(context.Background(), "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestOpenAndRevoke(t *testing.T) {
	rdb := newMemClient()
	store := NewRedisStore(rdb, "dd:")

	s, err := store.Open(context.Background(), "u9", "Sara", reqctx.RoleReceptionist, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, s.ID)
	assert.Equal(t, time.Hour, rdb.ttl["dd:"+s.ID])

	got, err := store.Lookup(context.Background(), s.ID)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	require.NoError(t, store.Revoke(context.Background(), s.ID))
	assert.ErrorIs(t, store.Revoke(context.Background(), s.ID), ErrNotFound)

	_, err = store.Open(context.Background(), "u9", "", reqctx.Role("owner"), time.Hour)
	assert.ErrorIs(t, err, ErrInvalidRole)
}
