package redis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryKeyStore struct {
	mu   sync.Mutex
	keys map[string]time.Duration
	err  error
}

func newMemoryKeyStore() *memoryKeyStore {
	return &memoryKeyStore{keys: make(map[string]time.Duration)}
}

func (s *memoryKeyStore) SetNX(_ context.Context, key string, _ interface{}, expiration time.Duration) *goredis.BoolCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return goredis.NewBoolResult(false, s.err)
	}
	if _, ok := s.keys[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	s.keys[key] = expiration
	return goredis.NewBoolResult(true, nil)
}

func (s *memoryKeyStore) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.keys[k]; ok {
			delete(s.keys, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func TestDeduplicator_MarksOnce(t *testing.T) {
	store := newMemoryKeyStore()
	d := &Deduplicator{client: store, ttl: time.Hour}
	ctx := context.Background()

	first, err := d.MarkProcessed(ctx, "rewards", "ev-1")
	require.NoError(t, err)
	assert.True(t, first)

	second, err := d.MarkProcessed(ctx, "rewards", "ev-1")
	require.NoError(t, err)
	assert.False(t, second)

	other, err := d.MarkProcessed(ctx, "audit", "ev-1")
	require.NoError(t, err)
	assert.True(t, other, "scopes are independent")

	assert.Equal(t, time.Hour, store.keys["referral:events:rewards:ev-1"])
}

func TestDeduplicator_Forget(t *testing.T) {
	store := newMemoryKeyStore()
	d := &Deduplicator{client: store, ttl: time.Minute}
	ctx := context.Background()

	_, err := d.MarkProcessed(ctx, "rewards", "ev-2")
	require.NoError(t, err)
	require.NoError(t, d.Forget(ctx, "rewards", "ev-2"))

	again, err := d.MarkProcessed(ctx, "rewards", "ev-2")
	require.NoError(t, err)
	assert.True(t, again)
}

func TestDeduplicator_PropagatesError(t *testing.T) {
	store := newMemoryKeyStore()
	store.err = errors.New("connection refused")
	d := &Deduplicator{client: store, ttl: time.Minute}

	_, err := d.MarkProcessed(context.Background(), "rewards", "ev-3")
	assert.Error(t, err)
}
