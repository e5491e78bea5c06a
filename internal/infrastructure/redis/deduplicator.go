package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const dedupeKeyPrefix = "referral:events:"

type keyStore interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.BoolCmd
	Del(ctx context.Context, keys ...string) *goredis.IntCmd
}

// Deduplicator marks consumed event ids so redelivered messages are skipped.
type Deduplicator struct {
	client keyStore
	ttl    time.Duration
}

func NewDeduplicator(client *goredis.Client, ttl time.Duration) *Deduplicator {
	return &Deduplicator{client: client, ttl: ttl}
}

func (d *Deduplicator) MarkProcessed(ctx context.Context, scope, eventID string) (bool, error) {
	return d.client.SetNX(ctx, dedupeKey(scope, eventID), time.Now().Unix(), d.ttl).Result()
}

// Forget releases a mark so that a failed handler can see the event again.
func (d *Deduplicator) Forget(ctx context.Context, scope, eventID string) error {
	return d.client.Del(ctx, dedupeKey(scope, eventID)).Err()
}

func dedupeKey(scope, eventID string) string {
	return dedupeKeyPrefix + scope + ":" + eventID
}
