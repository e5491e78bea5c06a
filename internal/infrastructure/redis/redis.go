package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/LavaJover/shvark-referral-service/internal/config"
	goredis "github.com/redis/go-redis/v9"
)

// Connect builds a client from either a redis:// URL or host:port and pings it.
func Connect(ctx context.Context, cfg config.RedisService) (*goredis.Client, error) {
	var opts *goredis.Options
	if strings.HasPrefix(cfg.Addr, "redis://") || strings.HasPrefix(cfg.Addr, "rediss://") {
		parsed, err := goredis.ParseURL(cfg.Addr)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &goredis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}
