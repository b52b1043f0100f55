package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/backoffice-api/pkg/config"
)

// NewRedis returns a configured Redis client shared by the session store and the content cache.
// Per-command timeouts are bounded by the caller's context; the client-level ones cap a hung connection.
func NewRedis(cfg config.RedisConfig, opTimeout time.Duration) (*redis.Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	if opTimeout <= 0 {
		opTimeout = 2 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  opTimeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}
