package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mpsite/internal/storage"

	goredis "github.com/redis/go-redis/v9"
)

const DefaultPrefix = "mpsite:"

const scanCount = 100

// Client общий кэш страниц и данных для нескольких инстансов
type Client struct {
	*goredis.Client
	prefix string
}

func NewClient(addr, password string, db int, prefix string) *Client {
	return NewWithClient(goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), prefix)
}

func NewWithClient(c *goredis.Client, prefix string) *Client {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Client{Client: c, prefix: prefix}
}

func (c *Client) key(k string) string {
	return c.prefix + k
}

func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}

func (c *Client) Close() error {
	return c.Client.Close()
}

func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	const op = "storage.redis.Get"

	b, err := c.Client.Get(ctx, c.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, storage.ErrCacheMiss
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return b, nil
}

func (c *Client) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	const op = "storage.redis.Set"

	if err := c.Client.Set(ctx, c.key(key), value, ttl).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	const op = "storage.redis.Delete"

	if err := c.Client.Del(ctx, c.key(key)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Flush удаляет только ключи со своим префиксом
func (c *Client) Flush(ctx context.Context) error {
	const op = "storage.redis.Flush"

	var cursor uint64
	for {
		keys, next, err := c.Client.Scan(ctx, cursor, c.prefix+"*", scanCount).Result()
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		if len(keys) > 0 {
			if err := c.Client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("%s: %w", op, err)
			}
		}

		if next == 0 {
			return nil
		}
		cursor = next
	}
}
