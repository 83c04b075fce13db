package storage

import (
	"context"
	"errors"
	"time"
)

var (
	ErrCacheMiss    = errors.New("cache miss")
	ErrFileNotFound = errors.New("file not found")
	ErrInvalidName  = errors.New("invalid file name")
)

// Cache хранилище отрисованных страниц и legacy-данных.
// Get возвращает ErrCacheMiss, если ключа нет или он истек.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Flush(ctx context.Context) error
}
