package memory

import (
	"context"
	"time"

	"mpsite/internal/storage"

	gocache "github.com/patrickmn/go-cache"
)

// Cache кэш в памяти процесса
type Cache struct {
	c *gocache.Cache
}

func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{c: gocache.New(defaultTTL, cleanupInterval)}
}

func (m *Cache) Get(_ context.Context, key string) ([]byte, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, storage.ErrCacheMiss
	}

	b, ok := v.([]byte)
	if !ok {
		return nil, storage.ErrCacheMiss
	}

	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// Set ttl == 0 означает срок по умолчанию
func (m *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}

	b := make([]byte, len(value))
	copy(b, value)
	m.c.Set(key, b, ttl)

	return nil
}

func (m *Cache) Delete(_ context.Context, key string) error {
	m.c.Delete(key)
	return nil
}

func (m *Cache) Flush(_ context.Context) error {
	m.c.Flush()
	return nil
}

func (m *Cache) Len() int {
	return m.c.ItemCount()
}
