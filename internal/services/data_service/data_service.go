package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"
	"time"

	"mpsite/internal/lib/logger/sl"
	"mpsite/internal/metrics"
	"mpsite/internal/storage"
	"mpsite/internal/storage/filestorage"
)

const (
	DefaultMaxAge   = 30 * time.Minute
	DefaultAttempts = 2
	DefaultStaleTTL = 7 * 24 * time.Hour
)

const (
	FromCache   = "cache"
	FromNetwork = "network"
	FromStale   = "stale-cache"
)

var (
	ErrInvalidName   = errors.New("invalid data name")
	ErrInvalidFormat = errors.New("invalid data format")
	ErrRejected      = errors.New("data rejected by validator")
	ErrUnavailable   = errors.New("data unavailable")
)

// Validator дополнительная проверка набора, false - набор отвергнут
type Validator func(items []json.RawMessage) bool

// Result загруженный набор и откуда он взят
type Result struct {
	Name      string            `json:"name"`
	Data      []json.RawMessage `json:"data"`
	From      string            `json:"from"`
	FetchedAt time.Time         `json:"fetched_at"`
}

type entry struct {
	T    int64             `json:"t"`
	Data []json.RawMessage `json:"data"`
}

type DataService struct {
	log       *slog.Logger
	fetcher   Fetcher
	cache     storage.Cache
	snapshots filestorage.FileStorage
	maxAge    time.Duration
	staleTTL  time.Duration
	attempts  int
	now       func() time.Time

	mu    sync.Mutex
	known map[string]struct{}
}

type Option func(*DataService)

func WithMaxAge(d time.Duration) Option {
	return func(s *DataService) {
		if d > 0 {
			s.maxAge = d
		}
	}
}

func WithAttempts(n int) Option {
	return func(s *DataService) {
		if n > 0 {
			s.attempts = n
		}
	}
}

// WithSnapshots последний удачный набор дублируется на диск
// и переживает рестарт процесса
func WithSnapshots(files filestorage.FileStorage) Option {
	return func(s *DataService) { s.snapshots = files }
}

// WithNames наборы, которые Purge очищает, даже если они еще не загружались
func WithNames(names ...string) Option {
	return func(s *DataService) {
		for _, n := range names {
			s.remember(n)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *DataService) { s.now = now }
}

func NewDataService(log *slog.Logger, fetcher Fetcher, cache storage.Cache, opts ...Option) *DataService {
	s := &DataService{
		log:      log,
		fetcher:  fetcher,
		cache:    cache,
		maxAge:   DefaultMaxAge,
		staleTTL: DefaultStaleTTL,
		attempts: DefaultAttempts,
		now:      time.Now,
		known:    make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func cacheKey(name string) string {
	return "data:" + name
}

// Load свежий кэш -> сеть (несколько попыток) -> устаревший кэш
func (s *DataService) Load(ctx context.Context, name string, validate Validator) (*Result, error) {
	const op = "data_service.Load"

	log := s.log.With(
		slog.String("op", op),
		slog.String("name", name),
	)

	if !filestorage.ValidName(name) {
		return nil, fmt.Errorf("%s: %q: %w", op, name, ErrInvalidName)
	}

	cached := s.cached(ctx, name)
	if cached != nil && s.now().Sub(time.UnixMilli(cached.T)) < s.maxAge {
		metrics.CacheLookupsTotal.WithLabelValues("legacy", FromCache).Inc()
		return s.result(name, cached, FromCache), nil
	}

	var lastErr error
	for i := 0; i < s.attempts; i++ {
		items, err := s.fetch(ctx, name, validate)
		if err == nil {
			e := &entry{T: s.now().UnixMilli(), Data: items}
			s.store(ctx, name, e)
			metrics.CacheLookupsTotal.WithLabelValues("legacy", FromNetwork).Inc()
			return s.result(name, e, FromNetwork), nil
		}

		lastErr = err
		log.Warn("fetch attempt failed", slog.Int("attempt", i+1), sl.Err(err))

		if ctx.Err() != nil {
			break
		}
	}

	if cached == nil {
		cached = s.snapshot(ctx, name)
	}
	if cached != nil {
		log.Info("serving stale data")
		metrics.CacheLookupsTotal.WithLabelValues("legacy", FromStale).Inc()
		return s.result(name, cached, FromStale), nil
	}

	metrics.CacheLookupsTotal.WithLabelValues("legacy", "miss").Inc()

	if lastErr == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrUnavailable)
	}
	return nil, fmt.Errorf("%s: %w: %w", op, ErrUnavailable, lastErr)
}

func (s *DataService) fetch(ctx context.Context, name string, validate Validator) ([]json.RawMessage, error) {
	body, err := s.fetcher.Fetch(ctx, name)
	if err != nil {
		return nil, err
	}

	items, err := decodeArray(body)
	if err != nil {
		return nil, err
	}

	if validate != nil && !validate(items) {
		return nil, ErrRejected
	}

	return items, nil
}

// decodeArray принимает только JSON-массив, null и объекты отвергаются
func decodeArray(body []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrInvalidFormat
	}

	var items []json.RawMessage
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if items == nil {
		items = []json.RawMessage{}
	}

	return items, nil
}

func (s *DataService) cached(ctx context.Context, name string) *entry {
	raw, err := s.cache.Get(ctx, cacheKey(name))
	if err != nil {
		if !errors.Is(err, storage.ErrCacheMiss) {
			s.log.Warn("legacy cache read failed", slog.String("name", name), sl.Err(err))
		}
		return nil
	}
	return decodeEntry(raw)
}

func (s *DataService) snapshot(ctx context.Context, name string) *entry {
	if s.snapshots == nil {
		return nil
	}
	raw, err := s.snapshots.Read(ctx, name)
	if err != nil {
		return nil
	}
	return decodeEntry(raw)
}

func decodeEntry(raw []byte) *entry {
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil || e.Data == nil {
		return nil
	}
	return &e
}

func (s *DataService) remember(name string) {
	s.mu.Lock()
	s.known[name] = struct{}{}
	s.mu.Unlock()
}

func (s *DataService) store(ctx context.Context, name string, e *entry) {
	raw, err := json.Marshal(e)
	if err != nil {
		return
	}
	s.remember(name)

	if err := s.cache.Set(ctx, cacheKey(name), raw, s.staleTTL); err != nil {
		s.log.Warn("legacy cache write failed", slog.String("name", name), sl.Err(err))
	}

	if s.snapshots != nil {
		if _, _, err := s.snapshots.Save(ctx, name, raw); err != nil {
			s.log.Warn("legacy snapshot write failed", slog.String("name", name), sl.Err(err))
		}
	}
}

func (s *DataService) result(name string, e *entry, from string) *Result {
	return &Result{
		Name:      name,
		Data:      e.Data,
		From:      from,
		FetchedAt: time.UnixMilli(e.T).UTC(),
	}
}

// Clear удаляет набор из кэша и снимков
func (s *DataService) Clear(ctx context.Context, name string) error {
	const op = "data_service.Clear"

	if !filestorage.ValidName(name) {
		return fmt.Errorf("%s: %w", op, ErrInvalidName)
	}

	if err := s.cache.Delete(ctx, cacheKey(name)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if s.snapshots != nil {
		if err := s.snapshots.Delete(ctx, name); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	return nil
}

// Purge очищает все известные наборы: заданные WithNames и загруженные
func (s *DataService) Purge(ctx context.Context) (int, error) {
	const op = "data_service.Purge"

	s.mu.Lock()
	names := make([]string, 0, len(s.known))
	for n := range s.known {
		names = append(names, n)
	}
	s.mu.Unlock()
	slices.Sort(names)

	n := 0
	for _, name := range names {
		if err := s.Clear(ctx, name); err != nil {
			return n, fmt.Errorf("%s: %w", op, err)
		}
		n++
	}

	s.log.Info("legacy data purged", slog.String("op", op), slog.Int("sets", n))

	return n, nil
}
