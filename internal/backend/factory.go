package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Constructor создает клиент для конкретного драйвера
type Constructor func(s Settings) (Client, error)

// Factory лениво создает клиент и переиспользует его, пока
// сигнатура конфигурации (драйвер, URL, ключ) не изменилась.
type Factory struct {
	log          *slog.Logger
	source       Source
	constructors map[string]Constructor

	mu     sync.Mutex
	sig    string
	client Client
}

func NewFactory(log *slog.Logger, source Source, constructors map[string]Constructor) *Factory {
	return &Factory{
		log:          log,
		source:       source,
		constructors: constructors,
	}
}

func (f *Factory) Configured() bool {
	_, ok := f.source.Settings()
	return ok
}

func (f *Factory) Client() (Client, error) {
	const op = "backend.Factory.Client"

	s, ok := f.source.Settings()
	if !ok {
		return nil, ErrNotConfigured
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	sig := s.signature()
	if f.client != nil && f.sig == sig {
		return f.client, nil
	}

	ctor, ok := f.constructors[s.driver()]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnknownDriver, s.driver())
	}

	c, err := ctor(s)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if closer, ok := f.client.(interface{ Close() }); ok {
		closer.Close()
	}

	f.log.Info("backend client created",
		slog.String("op", op),
		slog.String("driver", s.driver()),
		slog.String("url", s.URL),
	)

	f.sig = sig
	f.client = c

	return c, nil
}

// Close закрывает текущий клиент, если он держит ресурсы (пул соединений)
func (f *Factory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if closer, ok := f.client.(interface{ Close() }); ok {
		closer.Close()
	}
	f.client = nil
	f.sig = ""
}

// WaitForClient опрашивает фабрику с интервалом, пока не появится
// клиент или не истечет timeout.
func WaitForClient(ctx context.Context, f *Factory, timeout, interval time.Duration) (Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if c, err := f.Client(); err == nil {
			return c, nil
		}

		select {
		case <-ctx.Done():
			return nil, ErrUnavailable
		case <-ticker.C:
		}
	}
}
