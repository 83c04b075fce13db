package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	httpapp "mpsite/internal/app/http"
	"mpsite/internal/backend"
	"mpsite/internal/config"
	"mpsite/internal/domain/models"
	"mpsite/internal/lib/logger/sl"
	"mpsite/internal/services/auth"
	booking "mpsite/internal/services/booking_service"
	content "mpsite/internal/services/content_service"
	data "mpsite/internal/services/data_service"
	pages "mpsite/internal/services/page_service"
	"mpsite/internal/storage"
	"mpsite/internal/storage/filestorage"
	"mpsite/internal/storage/memory"
	"mpsite/internal/storage/postgresql"
	"mpsite/internal/storage/postgrest"
	"mpsite/internal/storage/redis"
	httprouters "mpsite/internal/transport/http"
	"mpsite/web"
)

type App struct {
	HTTPServer *httpapp.Server
	Factory    *backend.Factory
	Content    *content.ContentService

	log     *slog.Logger
	closers []func() error
}

// Source цепочка настроек бэкенда: supabase, затем backend, затем meta-теги страниц
func Source(cfg *config.Config) backend.Source {
	return backend.Chain{
		backend.Static(backend.Settings{
			Driver: backend.DriverPostgREST,
			URL:    cfg.Supabase.URL,
			Key:    cfg.Supabase.AnonKey,
		}),
		backend.Static(backend.Settings{
			Driver: cfg.Backend.Driver,
			URL:    cfg.Backend.URL,
			Key:    cfg.Backend.Key,
		}),
		backend.MetaTags(web.PageBytes()...),
	}
}

// NewFactory фабрика клиентов обоих драйверов с метриками
func NewFactory(ctx context.Context, log *slog.Logger, cfg *config.Config) *backend.Factory {
	httpClient := &http.Client{Timeout: 15 * time.Second}

	return backend.NewFactory(log, Source(cfg), map[string]backend.Constructor{
		backend.DriverPostgREST: withMetrics(postgrest.Constructor(httpClient)),
		backend.DriverPostgres:  withMetrics(postgresql.Constructor(ctx)),
	})
}

func withMetrics(ctor backend.Constructor) backend.Constructor {
	return func(s backend.Settings) (backend.Client, error) {
		c, err := ctor(s)
		if err != nil {
			return nil, err
		}
		return backend.WithMetrics(c), nil
	}
}

// NewContentService резолвер со списками источников из конфигурации
func NewContentService(log *slog.Logger, cfg *config.Config, factory *backend.Factory) *content.ContentService {
	return content.NewContentService(log, factory, content.DefaultSources().Merge(cfg.Sources), cfg.Content.Artist)
}

func New(log *slog.Logger, cfg *config.Config) *App {
	const op = "app.New"

	a := &App{log: log}

	factory := NewFactory(context.Background(), log, cfg)
	a.Factory = factory
	a.closers = append(a.closers, func() error { factory.Close(); return nil })

	if !factory.Configured() {
		log.Warn("backend not configured: pages are served with static content", slog.String("op", op))
	}

	contentService := NewContentService(log, cfg, factory)
	a.Content = contentService

	cache := a.newCache(cfg)

	pageService := pages.NewPageService(log, web.Pages(), web.PageNames, contentService, cache, pages.Options{
		ReleaseAutoplay:  cfg.Content.ReleaseAutoplay,
		PresskitAutoplay: cfg.Content.PresskitAutoplay,
		CacheTTL:         cfg.Cache.PageTTL,
	})

	dataService := data.NewDataService(log, a.newFetcher(cfg), cache, a.dataOptions(cfg)...)

	bookingService := booking.NewBookingService(log, contentService, cfg.Content.BookingEmail, cfg.Content.Artist)

	authService := auth.New(log, models.Admin{
		Username:     cfg.Admin.Username,
		PasswordHash: []byte(cfg.Admin.PasswordHash),
	}, cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)

	ready := func(ctx context.Context) error {
		if !factory.Configured() {
			return backend.ErrNotConfigured
		}
		_, err := backend.WaitForClient(ctx, factory, cfg.Content.WaitTimeout, cfg.Content.WaitInterval)
		return err
	}

	routers := httprouters.NewRouter(log, pageService, contentService, bookingService, dataService, authService, ready)

	var adminSecret []byte
	if authService.Enabled() {
		adminSecret = authService.Secret()
	}

	a.HTTPServer = httpapp.New(log, httpapp.Options{
		Host:           cfg.HTTP.Host,
		Port:           cfg.HTTP.Port,
		SessionSecret:  cfg.HTTP.SessionSecret,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		RequestTimeout: cfg.HTTP.RequestTimeout,
		AdminSecret:    adminSecret,
		PageNames:      web.PageNames,
		Static:         web.Static(),
	}, routers)

	return a
}

// newCache redis, если он задан и отвечает, иначе кэш в памяти процесса
func (a *App) newCache(cfg *config.Config) storage.Cache {
	const op = "app.newCache"

	log := a.log.With(slog.String("op", op))

	if cfg.Cache.Driver == "redis" && cfg.Redis.RedisAddr != "" {
		client := redis.NewClient(cfg.Redis.RedisAddr, cfg.Redis.RedisPassword, cfg.Redis.RedisDB, cfg.Redis.Prefix)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		err := client.HealthCheck(ctx)
		if err == nil {
			a.closers = append(a.closers, client.Close)
			log.Info("using redis cache", slog.String("addr", cfg.Redis.RedisAddr))
			return client
		}

		log.Warn("redis unavailable, using memory cache", sl.Err(err))
		_ = client.Close()
	}

	return memory.New(cfg.Cache.PageTTL, cfg.Cache.Cleanup)
}

// newFetcher хост старого сайта, локальный каталог или встроенные data/*.json
func (a *App) newFetcher(cfg *config.Config) data.Fetcher {
	const op = "app.newFetcher"

	log := a.log.With(slog.String("op", op))

	if cfg.Legacy.BaseURL != "" {
		f, err := data.NewHTTPFetcher(cfg.Legacy.BaseURL, nil)
		if err == nil {
			return f
		}
		log.Warn("legacy base url rejected", sl.Err(err))
	}

	if cfg.Legacy.Dir != "" {
		files, err := filestorage.NewLocalFileStorage(cfg.Legacy.Dir)
		if err == nil {
			return data.NewDirFetcher(files)
		}
		log.Warn("legacy dir unavailable", sl.Err(err))
	}

	return data.NewFSFetcher(web.Data(), "data")
}

func (a *App) dataOptions(cfg *config.Config) []data.Option {
	opts := []data.Option{
		data.WithMaxAge(cfg.Legacy.MaxAge),
		data.WithAttempts(cfg.Legacy.Attempts),
		data.WithNames(web.DataNames()...),
	}

	if cfg.Legacy.SnapshotDir != "" {
		files, err := filestorage.NewLocalFileStorage(cfg.Legacy.SnapshotDir)
		if err != nil {
			a.log.Warn("legacy snapshots disabled", slog.String("dir", cfg.Legacy.SnapshotDir), sl.Err(err))
		} else {
			opts = append(opts, data.WithSnapshots(files))
		}
	}

	return opts
}

// Stop останавливает сервер и освобождает клиентов
func (a *App) Stop() error {
	var errs []error

	if err := a.HTTPServer.Stop(); err != nil {
		errs = append(errs, err)
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
