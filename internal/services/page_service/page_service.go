package services

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strconv"
	"time"

	"mpsite/internal/domain/models"
	"mpsite/internal/lib/logger/sl"
	"mpsite/internal/render"
	"mpsite/internal/storage"
)

const (
	DefaultReleaseAutoplay  = 9000 * time.Millisecond
	DefaultPresskitAutoplay = 5500 * time.Millisecond
	DefaultCacheTTL         = 5 * time.Minute
)

var ErrPageNotFound = errors.New("page not found")

// Content источник нормализованного контента по категориям
type Content interface {
	Configured() bool
	Releases(ctx context.Context) ([]models.Release, error)
	Labels(ctx context.Context) ([]models.Label, error)
	Media(ctx context.Context, kind models.MediaKind) ([]models.MediaItem, error)
	PresskitAssets(ctx context.Context) ([]models.PresskitAsset, error)
	Clinics(ctx context.Context) ([]models.Clinic, error)
	Blocks(ctx context.Context, keys []string) (models.TextBlocks, error)
	NavItems(ctx context.Context) ([]models.NavItem, error)
	SiteLinks(ctx context.Context) ([]models.SiteLink, error)
}

type Options struct {
	ReleaseAutoplay  time.Duration
	PresskitAutoplay time.Duration
	CacheTTL         time.Duration
}

type PageService struct {
	log     *slog.Logger
	pages   fs.FS
	names   []string
	content Content
	cache   storage.Cache
	opts    Options
}

func NewPageService(log *slog.Logger, pages fs.FS, names []string, content Content, cache storage.Cache, opts Options) *PageService {
	if opts.ReleaseAutoplay == 0 {
		opts.ReleaseAutoplay = DefaultReleaseAutoplay
	}
	if opts.PresskitAutoplay == 0 {
		opts.PresskitAutoplay = DefaultPresskitAutoplay
	}
	if opts.CacheTTL == 0 {
		opts.CacheTTL = DefaultCacheTTL
	}

	return &PageService{
		log:     log,
		pages:   pages,
		names:   names,
		content: content,
		cache:   cache,
		opts:    opts,
	}
}

func (s *PageService) Names() []string {
	return s.names
}

func (s *PageService) known(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}
	return false
}

func cacheKey(name string, reducedMotion bool) string {
	return "page:" + name + ":" + strconv.FormatBool(reducedMotion)
}

// Render отдает гидрированную страницу. Полностью удачный рендер кэшируется,
// после сбоя секции следующий запрос пробует бэкенд снова.
func (s *PageService) Render(ctx context.Context, name string, reducedMotion bool) ([]byte, *Report, error) {
	const op = "page_service.Render"

	log := s.log.With(
		slog.String("op", op),
		slog.String("page", name),
	)

	if !s.known(name) {
		return nil, nil, fmt.Errorf("%s: %s: %w", op, name, ErrPageNotFound)
	}

	key := cacheKey(name, reducedMotion)
	if s.cache != nil {
		if b, err := s.cache.Get(ctx, key); err == nil {
			return b, &Report{Page: name, Cached: true}, nil
		} else if !errors.Is(err, storage.ErrCacheMiss) {
			log.Warn("page cache read failed", sl.Err(err))
		}
	}

	raw, err := fs.ReadFile(s.pages, name+".html")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("%s: %s: %w", op, name, ErrPageNotFound)
		}
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	doc, err := render.ParseBytes(raw)
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	report := s.Hydrate(ctx, doc, reducedMotion)
	report.Page = name

	out, err := doc.Bytes()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", op, err)
	}

	if s.cache != nil && report.Configured && report.Failed() == 0 {
		if err := s.cache.Set(ctx, key, out, s.opts.CacheTTL); err != nil {
			log.Warn("page cache write failed", sl.Err(err))
		}
	}

	return out, report, nil
}

// Purge удаляет все варианты страниц из кэша
func (s *PageService) Purge(ctx context.Context) (int, error) {
	const op = "page_service.Purge"

	if s.cache == nil {
		return 0, nil
	}

	n := 0
	for _, name := range s.names {
		for _, rm := range []bool{false, true} {
			if err := s.cache.Delete(ctx, cacheKey(name, rm)); err != nil {
				return n, fmt.Errorf("%s: %w", op, err)
			}
			n++
		}
	}

	s.log.Info("page cache purged", slog.String("op", op), slog.Int("keys", n))

	return n, nil
}
