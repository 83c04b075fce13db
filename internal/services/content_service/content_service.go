package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"mpsite/internal/backend"
	"mpsite/internal/domain/models"
	"mpsite/internal/lib/logger/sl"
	"mpsite/internal/metrics"
)

const defaultOrderField = "order"

var (
	ErrNotConfigured   = errors.New("content backend not configured")
	ErrNoValidSource   = errors.New("no valid source")
	ErrNoDestination   = errors.New("no destination available")
	ErrNoCandidates    = errors.New("no candidate sources")
	ErrUnknownCategory = errors.New("unknown category")
)

// SourceError источник существует, но чтение или запись завершились ошибкой.
// Перебор кандидатов на такой ошибке прекращается.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

type Outcome string

const (
	OutcomeOK              Outcome = "ok"
	OutcomeMissingRelation Outcome = "missing_relation"
	OutcomeMissingOrder    Outcome = "missing_order_column"
	OutcomeError           Outcome = "error"
)

// Attempt одна попытка чтения кандидата
type Attempt struct {
	Source  string  `json:"source"`
	Ordered bool    `json:"ordered"`
	Outcome Outcome `json:"outcome"`
	Rows    int     `json:"rows"`
	Error   string  `json:"error,omitempty"`
}

// Resolution итог перебора кандидатов
type Resolution struct {
	Category models.Category `json:"category"`
	Source   string          `json:"source,omitempty"`
	Rows     []backend.Row   `json:"-"`
	Attempts []Attempt       `json:"attempts"`
}

type ClientProvider interface {
	Client() (backend.Client, error)
	Configured() bool
}

type ContentService struct {
	log      *slog.Logger
	provider ClientProvider
	sources  Sources
	artist   string
}

func NewContentService(log *slog.Logger, provider ClientProvider, sources Sources, artist string) *ContentService {
	if sources == nil {
		sources = DefaultSources()
	}

	return &ContentService{
		log:      log,
		provider: provider,
		sources:  sources,
		artist:   artist,
	}
}

func (s *ContentService) Configured() bool {
	return s.provider != nil && s.provider.Configured()
}

func (s *ContentService) client() (backend.Client, error) {
	if s.provider == nil {
		return nil, ErrNotConfigured
	}

	c, err := s.provider.Client()
	if err != nil {
		if errors.Is(err, backend.ErrNotConfigured) {
			return nil, ErrNotConfigured
		}
		return nil, err
	}

	return c, nil
}

// walk перебирает кандидатов строго по порядку. Первый источник, ответивший
// без "missing relation", выигрывает, даже если строк ноль.
func (s *ContentService) walk(ctx context.Context, q models.ContentQuery) (*Resolution, error) {
	const op = "services.ContentService.walk"

	log := s.log.With(
		slog.String("op", op),
		slog.String("category", string(q.Category)),
	)

	res := &Resolution{Category: q.Category, Attempts: []Attempt{}}

	if len(q.Candidates) == 0 {
		return res, fmt.Errorf("%s: %w", op, ErrNoCandidates)
	}

	client, err := s.client()
	if err != nil {
		s.observe(q.Category, "not_configured")
		return res, fmt.Errorf("%s: %w", op, err)
	}

	var last error
	for _, cand := range q.Candidates {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("%s: %w", op, err)
		}

		rows, err := s.attempt(ctx, client, q, cand, res)
		if err == nil {
			res.Source = cand.Name
			res.Rows = rows
			s.observe(q.Category, "ok")
			log.Debug("source resolved", slog.String("source", cand.Name), slog.Int("rows", len(rows)))
			return res, nil
		}

		last = err
		if IsMissingRelation(err) {
			log.Debug("candidate missing", slog.String("source", cand.Name))
			continue
		}

		s.observe(q.Category, "source_error")
		log.Warn("source error", slog.String("source", cand.Name), sl.Err(err))
		return res, fmt.Errorf("%s: %w", op, &SourceError{Source: cand.Name, Err: err})
	}

	s.observe(q.Category, "no_valid_source")
	log.Warn("no valid source", slog.Any("candidates", q.Names()))
	return res, fmt.Errorf("%s: %w: %w", op, ErrNoValidSource, last)
}

// attempt читает кандидата с сортировкой и, если не хватает только колонки
// сортировки, повторяет чтение один раз без нее.
func (s *ContentService) attempt(ctx context.Context, client backend.Client, q models.ContentQuery, cand models.Candidate, res *Resolution) ([]backend.Row, error) {
	query := backend.Query{
		Source:  cand.Name,
		Filters: toFilters(q.FilterFor(cand)),
	}

	ordered := q.OrderField != ""
	if ordered {
		query.Order = &backend.Order{Column: q.OrderField}
	}

	rows, err := client.Query(ctx, query)
	if err != nil && ordered && IsMissingColumn(err, q.OrderField) {
		res.Attempts = append(res.Attempts, Attempt{
			Source:  cand.Name,
			Ordered: true,
			Outcome: OutcomeMissingOrder,
			Error:   err.Error(),
		})

		query.Order = nil
		ordered = false
		rows, err = client.Query(ctx, query)
	}

	a := Attempt{Source: cand.Name, Ordered: ordered, Outcome: OutcomeOK, Rows: len(rows)}
	switch {
	case err == nil:
	case IsMissingRelation(err):
		a.Outcome, a.Error = OutcomeMissingRelation, err.Error()
	default:
		a.Outcome, a.Error = OutcomeError, err.Error()
	}
	res.Attempts = append(res.Attempts, a)

	return rows, err
}

func (s *ContentService) observe(c models.Category, outcome string) {
	metrics.ContentResolutionsTotal.WithLabelValues(string(c), outcome).Inc()
}

func toFilters(f *models.Filter) []backend.Filter {
	if f == nil || f.Column == "" {
		return nil
	}
	if len(f.Values) == 1 {
		return []backend.Filter{backend.Eq(f.Column, f.Values[0])}
	}
	return []backend.Filter{backend.In(f.Column, f.Values...)}
}

// Probe выполняет перебор и возвращает журнал попыток
func (s *ContentService) Probe(ctx context.Context, q models.ContentQuery) (*Resolution, error) {
	return s.walk(ctx, q)
}

// Resolve разрешает запрос и нормализует строки нормализатором категории
func (s *ContentService) Resolve(ctx context.Context, q models.ContentQuery) (any, error) {
	const op = "services.ContentService.Resolve"

	norm, ok := s.normalizers()[q.Category]
	if !ok {
		return nil, fmt.Errorf("%s: %w: %s", op, ErrUnknownCategory, q.Category)
	}

	// блоки без ключей: пустой результат без запроса к бэкенду
	if q.Category == models.CategoryBlocks && q.Filter != nil && len(q.Filter.Values) == 0 {
		return models.TextBlocks{}, nil
	}

	res, err := s.walk(ctx, q)
	if err != nil {
		return nil, err
	}

	return norm(q, res.Rows), nil
}

func (s *ContentService) normalizers() map[models.Category]func(models.ContentQuery, []backend.Row) any {
	return map[models.Category]func(models.ContentQuery, []backend.Row) any{
		models.CategoryReleases: func(_ models.ContentQuery, rows []backend.Row) any {
			return sortedReleases(rows)
		},
		models.CategoryLabels: func(_ models.ContentQuery, rows []backend.Row) any {
			return sorted(rows, normalizeLabel, func(l models.Label) *int { return l.Order })
		},
		models.CategoryMedia: func(q models.ContentQuery, rows []backend.Row) any {
			return sorted(rows, normalizeMedia(mediaKindOf(q)), func(m models.MediaItem) *int { return m.Order })
		},
		models.CategoryPresskit: func(_ models.ContentQuery, rows []backend.Row) any {
			return sorted(rows, normalizePresskitAsset(s.artist), func(a models.PresskitAsset) *int { return a.Order })
		},
		models.CategoryClinics: func(_ models.ContentQuery, rows []backend.Row) any {
			return sorted(rows, normalizeClinic, func(c models.Clinic) *int { return c.Order })
		},
		models.CategoryBlocks: func(_ models.ContentQuery, rows []backend.Row) any {
			return normalizeBlocks(rows)
		},
		models.CategoryNav: func(_ models.ContentQuery, rows []backend.Row) any {
			return sorted(rows, normalizeNavItem, func(n models.NavItem) *int { return n.Order })
		},
		models.CategoryLinks: func(_ models.ContentQuery, rows []backend.Row) any {
			return sorted(rows, normalizeSiteLink, func(l models.SiteLink) *int { return l.Order })
		},
	}
}

func sorted[T any](rows []backend.Row, norm func(backend.Row, int) T, order func(T) *int) []T {
	items := normalizeAll(rows, norm)
	sortByOrder(items, order, nil)
	return items
}

func sortedReleases(rows []backend.Row) []models.Release {
	items := normalizeAll(rows, normalizeRelease)
	sortByOrder(items, func(r models.Release) *int { return r.Order }, releaseTie)
	return items
}

func mediaKindOf(q models.ContentQuery) models.MediaKind {
	for _, c := range q.Candidates {
		if f := q.FilterFor(c); f != nil && f.Column == "kind" && len(f.Values) > 0 {
			return models.ParseMediaKind(fmt.Sprint(f.Values[0]))
		}
	}
	return ""
}
