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

func (s *ContentService) ReleasesQuery() models.ContentQuery {
	return models.NewQuery(models.CategoryReleases, defaultOrderField, s.sources[SourceReleases]...)
}

func (s *ContentService) LabelsQuery() models.ContentQuery {
	return models.NewQuery(models.CategoryLabels, defaultOrderField, s.sources[SourceLabels]...)
}

// MediaQuery: сначала view по виду медиа, затем общая таблица с фильтром kind
func (s *ContentService) MediaQuery(kind models.MediaKind) models.ContentQuery {
	q := models.ContentQuery{Category: models.CategoryMedia, OrderField: defaultOrderField}

	var views []string
	switch kind {
	case models.MediaKindVideo:
		views = s.sources[SourceMediaVideos]
	case models.MediaKindMix:
		views = s.sources[SourceMediaMixes]
	}
	for _, v := range views {
		q.Candidates = append(q.Candidates, models.Candidate{Name: v})
	}

	for _, t := range s.sources[SourceMediaItems] {
		q.Candidates = append(q.Candidates, models.Candidate{Name: t, Filter: models.Eq("kind", string(kind))})
	}

	return q
}

func (s *ContentService) PresskitQuery() models.ContentQuery {
	return models.NewQuery(models.CategoryPresskit, defaultOrderField, s.sources[SourcePresskit]...)
}

func (s *ContentService) ClinicsQuery() models.ContentQuery {
	return models.NewQuery(models.CategoryClinics, defaultOrderField, s.sources[SourceClinics]...)
}

// BlocksQuery выбирает блоки по ключам, без сортировки
func (s *ContentService) BlocksQuery(keys []string) models.ContentQuery {
	q := models.NewQuery(models.CategoryBlocks, "", s.sources[SourceBlocks]...)

	values := make([]any, 0, len(keys))
	for _, k := range keys {
		values = append(values, k)
	}
	q.Filter = &models.Filter{Column: "key", Values: values}

	return q
}

func (s *ContentService) NavQuery() models.ContentQuery {
	return models.NewQuery(models.CategoryNav, defaultOrderField, s.sources[SourceNav]...)
}

func (s *ContentService) LinksQuery() models.ContentQuery {
	return models.NewQuery(models.CategoryLinks, defaultOrderField, s.sources[SourceLinks]...)
}

// Target категория, а для медиа еще и вид
type Target struct {
	Category models.Category
	Kind     models.MediaKind
}

// Targets все читаемые категории; медиа дважды, по виду. Лиды не читаются.
func Targets() []Target {
	var out []Target
	for _, c := range models.Categories() {
		switch c {
		case models.CategoryLeads:
			continue
		case models.CategoryMedia:
			out = append(out, Target{c, models.MediaKindVideo}, Target{c, models.MediaKindMix})
		default:
			out = append(out, Target{Category: c})
		}
	}
	return out
}

// QueryFor строит запрос категории для HTTP и CLI
func (s *ContentService) QueryFor(c models.Category, kind models.MediaKind, keys []string) (models.ContentQuery, error) {
	switch c {
	case models.CategoryReleases:
		return s.ReleasesQuery(), nil
	case models.CategoryLabels:
		return s.LabelsQuery(), nil
	case models.CategoryMedia:
		return s.MediaQuery(kind), nil
	case models.CategoryPresskit:
		return s.PresskitQuery(), nil
	case models.CategoryClinics:
		return s.ClinicsQuery(), nil
	case models.CategoryBlocks:
		return s.BlocksQuery(uniqueKeys(keys)), nil
	case models.CategoryNav:
		return s.NavQuery(), nil
	case models.CategoryLinks:
		return s.LinksQuery(), nil
	}
	return models.ContentQuery{}, fmt.Errorf("%w: %s", ErrUnknownCategory, c)
}

func (s *ContentService) Releases(ctx context.Context) ([]models.Release, error) {
	res, err := s.walk(ctx, s.ReleasesQuery())
	if err != nil {
		return nil, err
	}
	return sortedReleases(res.Rows), nil
}

func (s *ContentService) Labels(ctx context.Context) ([]models.Label, error) {
	res, err := s.walk(ctx, s.LabelsQuery())
	if err != nil {
		return nil, err
	}
	return sorted(res.Rows, normalizeLabel, func(l models.Label) *int { return l.Order }), nil
}

func (s *ContentService) Media(ctx context.Context, kind models.MediaKind) ([]models.MediaItem, error) {
	res, err := s.walk(ctx, s.MediaQuery(kind))
	if err != nil {
		return nil, err
	}
	return sorted(res.Rows, normalizeMedia(kind), func(m models.MediaItem) *int { return m.Order }), nil
}

func (s *ContentService) PresskitAssets(ctx context.Context) ([]models.PresskitAsset, error) {
	res, err := s.walk(ctx, s.PresskitQuery())
	if err != nil {
		return nil, err
	}
	return sorted(res.Rows, normalizePresskitAsset(s.artist), func(a models.PresskitAsset) *int { return a.Order }), nil
}

// PresskitPhotos только ассеты с URL изображения
func (s *ContentService) PresskitPhotos(ctx context.Context) ([]models.PresskitAsset, error) {
	assets, err := s.PresskitAssets(ctx)
	if err != nil {
		return nil, err
	}
	return Photos(assets), nil
}

// PresskitDownloads ассеты, которые не являются изображениями (zip, pdf)
func (s *ContentService) PresskitDownloads(ctx context.Context) ([]models.PresskitAsset, error) {
	assets, err := s.PresskitAssets(ctx)
	if err != nil {
		return nil, err
	}
	return Downloads(assets), nil
}

func Photos(assets []models.PresskitAsset) []models.PresskitAsset {
	out := []models.PresskitAsset{}
	for _, a := range assets {
		if a.IsPhoto() {
			out = append(out, a)
		}
	}
	return out
}

func Downloads(assets []models.PresskitAsset) []models.PresskitAsset {
	out := []models.PresskitAsset{}
	for _, a := range assets {
		if a.URL != "" && !a.IsPhoto() {
			out = append(out, a)
		}
	}
	return out
}

func (s *ContentService) Clinics(ctx context.Context) ([]models.Clinic, error) {
	res, err := s.walk(ctx, s.ClinicsQuery())
	if err != nil {
		return nil, err
	}
	return sorted(res.Rows, normalizeClinic, func(c models.Clinic) *int { return c.Order }), nil
}

// Blocks возвращает ключ -> текст. Отсутствующие ключи просто не попадают в map.
func (s *ContentService) Blocks(ctx context.Context, keys []string) (models.TextBlocks, error) {
	keys = uniqueKeys(keys)
	if len(keys) == 0 {
		return models.TextBlocks{}, nil
	}

	res, err := s.walk(ctx, s.BlocksQuery(keys))
	if err != nil {
		return nil, err
	}
	return normalizeBlocks(res.Rows), nil
}

func (s *ContentService) NavItems(ctx context.Context) ([]models.NavItem, error) {
	res, err := s.walk(ctx, s.NavQuery())
	if err != nil {
		return nil, err
	}
	return sorted(res.Rows, normalizeNavItem, func(n models.NavItem) *int { return n.Order }), nil
}

func (s *ContentService) SiteLinks(ctx context.Context) ([]models.SiteLink, error) {
	res, err := s.walk(ctx, s.LinksQuery())
	if err != nil {
		return nil, err
	}
	return sorted(res.Rows, normalizeSiteLink, func(l models.SiteLink) *int { return l.Order }), nil
}

// InsertLead пишет заявку в первую существующую таблицу из списка кандидатов
func (s *ContentService) InsertLead(ctx context.Context, lead models.Lead) (models.LeadReceipt, error) {
	const op = "services.ContentService.InsertLead"

	log := s.log.With(
		slog.String("op", op),
	)

	tables := s.sources[SourceLeads]
	if len(tables) == 0 {
		return models.LeadReceipt{}, fmt.Errorf("%s: %w", op, ErrNoCandidates)
	}

	client, err := s.client()
	if err != nil {
		return models.LeadReceipt{}, fmt.Errorf("%s: %w", op, err)
	}

	row := backend.Row{
		"name":    lead.Name,
		"email":   lead.Email,
		"type":    lead.Type,
		"message": lead.Message,
	}

	var last error
	for _, table := range tables {
		if err := ctx.Err(); err != nil {
			return models.LeadReceipt{}, fmt.Errorf("%s: %w", op, err)
		}

		err := client.Insert(ctx, table, []backend.Row{row})
		if err == nil {
			metrics.LeadsTotal.WithLabelValues("stored").Inc()
			log.Info("lead stored", slog.String("table", table))
			return models.LeadReceipt{Table: table}, nil
		}

		last = err
		if IsMissingRelation(err) {
			log.Debug("lead table missing", slog.String("table", table))
			continue
		}

		log.Error("lead insert failed", slog.String("table", table), sl.Err(err))
		return models.LeadReceipt{}, fmt.Errorf("%s: %w", op, &SourceError{Source: table, Err: err})
	}

	return models.LeadReceipt{}, fmt.Errorf("%s: %w: %w", op, ErrNoDestination, last)
}

// IsUserFacing true для ошибок, которые страница должна обработать
// (показать статику, баннер или mailto), а не считать сбоем сервиса
func IsUserFacing(err error) bool {
	var se *SourceError
	return errors.Is(err, ErrNotConfigured) ||
		errors.Is(err, ErrNoValidSource) ||
		errors.Is(err, ErrNoDestination) ||
		errors.As(err, &se)
}
