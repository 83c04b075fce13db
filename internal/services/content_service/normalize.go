package services

import (
	"sort"
	"strings"

	"mpsite/internal/backend"
	"mpsite/internal/domain/models"
)

const (
	defaultCTALabel = "Consultar"
	maxClinicBullet = 10
)

func normalizeRelease(row backend.Row, idx int) models.Release {
	return models.Release{
		ID:            identifier(row, idx),
		Title:         text(row, "title", "name"),
		Subtitle:      text(row, "subtitle"),
		Type:          text(row, "type", "release_type"),
		Story:         text(row, "story", "description"),
		Tags:          list(row["tags"], ","),
		CoverURL:      text(row, "cover_url", "cover", "image_url"),
		PlatformLinks: platformLinks(row),
		ReleasedAt:    timestamp(row, "released_at", "release_date"),
		IsFeatured:    flag(row, "is_featured", true),
		Order:         integer(row, "order", "sort"),
	}
}

func normalizeLabel(row backend.Row, _ int) models.Label {
	return models.Label{
		Name:          text(row, "name", "title", "label"),
		LogoURL:       text(row, "logo_url", "logo", "image_url"),
		IsSupportLine: flag(row, "is_support_line", false),
		Order:         integer(row, "order", "sort"),
	}
}

func normalizeMedia(kind models.MediaKind) func(backend.Row, int) models.MediaItem {
	return func(row backend.Row, _ int) models.MediaItem {
		k := models.ParseMediaKind(text(row, "kind"))
		if k == "" {
			k = kind
		}
		return models.MediaItem{
			Title:       text(row, "title", "name"),
			Description: text(row, "description", "subtitle"),
			Kind:        k,
			EmbedURL:    text(row, "embed_url", "url", "src"),
			Order:       integer(row, "order", "sort"),
		}
	}
}

func normalizePresskitAsset(artist string) func(backend.Row, int) models.PresskitAsset {
	return func(row backend.Row, _ int) models.PresskitAsset {
		alt := text(row, "alt", "caption", "title", "name")
		if alt == "" {
			alt = artist
		}
		return models.PresskitAsset{
			Title: text(row, "title", "name"),
			URL:   text(row, "url", "file_url", "asset_url", "download_url"),
			Alt:   alt,
			Order: integer(row, "order", "sort"),
		}
	}
}

func normalizeClinic(row backend.Row, _ int) models.Clinic {
	bullets := list(firstPresent(row, "bullets", "items", "features"), "\n")
	if len(bullets) > maxClinicBullet {
		bullets = bullets[:maxClinicBullet]
	}

	ctaLabel := text(row, "cta_label")
	ctaURL := text(row, "cta_url", "url")
	if ctaLabel == "" && ctaURL != "" {
		ctaLabel = defaultCTALabel
	}

	return models.Clinic{
		Title:       text(row, "title", "name"),
		Subtitle:    text(row, "subtitle"),
		Description: text(row, "description"),
		Bullets:     bullets,
		Price:       text(row, "price"),
		CTALabel:    ctaLabel,
		CTAURL:      ctaURL,
		Order:       integer(row, "order", "sort"),
	}
}

func normalizeNavItem(row backend.Row, _ int) models.NavItem {
	return models.NavItem{
		Label: text(row, "label", "title", "text"),
		Href:  text(row, "href", "url"),
		IsCTA: flag(row, "is_cta", false),
		Order: integer(row, "order", "sort"),
	}
}

func normalizeSiteLink(row backend.Row, _ int) models.SiteLink {
	return models.SiteLink{
		Label: text(row, "label", "name"),
		Href:  text(row, "href", "url"),
		Order: integer(row, "order", "sort"),
	}
}

// normalizeBlocks key ?? slug ?? id -> content ?? value ?? text ?? bio ?? description
func normalizeBlocks(rows []backend.Row) models.TextBlocks {
	out := models.TextBlocks{}
	for _, row := range rows {
		key := text(row, "key", "slug", "id")
		content := text(row, "content", "value", "text", "bio", "description")
		if key == "" || content == "" {
			continue
		}
		out[key] = content
	}
	return out
}

func normalizeAll[T any](rows []backend.Row, norm func(backend.Row, int) T) []T {
	out := make([]T, 0, len(rows))
	for i, row := range rows {
		out = append(out, norm(row, i))
	}
	return out
}

// sortByOrder устойчиво сортирует по order; записи без order идут последними.
// tie сравнивает записи с равным order, nil оставляет порядок выборки.
func sortByOrder[T any](items []T, order func(T) *int, tie func(a, b T) int) {
	sort.SliceStable(items, func(i, j int) bool {
		oi, oj := order(items[i]), order(items[j])
		switch {
		case oi != nil && oj == nil:
			return true
		case oi == nil && oj != nil:
			return false
		case oi != nil && oj != nil && *oi != *oj:
			return *oi < *oj
		}
		if tie == nil {
			return false
		}
		return tie(items[i], items[j]) < 0
	})
}

// releaseTie: более свежий релиз раньше, релизы без даты после датированных
func releaseTie(a, b models.Release) int {
	switch {
	case a.ReleasedAt == nil && b.ReleasedAt == nil:
		return 0
	case a.ReleasedAt == nil:
		return 1
	case b.ReleasedAt == nil:
		return -1
	case a.ReleasedAt.After(*b.ReleasedAt):
		return -1
	case b.ReleasedAt.After(*a.ReleasedAt):
		return 1
	}
	return 0
}

func uniqueKeys(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
