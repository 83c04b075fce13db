package models

import "time"

// PlatformLink ссылка на релиз в стриминговой платформе
type PlatformLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Release нормализованный релиз для главной страницы
type Release struct {
	ID            string         `json:"id"`
	Title         string         `json:"title"`
	Subtitle      string         `json:"subtitle"`
	Type          string         `json:"type"`
	Story         string         `json:"story"`
	Tags          []string       `json:"tags"`
	CoverURL      string         `json:"cover_url"`
	PlatformLinks []PlatformLink `json:"platform_links"`
	ReleasedAt    *time.Time     `json:"released_at"`
	IsFeatured    bool           `json:"is_featured"`
	Order         *int           `json:"order"`
}

// PrimaryURL первая валидная ссылка на платформу или пустая строка
func (r Release) PrimaryURL() string {
	if len(r.PlatformLinks) == 0 {
		return ""
	}
	return r.PlatformLinks[0].URL
}
