package models

import "strings"

type MediaKind string

const (
	MediaKindVideo MediaKind = "video"
	MediaKindMix   MediaKind = "mix"
)

// ParseMediaKind принимает также множественные формы "videos" и "mixes"
func ParseMediaKind(s string) MediaKind {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case "videos", "video":
		return MediaKindVideo
	case "mixes", "mix":
		return MediaKindMix
	default:
		return MediaKind(k)
	}
}

// MediaItem встраиваемое видео или микс
type MediaItem struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Kind        MediaKind `json:"kind"`
	EmbedURL    string    `json:"embed_url"`
	Order       *int      `json:"order"`
}
