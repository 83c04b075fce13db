package services

import (
	"encoding/json"
	"regexp"
	"sort"
	"strings"

	"mpsite/internal/backend"
	"mpsite/internal/domain/models"
)

var httpURL = regexp.MustCompile(`(?i)^https?://`)

type platform struct {
	key   string
	label string
}

// Порядок отдельных колонок *_url после platform_urls
var knownPlatforms = []platform{
	{key: "spotify", label: "Spotify"},
	{key: "beatport", label: "Beatport"},
	{key: "soundcloud", label: "SoundCloud"},
	{key: "youtube", label: "YouTube"},
	{key: "bandcamp", label: "Bandcamp"},
}

type linkSet struct {
	links []models.PlatformLink
	seen  map[string]struct{}
}

func (s *linkSet) add(label string, raw any) {
	url := asString(raw)
	if url == "" || !httpURL.MatchString(url) {
		return
	}
	if _, dup := s.seen[url]; dup {
		return
	}
	if label == "" {
		label = "Link"
	}
	s.seen[url] = struct{}{}
	s.links = append(s.links, models.PlatformLink{Label: label, URL: url})
}

// platformLinks собирает ссылки из platform_urls (JSON-строка, массив
// или объект) и из отдельных колонок spotify_url, beatport_url и т.д.
func platformLinks(row backend.Row) []models.PlatformLink {
	set := &linkSet{links: []models.PlatformLink{}, seen: map[string]struct{}{}}

	pu := row["platform_urls"]
	if s, ok := pu.(string); ok {
		var decoded any
		if err := json.Unmarshal([]byte(s), &decoded); err != nil {
			decoded = nil
		}
		pu = decoded
	}

	switch t := pu.(type) {
	case []any:
		for _, it := range t {
			m, ok := it.(map[string]any)
			if !ok {
				continue
			}
			set.add(firstLabel(asString(m["label"]), asString(m["platform"])), m["url"])
		}
	case []map[string]any:
		for _, m := range t {
			set.add(firstLabel(asString(m["label"]), asString(m["platform"])), m["url"])
		}
	case map[string]any:
		for _, k := range platformKeys(t) {
			set.add(prettyPlatform(k), t[k])
		}
	}

	for _, p := range knownPlatforms {
		set.add(p.label, firstPresent(row, p.key+"_url", p.key))
	}

	return set.links
}

func firstLabel(labels ...string) string {
	for _, l := range labels {
		if l != "" {
			return l
		}
	}
	return ""
}

// platformKeys задает стабильный порядок ключей объекта:
// известные платформы в каноническом порядке, затем остальные по алфавиту
func platformKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	rank := func(k string) int {
		lk := strings.ToLower(k)
		for i, p := range knownPlatforms {
			if strings.Contains(lk, p.key) {
				return i
			}
		}
		return len(knownPlatforms)
	}

	sort.SliceStable(keys, func(i, j int) bool {
		ri, rj := rank(keys[i]), rank(keys[j])
		if ri != rj {
			return ri < rj
		}
		return keys[i] < keys[j]
	})

	return keys
}

func prettyPlatform(key string) string {
	lk := strings.ToLower(key)
	for _, p := range knownPlatforms {
		if strings.Contains(lk, p.key) {
			return p.label
		}
	}
	return key
}
