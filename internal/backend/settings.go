package backend

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
)

const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"

	placeholderMarker = "YOUR_"
)

// Settings параметры подключения к бэкенду
type Settings struct {
	Driver string
	URL    string
	Key    string
}

// Valid отсекает пустые значения и шаблонные заглушки вида YOUR_URL
func (s Settings) Valid() bool {
	if s.URL == "" || strings.Contains(s.URL, placeholderMarker) {
		return false
	}
	if s.driver() == DriverPostgres {
		return true
	}
	return s.Key != "" && !strings.Contains(s.Key, placeholderMarker)
}

func (s Settings) driver() string {
	if s.Driver == "" {
		return DriverPostgREST
	}
	return s.Driver
}

func (s Settings) signature() string {
	return s.driver() + "::" + s.URL + "::" + s.Key
}

type Source interface {
	Settings() (Settings, bool)
}

type SourceFunc func() (Settings, bool)

func (f SourceFunc) Settings() (Settings, bool) {
	return f()
}

// Static источник с фиксированными настройками
func Static(s Settings) Source {
	return SourceFunc(func() (Settings, bool) {
		return s, s.Valid()
	})
}

// Chain возвращает настройки первого источника с валидной конфигурацией
type Chain []Source

func (c Chain) Settings() (Settings, bool) {
	for _, src := range c {
		if src == nil {
			continue
		}
		if s, ok := src.Settings(); ok && s.Valid() {
			return s, true
		}
	}
	return Settings{}, false
}

// MetaTags читает <meta name="supabase-url"> и <meta name="supabase-anon-key">
// из первой страницы, где заданы оба значения.
func MetaTags(pages ...[]byte) Source {
	var found Settings
	for _, p := range pages {
		s, ok := parseMeta(p)
		if ok {
			found = s
			break
		}
	}
	return Static(found)
}

func parseMeta(page []byte) (Settings, bool) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return Settings{}, false
	}

	s := Settings{Driver: DriverPostgREST}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "meta" {
			switch getAttr(n, "name") {
			case "supabase-url":
				s.URL = strings.TrimSpace(getAttr(n, "content"))
			case "supabase-anon-key":
				s.Key = strings.TrimSpace(getAttr(n, "content"))
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return s, s.URL != "" && s.Key != ""
}

func getAttr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
