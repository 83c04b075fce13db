// Package web статические страницы сайта со встроенным контентом по умолчанию
package web

import (
	"embed"
	"io/fs"
	"path"
	"strings"
)

//go:embed pages/*.html data/*.json static
var files embed.FS

// Pages каталог pages/ с HTML-страницами
func Pages() fs.FS {
	sub, err := fs.Sub(files, "pages")
	if err != nil {
		panic(err)
	}
	return sub
}

// Static css и изображения
func Static() fs.FS {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// Data встроенные legacy-наборы data/<name>.json
func Data() fs.FS {
	return files
}

// PageNames имена страниц без расширения
var PageNames = []string{"home", "bio", "clinicas", "presskit"}

// PageBytes содержимое всех страниц, нужно для чтения meta-тегов
func PageBytes() [][]byte {
	out := make([][]byte, 0, len(PageNames))
	for _, name := range PageNames {
		b, err := fs.ReadFile(files, "pages/"+name+".html")
		if err == nil {
			out = append(out, b)
		}
	}
	return out
}

// DataNames имена встроенных наборов data/*.json без расширения
func DataNames() []string {
	entries, err := fs.ReadDir(files, "data")
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && path.Ext(e.Name()) == ".json" {
			out = append(out, strings.TrimSuffix(e.Name(), ".json"))
		}
	}
	return out
}
