package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"mpsite/internal/domain/models"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var fragments = template.Must(template.New("fragments").Funcs(template.FuncMap{
	"paragraphs": Paragraphs,
	"inc":        func(i int) int { return i + 1 },
}).ParseFS(templateFS, "templates/*.tmpl"))

// Paragraphs делит текст блока по пустой строке
func Paragraphs(s string) []string {
	var out []string
	for _, p := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// fragment исполняет шаблон и разбирает результат как содержимое parent
func fragment(parent *html.Node, name string, data any) ([]*html.Node, error) {
	const op = "render.fragment"

	var buf bytes.Buffer
	if err := fragments.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, name, err)
	}

	tag := "div"
	if parent != nil && parent.Type == html.ElementNode && parent.Data != "" {
		tag = parent.Data
	}

	nodes, err := html.ParseFragment(&buf, &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %s: %w", op, name, err)
	}

	return nodes, nil
}

func paint(n *html.Node, name string, data any) error {
	nodes, err := fragment(n, name, data)
	if err != nil {
		return err
	}
	ReplaceChildren(n, nodes)
	return nil
}

// Пустой список не трогает узел: остается статическое содержимое страницы.

func Releases(n *html.Node, releases []models.Release) error {
	if n == nil || len(releases) == 0 {
		return nil
	}
	return paint(n, "releases", releases)
}

// Labels рисует набор дважды для бегущей строки, вторая копия скрыта от скринридеров
func Labels(n *html.Node, labels []models.Label) error {
	if n == nil || len(labels) == 0 {
		return nil
	}
	return paint(n, "labels", labels)
}

func Media(n *html.Node, items []models.MediaItem, kind models.MediaKind) error {
	if n == nil || len(items) == 0 {
		return nil
	}
	return paint(n, "media", struct {
		Items []models.MediaItem
		Mix   bool
	}{Items: items, Mix: kind == models.MediaKindMix})
}

func PresskitPhotos(n *html.Node, photos []models.PresskitAsset) error {
	if n == nil || len(photos) == 0 {
		return nil
	}
	return paint(n, "presskit-photos", photos)
}

// Dots точки-индикаторы слайдера пресс-кита
func Dots(n *html.Node, count int) error {
	if n == nil || count < 2 {
		return nil
	}
	return paint(n, "dots", make([]struct{}, count))
}

func Clinics(n *html.Node, clinics []models.Clinic) error {
	if n == nil || len(clinics) == 0 {
		return nil
	}
	return paint(n, "clinics", clinics)
}

func NavList(n *html.Node, items []models.NavItem) error {
	if n == nil || len(items) == 0 {
		return nil
	}
	return paint(n, "nav", items)
}

func SiteLinks(n *html.Node, links []models.SiteLink) error {
	if n == nil || len(links) == 0 {
		return nil
	}
	return paint(n, "site-links", links)
}

// TextBlocks заполняет узлы data-sb-block="<key>" абзацами.
// Узлы без контента в blocks не меняются.
func TextBlocks(nodes []*html.Node, blocks models.TextBlocks) error {
	for _, n := range nodes {
		key, _ := Attr(n, "data-sb-block")
		content, ok := blocks[key]
		if !ok {
			continue
		}
		if err := paint(n, "paragraphs", content); err != nil {
			return err
		}
	}
	return nil
}

// TextBlock один блок по ключу, пустой контент пропускается
func TextBlock(n *html.Node, content string) error {
	if n == nil || strings.TrimSpace(content) == "" {
		return nil
	}
	return paint(n, "paragraphs", content)
}

// DownloadLink ставит href у ссылки (сам узел или первая вложенная <a>)
func DownloadLink(n *html.Node, url string) {
	if n == nil || url == "" {
		return
	}

	target := n
	if n.DataAtom != atom.A {
		target = nil
		walk(n, func(c *html.Node) bool {
			if c.DataAtom == atom.A {
				target = c
				return false
			}
			return true
		})
	}
	if target == nil {
		return
	}

	SetAttr(target, "href", url)
	RemoveAttr(target, "aria-disabled")
}
