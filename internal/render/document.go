// Package render отрисовывает нормализованные записи в HTML-фрагменты
// и вставляет их в размеченные элементы статической страницы.
package render

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
)

// Document разобранная HTML-страница
type Document struct {
	root *html.Node
}

func Parse(r io.Reader) (*Document, error) {
	const op = "render.Parse"

	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Document{root: root}, nil
}

func ParseBytes(b []byte) (*Document, error) {
	return Parse(bytes.NewReader(b))
}

func (d *Document) Root() *html.Node {
	return d.root
}

func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return nil, fmt.Errorf("render.Document.Bytes: %w", err)
	}
	return buf.Bytes(), nil
}

// Find первый элемент, у которого attr == value.
// Пустой value означает "атрибут присутствует".
func (d *Document) Find(attr, value string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if v, ok := Attr(n, attr); ok && (value == "" || v == value) {
			found = n
			return false
		}
		return true
	})
	return found
}

// FindAll все элементы с атрибутом attr в порядке документа
func (d *Document) FindAll(attr string) []*html.Node {
	var out []*html.Node
	walk(d.root, func(n *html.Node) bool {
		if HasAttr(n, attr) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// FindFirst пробует пары (attr, value) по порядку
func (d *Document) FindFirst(pairs ...[2]string) *html.Node {
	for _, p := range pairs {
		if n := d.Find(p[0], p[1]); n != nil {
			return n
		}
	}
	return nil
}

// MetaContent значение content у <meta name="...">
func (d *Document) MetaContent(name string) string {
	var content string
	walk(d.root, func(n *html.Node) bool {
		if n.Data != "meta" {
			return true
		}
		if v, _ := Attr(n, "name"); v == name {
			content, _ = Attr(n, "content")
			return false
		}
		return true
	})
	return content
}

// walk обходит элементы в глубину, пока fn возвращает true
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if n.Type == html.ElementNode && !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}

func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func HasAttr(n *html.Node, key string) bool {
	_, ok := Attr(n, key)
	return ok
}

func SetAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func RemoveAttr(n *html.Node, key string) {
	kept := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			kept = append(kept, a)
		}
	}
	n.Attr = kept
}

// Elements дочерние элементы узла без текстовых узлов
func Elements(n *html.Node) []*html.Node {
	var out []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// ReplaceChildren заменяет содержимое узла
func ReplaceChildren(n *html.Node, children []*html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		n.RemoveChild(c)
		c = next
	}
	for _, c := range children {
		n.AppendChild(c)
	}
}

func SetText(n *html.Node, text string) {
	ReplaceChildren(n, []*html.Node{{Type: html.TextNode, Data: text}})
}

// Closest ближайший предок (или сам узел) с атрибутом attr
func Closest(n *html.Node, attr string) *html.Node {
	for p := n; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && HasAttr(p, attr) {
			return p
		}
	}
	return nil
}

// HasClass проверяет class по словам
func HasClass(n *html.Node, class string) bool {
	v, _ := Attr(n, "class")
	return slices.Contains(strings.Fields(v), class)
}

func RemoveClass(n *html.Node, class string) {
	v, ok := Attr(n, "class")
	if !ok {
		return
	}
	fields := slices.DeleteFunc(strings.Fields(v), func(f string) bool { return f == class })
	SetAttr(n, "class", strings.Join(fields, " "))
}

func cloneNode(n *html.Node) *html.Node {
	c := &html.Node{
		Type:      n.Type,
		DataAtom:  n.DataAtom,
		Data:      n.Data,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		c.AppendChild(cloneNode(ch))
	}
	return c
}
