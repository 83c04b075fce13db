package render

import (
	"strconv"

	"mpsite/internal/carousel"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	DefaultSlideWidth    = 320.0
	DefaultSlideGap      = 16.0
	DefaultViewportWidth = 960.0
)

// NodeTrack дорожка карусели поверх HTML-узла. Геометрия берется из
// data-slide-width, data-slide-gap и data-viewport-width.
type NodeTrack struct {
	container *html.Node
	width     float64
	gap       float64
	viewport  float64
	offset    float64
	observers map[int]func()
	nextObs   int
}

func NewNodeTrack(container *html.Node) *NodeTrack {
	return &NodeTrack{
		container: container,
		width:     floatAttr(container, "data-slide-width", DefaultSlideWidth),
		gap:       floatAttr(container, "data-slide-gap", DefaultSlideGap),
		viewport:  floatAttr(container, "data-viewport-width", DefaultViewportWidth),
		observers: make(map[int]func()),
	}
}

func floatAttr(n *html.Node, key string, def float64) float64 {
	v, ok := Attr(n, key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f <= 0 {
		return def
	}
	return f
}

func (t *NodeTrack) Container() *html.Node {
	return t.container
}

func isClone(n *html.Node) bool {
	v, _ := Attr(n, "data-clone")
	return v == "true"
}

func (t *NodeTrack) Items() []carousel.Item {
	var out []carousel.Item
	for _, n := range Elements(t.container) {
		if !isClone(n) {
			out = append(out, &nodeItem{n: n, track: t})
		}
	}
	return out
}

func (t *NodeTrack) Clone(it carousel.Item) carousel.Item {
	src := it.(*nodeItem)
	c := cloneNode(src.n)
	RemoveClass(c, "active")
	SetAttr(c, "data-clone", "true")
	return &nodeItem{n: c, track: t}
}

func (t *NodeTrack) Prepend(items []carousel.Item) {
	first := t.container.FirstChild
	for _, it := range items {
		n := it.(*nodeItem).n
		if first == nil {
			t.container.AppendChild(n)
			continue
		}
		t.container.InsertBefore(n, first)
	}
}

func (t *NodeTrack) Append(items []carousel.Item) {
	for _, it := range items {
		t.container.AppendChild(it.(*nodeItem).n)
	}
}

func (t *NodeTrack) RemoveClones() {
	for _, n := range Elements(t.container) {
		if isClone(n) {
			t.container.RemoveChild(n)
		}
	}
}

func (t *NodeTrack) ScrollOffset() float64 {
	return t.offset
}

// ScrollTo на сервере анимации нет, итоговое смещение уходит в data-initial-offset
func (t *NodeTrack) ScrollTo(offset float64, _ bool) {
	t.offset = offset
	SetAttr(t.container, "data-initial-offset", strconv.FormatFloat(offset, 'f', -1, 64))
}

func (t *NodeTrack) ClientWidth() float64 {
	return t.viewport
}

func (t *NodeTrack) ScrollWidth() float64 {
	n := len(Elements(t.container))
	if n == 0 {
		return 0
	}
	return float64(n)*(t.width+t.gap) - t.gap
}

// Observe дорожка на сервере не меняется после Attach: подписка только
// регистрируется и снимается отменой
func (t *NodeTrack) Observe(fn func()) func() {
	id := t.nextObs
	t.nextObs++
	t.observers[id] = fn

	return func() { delete(t.observers, id) }
}

type nodeItem struct {
	n     *html.Node
	track *NodeTrack
}

func (it *nodeItem) ID() string {
	for _, key := range []string{"data-release-id", "data-item-id", "id"} {
		if v, ok := Attr(it.n, key); ok && v != "" {
			return v
		}
	}
	return strconv.Itoa(it.index())
}

func (it *nodeItem) index() int {
	for i, n := range Elements(it.track.container) {
		if n == it.n {
			return i
		}
	}
	return -1
}

func (it *nodeItem) Bounds() carousel.Rect {
	step := it.track.width + it.track.gap
	return carousel.Rect{X: float64(it.index()) * step, Width: it.track.width}
}

func (it *nodeItem) SetHidden(hidden bool) {
	if hidden {
		SetAttr(it.n, "aria-hidden", "true")
		return
	}
	RemoveAttr(it.n, "aria-hidden")
}

var focusableAtoms = map[atom.Atom]bool{
	atom.A:        true,
	atom.Button:   true,
	atom.Iframe:   true,
	atom.Input:    true,
	atom.Select:   true,
	atom.Textarea: true,
}

func (it *nodeItem) Focusables() []carousel.Focusable {
	var out []carousel.Focusable
	walk(it.n, func(n *html.Node) bool {
		if focusableAtoms[n.DataAtom] || HasAttr(n, "tabindex") {
			out = append(out, nodeFocusable{n: n})
		}
		return true
	})
	return out
}

type nodeFocusable struct {
	n *html.Node
}

func (f nodeFocusable) SetTabIndex(i int) {
	SetAttr(f.n, "tabindex", strconv.Itoa(i))
}

// ButtonControls кнопки prev/next слайдера
type ButtonControls struct {
	buttons []*html.Node
}

// NewButtonControls ищет кнопки data-slider-prev/data-slider-next внутри root
func NewButtonControls(root *html.Node) *ButtonControls {
	c := &ButtonControls{}
	if root == nil {
		return c
	}
	walk(root, func(n *html.Node) bool {
		if HasAttr(n, "data-slider-prev") || HasAttr(n, "data-slider-next") {
			c.buttons = append(c.buttons, n)
		}
		return true
	})
	return c
}

func (c *ButtonControls) SetEnabled(enabled bool) {
	for _, b := range c.buttons {
		if enabled {
			RemoveAttr(b, "disabled")
			RemoveAttr(b, "aria-disabled")
			continue
		}
		SetAttr(b, "disabled", "")
		SetAttr(b, "aria-disabled", "true")
	}
}
