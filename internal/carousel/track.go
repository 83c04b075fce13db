// Package carousel реализует бесконечную карусель: клоны полного набора
// элементов до и после оригинала, бесшовная коррекция смещения на границе,
// автопрокрутка с паузой по взаимодействию.
package carousel

// Rect горизонтальная геометрия элемента внутри прокручиваемой дорожки
type Rect struct {
	X     float64
	Width float64
}

type Focusable interface {
	SetTabIndex(i int)
}

// Item элемент, отрисованный рендерером
type Item interface {
	ID() string
	Bounds() Rect
	SetHidden(hidden bool)
	Focusables() []Focusable
}

// Track прокручиваемый контейнер. Items возвращает только настоящие элементы,
// клоны из него исключены.
type Track interface {
	Items() []Item
	Clone(it Item) Item
	Prepend(items []Item)
	Append(items []Item)
	RemoveClones()
	ScrollOffset() float64
	ScrollTo(offset float64, smooth bool)
	ClientWidth() float64
	ScrollWidth() float64
	// Observe подписывает fn на изменения списка элементов
	Observe(fn func()) (cancel func())
}

// Controls кнопки prev/next
type Controls interface {
	SetEnabled(enabled bool)
}
