package carousel

import (
	"io"
	"log/slog"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

const DefaultSwipeThreshold = 40.0

type State int

const (
	StateUninitialized State = iota
	StateDeferred
	StateStatic
	StateLooped
	StateAutoplaying
	StatePaused
)

func (s State) String() string {
	switch s {
	case StateDeferred:
		return "deferred"
	case StateStatic:
		return "static"
	case StateLooped:
		return "looped"
	case StateAutoplaying:
		return "autoplaying"
	case StatePaused:
		return "paused"
	default:
		return "uninitialized"
	}
}

// PauseSource источник паузы. Автопрокрутка возобновляется, только когда
// закончились все активные источники.
type PauseSource string

const (
	PausePointer PauseSource = "pointer"
	PauseFocus   PauseSource = "focus"
	PauseHover   PauseSource = "hover"
)

type Options struct {
	// Interval шаг автопрокрутки, 0 - выключена
	Interval       time.Duration
	ReducedMotion  bool
	SwipeThreshold float64
	Clock          Clock
	Controls       Controls
	Log            *slog.Logger
}

type Engine struct {
	id    string
	track Track
	opts  Options
	clock Clock
	log   *slog.Logger

	mu            sync.Mutex
	state         State
	items         []Item
	clones        int
	step          float64
	setWidth      float64
	timer         Stopper
	generation    uint64
	pauses        map[PauseSource]struct{}
	pointerStart  *float64
	cancelObserve func()
	ticks         int
}

func New(track Track, opts Options) *Engine {
	if opts.SwipeThreshold <= 0 {
		opts.SwipeThreshold = DefaultSwipeThreshold
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	if opts.Log == nil {
		opts.Log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	id := uuid.NewString()

	return &Engine{
		id:     id,
		track:  track,
		opts:   opts,
		clock:  opts.Clock,
		log:    opts.Log.With(slog.String("carousel", id)),
		pauses: make(map[PauseSource]struct{}),
	}
}

func (e *Engine) ID() string {
	return e.id
}

func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Attach инициализирует карусель по текущим элементам дорожки.
// 0 элементов - ждем появления, 1 - статичный режим, 2+ - петля.
func (e *Engine) Attach() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.attach()
}

func (e *Engine) attach() {
	const op = "carousel.Engine.Attach"

	items := e.track.Items()

	switch {
	case len(items) == 0:
		e.items = nil
		e.state = StateDeferred
		if e.cancelObserve == nil {
			e.cancelObserve = e.track.Observe(e.onMutation)
		}
		e.log.Debug("no items yet, observing track", slog.String("op", op))

	case len(items) == 1:
		e.stopObserving()
		e.items = items
		e.state = StateStatic
		if e.opts.Controls != nil {
			e.opts.Controls.SetEnabled(false)
		}

	default:
		e.stopObserving()
		e.items = items
		if e.opts.Controls != nil {
			e.opts.Controls.SetEnabled(true)
		}
		e.loop()
		e.state = StateLooped
		e.startAutoplay()
		e.log.Debug("loop attached",
			slog.String("op", op),
			slog.Int("items", len(items)),
			slog.Float64("step", e.step),
		)
	}
}

func (e *Engine) onMutation() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateDeferred {
		return
	}
	if len(e.track.Items()) > 0 {
		e.attach()
	}
}

func (e *Engine) stopObserving() {
	if e.cancelObserve != nil {
		e.cancelObserve()
		e.cancelObserve = nil
	}
}

// loop вставляет полную копию набора до и после оригинала и без анимации
// переходит к первому настоящему элементу
func (e *Engine) loop() {
	e.track.RemoveClones()

	before := e.cloneAll()
	after := e.cloneAll()
	e.track.Prepend(before)
	e.track.Append(after)
	e.clones = len(before) + len(after)

	e.measure()
	e.track.ScrollTo(e.setWidth, false)
}

func (e *Engine) cloneAll() []Item {
	out := make([]Item, 0, len(e.items))
	for _, it := range e.items {
		c := e.track.Clone(it)
		c.SetHidden(true)
		for _, f := range c.Focusables() {
			f.SetTabIndex(-1)
		}
		out = append(out, c)
	}
	return out
}

// measure шаг = расстояние между соседними настоящими элементами (ширина + gap)
func (e *Engine) measure() {
	a, b := e.items[0].Bounds(), e.items[1].Bounds()

	step := b.X - a.X
	if step <= 0 {
		step = a.Width
	}

	e.step = step
	e.setWidth = step * float64(len(e.items))
}

// HandleScroll вызывается на каждое событие прокрутки
func (e *Engine) HandleScroll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.wrap()
}

// wrap если смещение ушло в зону клонов (с допуском в полшага),
// молча сдвигает его ровно на ширину набора
func (e *Engine) wrap() {
	if !e.looped() || e.step <= 0 {
		return
	}

	x := e.track.ScrollOffset()
	tol := e.step / 2

	switch {
	case x < e.setWidth-tol:
		e.track.ScrollTo(x+e.setWidth, false)
	case x >= 2*e.setWidth-tol:
		e.track.ScrollTo(x-e.setWidth, false)
	}
}

func (e *Engine) looped() bool {
	return e.state == StateLooped || e.state == StateAutoplaying || e.state == StatePaused
}

func (e *Engine) advance(dir int) {
	if !e.looped() {
		return
	}
	e.track.ScrollTo(e.track.ScrollOffset()+float64(dir)*e.step, true)
	e.wrap()
}

// Next на один шаг вперед, перезапускает таймер автопрокрутки
func (e *Engine) Next() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.advance(1)
	e.restartAutoplay()
}

func (e *Engine) Prev() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.advance(-1)
	e.restartAutoplay()
}

// HandleKey ArrowLeft/ArrowRight, возвращает true если клавиша обработана
func (e *Engine) HandleKey(key string) bool {
	switch key {
	case "ArrowRight":
		e.Next()
		return true
	case "ArrowLeft":
		e.Prev()
		return true
	}
	return false
}

func (e *Engine) PointerDown(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	start := x
	e.pointerStart = &start
	e.pause(PausePointer)
}

// PointerUp смещение меньше порога считается касанием, а не свайпом
func (e *Engine) PointerUp(x float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pointerStart == nil {
		return
	}

	dx := x - *e.pointerStart
	e.pointerStart = nil
	delete(e.pauses, PausePointer)

	if math.Abs(dx) >= e.opts.SwipeThreshold {
		if dx < 0 {
			e.advance(1)
		} else {
			e.advance(-1)
		}
	}

	e.resumeIfIdle()
}

func (e *Engine) PointerCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.pointerStart = nil
	e.resume(PausePointer)
}

func (e *Engine) FocusIn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pause(PauseFocus)
}

func (e *Engine) FocusOut() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resume(PauseFocus)
}

func (e *Engine) MouseEnter() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pause(PauseHover)
}

func (e *Engine) MouseLeave() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resume(PauseHover)
}

// SetReducedMotion применяет смену системной настройки на лету
func (e *Engine) SetReducedMotion(reduced bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.opts.ReducedMotion = reduced
	if e.looped() {
		e.startAutoplay()
	}
}

func (e *Engine) pause(src PauseSource) {
	e.pauses[src] = struct{}{}
	e.stopAutoplay()
	if e.looped() {
		e.state = StatePaused
	}
}

func (e *Engine) resume(src PauseSource) {
	if _, ok := e.pauses[src]; !ok {
		return
	}
	delete(e.pauses, src)
	e.resumeIfIdle()
}

func (e *Engine) resumeIfIdle() {
	if len(e.pauses) == 0 && e.state == StatePaused {
		e.startAutoplay()
	}
}

func (e *Engine) autoplayEnabled() bool {
	return e.opts.Interval > 0 && !e.opts.ReducedMotion
}

// startAutoplay всегда сначала останавливает текущий таймер:
// у экземпляра не больше одного активного таймера
func (e *Engine) startAutoplay() {
	e.stopAutoplay()

	switch {
	case e.opts.ReducedMotion:
		e.state = StatePaused
		return
	case e.opts.Interval <= 0:
		e.state = StateLooped
		return
	case len(e.pauses) > 0:
		e.state = StatePaused
		return
	}

	e.generation++
	gen := e.generation
	e.timer = e.clock.Every(e.opts.Interval, func() { e.tick(gen) })
	e.state = StateAutoplaying
}

func (e *Engine) restartAutoplay() {
	if e.state == StateAutoplaying {
		e.startAutoplay()
	}
}

func (e *Engine) stopAutoplay() {
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	e.generation++
}

func (e *Engine) tick(gen uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if gen != e.generation || e.state != StateAutoplaying {
		return
	}
	if e.track.ScrollWidth() <= e.track.ClientWidth()+1 {
		return
	}

	e.ticks++
	e.advance(1)
}

// Resize пересчитывает шаг и ставит смещение на тот же логический элемент
func (e *Engine) Resize() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.looped() {
		return
	}

	idx := e.logicalIndex()
	e.measure()
	e.track.ScrollTo(e.setWidth+float64(idx)*e.step, false)
}

func (e *Engine) logicalIndex() int {
	if e.step <= 0 || len(e.items) == 0 {
		return 0
	}

	n := len(e.items)
	idx := int(math.Round((e.track.ScrollOffset() - e.setWidth) / e.step))

	return ((idx % n) + n) % n
}

// Refresh после повторной гидрации: если число элементов изменилось,
// состояние сбрасывается и карусель собирается заново
func (e *Engine) Refresh() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if len(e.track.Items()) == len(e.items) && e.state != StateDeferred {
		return
	}

	e.reset()
	e.attach()
}

// Destroy убирает клоны, таймер и наблюдателя
func (e *Engine) Destroy() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.reset()
}

func (e *Engine) reset() {
	e.stopAutoplay()
	e.stopObserving()
	if e.clones > 0 {
		e.track.RemoveClones()
	}
	e.items = nil
	e.clones = 0
	e.step = 0
	e.setWidth = 0
	e.pointerStart = nil
	e.pauses = make(map[PauseSource]struct{})
	e.state = StateUninitialized
}

// Snapshot состояние для логов и отладки
type Snapshot struct {
	ID       string   `json:"id"`
	State    string   `json:"state"`
	Items    int      `json:"items"`
	Clones   int      `json:"clones"`
	Step     float64  `json:"step"`
	SetWidth float64  `json:"set_width"`
	Offset   float64  `json:"offset"`
	Index    int      `json:"index"`
	Paused   []string `json:"paused,omitempty"`
	Ticks    int      `json:"ticks"`
	Autoplay bool     `json:"autoplay"`
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	paused := make([]string, 0, len(e.pauses))
	for p := range e.pauses {
		paused = append(paused, string(p))
	}
	sort.Strings(paused)

	return Snapshot{
		ID:       e.id,
		State:    e.state.String(),
		Items:    len(e.items),
		Clones:   e.clones,
		Step:     e.step,
		SetWidth: e.setWidth,
		Offset:   e.track.ScrollOffset(),
		Index:    e.logicalIndex(),
		Paused:   paused,
		Ticks:    e.ticks,
		Autoplay: e.autoplayEnabled(),
	}
}
