package render

import (
	"log/slog"
	"strconv"
	"time"

	"mpsite/internal/carousel"

	"golang.org/x/net/html"
)

// Loop собирает карусель на сервере: клоны вставлены, начальное смещение
// записано. Таймеров здесь нет, интервал автопрокрутки уходит клиенту
// в data-autoplay.
func Loop(log *slog.Logger, container *html.Node, autoplay time.Duration) carousel.Snapshot {
	track := NewNodeTrack(container)

	engine := carousel.New(track, carousel.Options{
		Interval: 0,
		Controls: NewButtonControls(Closest(container, "data-slider")),
		Log:      log,
	})
	engine.Attach()

	snap := engine.Snapshot()

	SetAttr(container, "data-carousel-id", snap.ID)
	SetAttr(container, "data-carousel-state", snap.State)
	SetAttr(container, "data-autoplay", strconv.FormatInt(autoplay.Milliseconds(), 10))
	if snap.Step > 0 {
		SetAttr(container, "data-step", strconv.FormatFloat(snap.Step, 'f', -1, 64))
	}

	return snap
}
