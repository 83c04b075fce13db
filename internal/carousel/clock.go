package carousel

import (
	"sync"
	"time"
)

type Stopper interface {
	Stop()
}

// Clock источник периодических вызовов для автопрокрутки
type Clock interface {
	Every(d time.Duration, fn func()) Stopper
}

type RealClock struct{}

func (RealClock) Every(d time.Duration, fn func()) Stopper {
	t := time.NewTicker(d)
	s := &tickerStopper{ticker: t, done: make(chan struct{})}

	go func() {
		for {
			select {
			case <-t.C:
				fn()
			case <-s.done:
				return
			}
		}
	}()

	return s
}

type tickerStopper struct {
	ticker *time.Ticker
	done   chan struct{}
	once   sync.Once
}

// Stop не ждет завершения горутины: вызов из-под мьютекса движка безопасен
func (s *tickerStopper) Stop() {
	s.once.Do(func() {
		s.ticker.Stop()
		close(s.done)
	})
}

// ManualClock таймеры срабатывают только по Advance. Для тестов.
type ManualClock struct {
	mu      sync.Mutex
	timers  []*manualTimer
	created int
}

type manualTimer struct {
	every   time.Duration
	elapsed time.Duration
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() {
	t.stopped = true
}

func NewManualClock() *ManualClock {
	return &ManualClock{}
}

func (c *ManualClock) Every(d time.Duration, fn func()) Stopper {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTimer{every: d, fn: fn}
	c.timers = append(c.timers, t)
	c.created++

	return stopperFunc(func() {
		c.mu.Lock()
		t.Stop()
		c.mu.Unlock()
	})
}

type stopperFunc func()

func (f stopperFunc) Stop() { f() }

// Advance сдвигает время и вызывает сработавшие таймеры
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	var due []func()
	for _, t := range c.timers {
		if t.stopped || t.every <= 0 {
			continue
		}
		t.elapsed += d
		for t.elapsed >= t.every {
			t.elapsed -= t.every
			due = append(due, t.fn)
		}
	}
	c.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}

// Active число запущенных и не остановленных таймеров
func (c *ManualClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, t := range c.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}

// Created сколько таймеров было создано за все время
func (c *ManualClock) Created() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.created
}
