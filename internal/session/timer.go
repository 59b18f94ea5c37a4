package session

import (
	"sync"
	"time"
)

// Timer runs at most one countdown at a time. Starting a countdown stops the
// previous one; Close stops it and refuses new ones.
//
// Callbacks run on the timer's goroutine and must not call Start, Stop or Close.
type Timer struct {
	tick time.Duration

	mu     sync.Mutex
	closed bool
	stop   chan struct{}
	done   chan struct{}
}

// NewTimer creates a Timer that reports remaining time every tick.
func NewTimer(tick time.Duration) *Timer {
	if tick <= 0 {
		tick = time.Second
	}
	return &Timer{tick: tick}
}

// Start begins a countdown of total. onTick receives the remaining time after each
// tick; onDone runs once the countdown reaches zero. Either may be nil. It returns
// false after Close.
func (t *Timer) Start(total time.Duration, onTick func(remaining time.Duration), onDone func()) bool {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return false
	}
	oldStop, oldDone := t.stop, t.done
	stop, done := make(chan struct{}), make(chan struct{})
	t.stop, t.done = stop, done
	t.mu.Unlock()

	halt(oldStop, oldDone)
	go t.run(total, stop, done, onTick, onDone)
	return true
}

func (t *Timer) run(total time.Duration, stop, done chan struct{}, onTick func(time.Duration), onDone func()) {
	defer close(done)

	ticker := time.NewTicker(t.tick)
	defer ticker.Stop()

	remaining := total
	for remaining > 0 {
		select {
		case <-stop:
			return
		case <-ticker.C:
			remaining = max(remaining-t.tick, 0)
			if onTick != nil {
				onTick(remaining)
			}
		}
	}

	select {
	case <-stop:
		return
	default:
	}
	if onDone != nil {
		onDone()
	}
}

// Stop cancels the running countdown, if any. No callback runs after Stop returns.
func (t *Timer) Stop() {
	t.mu.Lock()
	stop, done := t.stop, t.done
	t.stop, t.done = nil, nil
	t.mu.Unlock()

	halt(stop, done)
}

// Close stops the countdown and disables the Timer.
func (t *Timer) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()

	t.Stop()
}

// Running reports whether a countdown is in progress.
func (t *Timer) Running() bool {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func halt(stop, done chan struct{}) {
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
