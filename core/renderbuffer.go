package engine

import (
	"strings"
	"sync"
	"time"
)

// defaultFlushInterval batches rapid text deltas into UI-visible updates.
const defaultFlushInterval = 30 * time.Millisecond

// renderBuffer coalesces rapid text deltas into periodic sink updates. A
// timer is armed when a delta arrives and none is pending; it is never
// re-armed per delta, so updates land at most once per interval. Flush pushes
// synchronously and is idempotent; after a flush the sink has seen the full
// accumulated text up to that point.
type renderBuffer struct {
	mu          sync.Mutex
	interval    time.Duration
	accumulated strings.Builder
	dirty       bool
	timer       *time.Timer
	closed      bool

	// pushMu is held across snapshot and sink delivery so a flush can never
	// overtake an in-flight timer push with a shorter snapshot. The sink
	// observes monotonically growing totals.
	pushMu sync.Mutex

	// sink receives the full accumulated text, not the delta.
	sink func(total string)
}

func newRenderBuffer(interval time.Duration, sink func(total string)) *renderBuffer {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	return &renderBuffer{interval: interval, sink: sink}
}

// Append accumulates a delta and arms the flush timer if not already armed.
func (b *renderBuffer) Append(delta string) {
	b.mu.Lock()
	b.accumulated.WriteString(delta)
	b.dirty = true
	if b.timer == nil && !b.closed {
		b.timer = time.AfterFunc(b.interval, b.timerFire)
	}
	b.mu.Unlock()
}

// Flush pushes the accumulated text to the sink immediately, bypassing the
// timer. Calling it twice without an intervening Append is a no-op the
// second time.
func (b *renderBuffer) Flush() {
	b.pushMu.Lock()
	defer b.pushMu.Unlock()

	b.mu.Lock()
	b.stopTimerLocked()
	total, push := b.takeLocked()
	b.mu.Unlock()

	if push {
		b.sink(total)
	}
}

// Close stops the timer and guarantees no flush fires afterwards. Pending
// unflushed text is discarded; callers flush first when it must survive.
func (b *renderBuffer) Close() {
	b.mu.Lock()
	b.closed = true
	b.stopTimerLocked()
	b.mu.Unlock()
}

// Text returns the full accumulated text, flushed or not.
func (b *renderBuffer) Text() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.accumulated.String()
}

func (b *renderBuffer) timerFire() {
	b.pushMu.Lock()
	defer b.pushMu.Unlock()

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.timer = nil
	total, push := b.takeLocked()
	b.mu.Unlock()

	if push {
		b.sink(total)
	}
}

// takeLocked snapshots the accumulated text and clears the dirty flag. The
// sink call happens outside mu so it may safely touch the transcript, but
// under pushMu so concurrent pushes stay ordered.
func (b *renderBuffer) takeLocked() (string, bool) {
	if !b.dirty {
		return "", false
	}
	b.dirty = false
	return b.accumulated.String(), true
}

func (b *renderBuffer) stopTimerLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
