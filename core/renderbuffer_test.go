package engine

import (
	"strings"
	"sync"
	"testing"
	"time"
)

type sinkRecorder struct {
	mu     sync.Mutex
	totals []string
}

func (r *sinkRecorder) sink(total string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.totals = append(r.totals, total)
}

func (r *sinkRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string{}, r.totals...)
}

func TestRenderBufferFlushPushesAccumulatedText(t *testing.T) {
	recorder := &sinkRecorder{}
	buffer := newRenderBuffer(time.Hour, recorder.sink)

	buffer.Append("Hel")
	buffer.Append("lo")
	buffer.Flush()

	totals := recorder.snapshot()
	if len(totals) != 1 {
		t.Fatalf("expected 1 sink update, got %d", len(totals))
	}
	if totals[0] != "Hello" {
		t.Fatalf("expected %q, got %q", "Hello", totals[0])
	}
}

func TestRenderBufferFlushIsIdempotent(t *testing.T) {
	recorder := &sinkRecorder{}
	buffer := newRenderBuffer(time.Hour, recorder.sink)

	buffer.Append("once")
	buffer.Flush()
	buffer.Flush()

	if totals := recorder.snapshot(); len(totals) != 1 {
		t.Fatalf("expected 1 sink update, got %d", len(totals))
	}
}

func TestRenderBufferSinkReceivesTotals(t *testing.T) {
	recorder := &sinkRecorder{}
	buffer := newRenderBuffer(time.Hour, recorder.sink)

	buffer.Append("Hel")
	buffer.Flush()
	buffer.Append("lo")
	buffer.Flush()

	totals := recorder.snapshot()
	if len(totals) != 2 {
		t.Fatalf("expected 2 sink updates, got %d", len(totals))
	}
	if totals[0] != "Hel" || totals[1] != "Hello" {
		t.Fatalf("expected cumulative totals, got %q", totals)
	}
}

func TestRenderBufferTimerCoalescesDeltas(t *testing.T) {
	updates := make(chan string, 8)
	buffer := newRenderBuffer(20*time.Millisecond, func(total string) { updates <- total })

	buffer.Append("a")
	buffer.Append("b")
	buffer.Append("c")

	select {
	case total := <-updates:
		if total != "abc" {
			t.Fatalf("expected %q, got %q", "abc", total)
		}
	case <-time.After(time.Second):
		t.Fatalf("expected a timer flush, got none")
	}

	select {
	case total := <-updates:
		t.Fatalf("expected a single coalesced update, got a second one %q", total)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestRenderBufferNoDeltaIsLost(t *testing.T) {
	recorder := &sinkRecorder{}
	buffer := newRenderBuffer(time.Millisecond, recorder.sink)

	var expected strings.Builder
	for i := 0; i < 100; i++ {
		delta := string(rune('a' + i%26))
		expected.WriteString(delta)
		buffer.Append(delta)
		if i%7 == 0 {
			buffer.Flush()
		}
	}
	buffer.Flush()
	buffer.Close()

	if text := buffer.Text(); text != expected.String() {
		t.Fatalf("expected accumulated %q, got %q", expected.String(), text)
	}
	totals := recorder.snapshot()
	if len(totals) == 0 {
		t.Fatalf("expected sink updates, got none")
	}
	if last := totals[len(totals)-1]; last != expected.String() {
		t.Fatalf("expected final sink update %q, got %q", expected.String(), last)
	}
}

func TestRenderBufferFlushWaitsForInFlightTimerPush(t *testing.T) {
	var (
		mu      sync.Mutex
		applied []string
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	blockFirst := true
	buffer := newRenderBuffer(time.Millisecond, func(total string) {
		if blockFirst {
			blockFirst = false
			close(entered)
			<-release
		}
		mu.Lock()
		applied = append(applied, total)
		mu.Unlock()
	})

	buffer.Append("Hel")
	<-entered

	// The timer push is stalled inside the sink; a concurrent flush with
	// newer text must queue behind it, never overtake it.
	flushed := make(chan struct{})
	go func() {
		buffer.Append("lo")
		buffer.Flush()
		close(flushed)
	}()

	select {
	case <-flushed:
		t.Fatalf("expected flush to wait for the in-flight push")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-flushed

	mu.Lock()
	defer mu.Unlock()

	if len(applied) != 2 || applied[0] != "Hel" || applied[1] != "Hello" {
		t.Fatalf("expected ordered pushes [%q %q], got %q", "Hel", "Hello", applied)
	}
}

func TestRenderBufferCloseStopsPendingFlush(t *testing.T) {
	recorder := &sinkRecorder{}
	buffer := newRenderBuffer(5*time.Millisecond, recorder.sink)

	buffer.Append("discarded")
	buffer.Close()
	time.Sleep(30 * time.Millisecond)

	if totals := recorder.snapshot(); len(totals) != 0 {
		t.Fatalf("expected no sink updates after close, got %q", totals)
	}
}
