package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dinetab/chat-core/core/events"
	"github.com/dinetab/chat-core/core/protocol"
)

const readBufferSize = 4096

// errorFallbackText replaces the visible reply when a turn fails at the
// transport level. The user's utterance stays in the transcript.
const errorFallbackText = "Sorry, something went wrong while answering. Please try again."

// activeTurn owns one in-flight conversational turn: the sequential read
// loop, line reassembly, envelope dispatch, and the terminal transition.
// There is no parallel chunk processing; arrival order is processing order.
type activeTurn struct {
	engine  *Engine
	id      string
	request protocol.TurnRequest

	mu        sync.Mutex
	messageID string

	buffer      *renderBuffer
	reassembler protocol.LineReassembler

	cancel    context.CancelFunc
	cancelled atomic.Bool
	done      chan struct{}

	startedAt     time.Time
	firstTokenAt  time.Time
	envelopeCount int
}

func newActiveTurn(e *Engine, turnID, messageID string, request protocol.TurnRequest, cancel context.CancelFunc) *activeTurn {
	turn := &activeTurn{
		engine:    e,
		id:        turnID,
		request:   request,
		messageID: messageID,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	turn.buffer = newRenderBuffer(e.flushInterval, turn.pushContent)
	return turn
}

// run is the sequential pull-based read loop: read chunk, reassemble lines,
// parse, dispatch, repeat. Cancellation is observed between reads and goes
// through the same termination path as a natural stream end.
func (t *activeTurn) run(ctx context.Context) {
	defer close(t.done)

	ctx, span := tracer.Start(ctx, "process turn")
	defer span.End()
	span.SetAttributes(attribute.String("turn.id", t.id))
	t.startedAt = time.Now()

	body, err := t.engine.source.Open(ctx, t.request)
	if err != nil {
		if t.isCancellation(ctx) {
			t.finishAborted()
			return
		}
		t.finishFailed(ctx, fmt.Errorf("failed to open stream: %w", err))
		return
	}
	defer body.Close()

	// Closing the body unblocks a read that would otherwise outlive the
	// context.
	cancelHook := withContextCancelHook(ctx, func() { body.Close() })
	defer close(cancelHook)

	t.setStatus(StatusTyping)
	t.engine.emit(events.NewTurnStarted(t.id))

	chunk := make([]byte, readBufferSize)
	for {
		n, err := body.Read(chunk)
		if n > 0 {
			for _, line := range t.reassembler.Feed(chunk[:n]) {
				if t.handleLine(ctx, line) {
					t.finishComplete(span)
					return
				}
			}
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				// A non-empty trailing fragment is one final complete line.
				if line, ok := t.reassembler.Flush(); ok && t.handleLine(ctx, line) {
					t.finishComplete(span)
					return
				}
				if t.isCancellation(ctx) {
					t.finishAborted()
					return
				}
				t.finishComplete(span)
				return
			}
			if t.isCancellation(ctx) {
				t.finishAborted()
				return
			}
			t.finishFailed(ctx, fmt.Errorf("failed to read stream: %w", err))
			return
		}

		if t.isCancellation(ctx) {
			t.finishAborted()
			return
		}
	}
}

// handleLine parses one complete line and dispatches the envelope. Returns
// true when the turn reached its terminal envelope or the stream sentinel.
func (t *activeTurn) handleLine(ctx context.Context, line string) bool {
	envelope, err := protocol.Parse(line)
	if err != nil {
		if errors.Is(err, protocol.ErrStreamDone) {
			return true
		}
		// Single malformed lines must not abort an otherwise healthy turn.
		logger.WarnContext(ctx, "skipping malformed stream line", "error", err)
		return false
	}
	if envelope == nil {
		return false
	}

	t.envelopeCount++
	return t.dispatch(ctx, envelope)
}

func (t *activeTurn) isCancellation(ctx context.Context) bool {
	return t.cancelled.Load() || ctx.Err() != nil
}

// pushContent is the render buffer sink: it writes the accumulated text into
// the visible message and notifies observers.
func (t *activeTurn) pushContent(total string) {
	messageID := t.currentMessageID()
	t.engine.transcript.update(messageID, func(message *Message) {
		if message.Status.terminal() {
			return
		}
		message.Content = total
	})
	t.engine.emit(events.NewMessageUpdated(messageID, total))
}

func (t *activeTurn) currentMessageID() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.messageID
}

// adoptMessageID re-parents the visible placeholder onto the server-side
// message identity in place, so the typing indicator becomes the streaming
// message without a visual pop.
func (t *activeTurn) adoptMessageID(serverID string) {
	t.mu.Lock()
	previous := t.messageID
	if serverID == "" || serverID == previous {
		t.mu.Unlock()
		return
	}
	t.messageID = serverID
	t.mu.Unlock()

	t.engine.transcript.update(previous, func(message *Message) {
		message.ID = serverID
	})
}

func (t *activeTurn) setStatus(status Status) {
	t.engine.transcript.update(t.currentMessageID(), func(message *Message) {
		if message.Status.terminal() {
			return
		}
		message.Status = status
	})
}

// markStreaming transitions queued/typing to streaming on the first text
// delta.
func (t *activeTurn) markStreaming() {
	t.engine.transcript.update(t.currentMessageID(), func(message *Message) {
		if message.Status == StatusQueued || message.Status == StatusTyping {
			message.Status = StatusStreaming
		}
	})
}

func (t *activeTurn) updateMessage(mutate func(*Message)) {
	t.engine.transcript.update(t.currentMessageID(), func(message *Message) {
		if message.Status.terminal() {
			return
		}
		mutate(message)
	})
}

// finishComplete is the single natural termination path: one last
// synchronous flush, then the terminal transition. Cleanup is identical
// regardless of how the stream ended.
func (t *activeTurn) finishComplete(span trace.Span) {
	t.buffer.Flush()
	t.buffer.Close()
	t.setStatus(StatusComplete)
	t.engine.clearActiveTurn(t.id)
	span.SetAttributes(attribute.Int("turn.envelopes", t.envelopeCount))
	if !t.firstTokenAt.IsZero() {
		span.SetAttributes(attribute.Int64("turn.first_token_ms", t.firstTokenAt.Sub(t.startedAt).Milliseconds()))
	}
	t.engine.emit(events.NewTurnCompleted(t.id))
}

// finishAborted preserves everything flushed up to the cancellation point.
// No fallback text is shown for a user-requested cancellation.
func (t *activeTurn) finishAborted() {
	t.buffer.Flush()
	t.buffer.Close()
	t.setStatus(StatusAborted)
	t.engine.clearActiveTurn(t.id)
	t.engine.emit(events.NewTurnCancelled(t.id))
}

// finishFailed replaces the visible content with the fixed fallback text and
// keeps the user's utterance in the transcript.
func (t *activeTurn) finishFailed(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	logger.ErrorContext(ctx, "turn failed", "turn_id", t.id, "error", err)

	t.buffer.Close()
	messageID := t.currentMessageID()
	t.engine.transcript.update(messageID, func(message *Message) {
		message.Content = errorFallbackText
		message.Status = StatusError
	})
	t.engine.clearActiveTurn(t.id)
	t.engine.emit(events.NewMessageUpdated(messageID, errorFallbackText))
	t.engine.emit(events.NewTurnFailed(t.id, err))
}
