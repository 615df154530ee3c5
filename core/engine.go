// Package engine implements the client-side streaming conversational
// protocol engine for the ordering assistant: it consumes a chunked response
// of newline-delimited JSON envelopes, drives a per-message state machine,
// batches text updates through a render buffer, and coordinates the
// cart-proposal confirmation workflow.
package engine

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dinetab/chat-core/core/carts"
	"github.com/dinetab/chat-core/core/menus"
	"github.com/dinetab/chat-core/core/protocol"
)

const defaultHistoryWindow = 20

var (
	// ErrTurnActive is returned when a turn is submitted while another one
	// is still streaming. The engine supports one in-flight turn per session.
	ErrTurnActive = errors.New("active turn already set")
	// ErrNoStreamSource is returned when no stream source was configured.
	ErrNoStreamSource = errors.New("no stream source configured")
)

// Engine owns one conversational session: the transcript, the single active
// turn, and the single pending cart proposal. All observer methods return
// copies; the engine never hands out mutable state.
type Engine struct {
	mu sync.Mutex

	sessionID  string
	transcript transcript
	activeTurn *activeTurn
	pending    *carts.Proposal

	source   StreamSource
	cart     carts.Service
	catalog  menus.Catalog
	notifier Notifier

	callbacks engineCallbacks
	emit      eventEmitter

	historyWindow int
	flushInterval time.Duration

	closeOnce sync.Once
}

// TurnHandle identifies one in-flight turn and allows cancelling or waiting
// on it.
type TurnHandle struct {
	TurnID    string
	MessageID string

	cancel context.CancelFunc
	done   chan struct{}
}

// Wait blocks until the turn reaches a terminal state.
func (h *TurnHandle) Wait() {
	<-h.done
}

func New(opts ...Option) *Engine {
	e := &Engine{
		sessionID:     uuid.NewString(),
		historyWindow: defaultHistoryWindow,
		flushInterval: defaultFlushInterval,
		emit:          noopEventEmitter,
	}

	for _, opt := range opts {
		opt(e)
	}
	e.emit = newCallbackEventEmitter(e.callbacks)

	return e
}

// Submit starts a new conversational turn for the given user utterance. It
// returns ErrTurnActive while another turn is streaming; preventing double
// submission is the caller's job, the engine only refuses to interleave.
//
// ctx is the base context for the whole turn; cancelling it aborts the turn
// through the same path as Cancel.
func (e *Engine) Submit(ctx context.Context, text string) (*TurnHandle, error) {
	if e.source == nil {
		return nil, ErrNoStreamSource
	}

	e.mu.Lock()
	if e.activeTurn != nil {
		e.mu.Unlock()
		return nil, ErrTurnActive
	}

	history := e.transcript.history(e.historyWindow)

	turnID := uuid.NewString()
	e.transcript.append(Message{
		ID:      uuid.NewString(),
		Role:    RoleUser,
		Content: text,
		Status:  StatusComplete,
	})

	messageID := uuid.NewString()
	e.transcript.append(Message{
		ID:     messageID,
		Role:   RoleAssistant,
		Status: StatusQueued,
	})

	turnCtx, cancel := context.WithCancel(ctx)
	turn := newActiveTurn(e, turnID, messageID, protocol.TurnRequest{
		SessionID: e.sessionID,
		TurnID:    turnID,
		Message:   text,
		History:   history,
	}, cancel)
	e.activeTurn = turn
	e.mu.Unlock()

	handle := &TurnHandle{TurnID: turnID, MessageID: messageID, cancel: cancel, done: turn.done}
	go turn.run(turnCtx)

	return handle, nil
}

// Cancel requests cooperative cancellation of the given turn. The read loop
// observes it on its next iteration; content flushed so far is preserved and
// no error fallback is shown.
func (e *Engine) Cancel(handle *TurnHandle) {
	if handle == nil {
		return
	}

	e.mu.Lock()
	if e.activeTurn != nil && e.activeTurn.id == handle.TurnID {
		e.activeTurn.cancelled.Store(true)
	}
	e.mu.Unlock()

	handle.cancel()
}

// CancelActiveTurn cancels whichever turn is currently streaming, if any.
func (e *Engine) CancelActiveTurn() {
	e.mu.Lock()
	turn := e.activeTurn
	e.mu.Unlock()

	if turn != nil {
		turn.cancelled.Store(true)
		turn.cancel()
	}
}

// Messages returns a point-in-time copy of the transcript.
func (e *Engine) Messages() []Message {
	return e.transcript.snapshot()
}

// Streaming reports whether a turn is currently in flight.
func (e *Engine) Streaming() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.activeTurn != nil
}

// SessionID returns the session identifier sent with every turn request.
func (e *Engine) SessionID() string {
	return e.sessionID
}

// Close cancels the active turn, if any, and waits for it to finish so no
// dangling read or timer outlives the engine.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		e.mu.Lock()
		turn := e.activeTurn
		e.mu.Unlock()

		if turn != nil {
			turn.cancelled.Store(true)
			turn.cancel()
			<-turn.done
		}
	})
}

// clearActiveTurn detaches a finished turn. The turn id must match so a
// stale goroutine can never clear a newer turn.
func (e *Engine) clearActiveTurn(turnID string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.activeTurn != nil && e.activeTurn.id == turnID {
		e.activeTurn = nil
	}
}
