package engine

import (
	"context"
	"io"
	"time"

	"github.com/dinetab/chat-core/core/carts"
	"github.com/dinetab/chat-core/core/events"
	"github.com/dinetab/chat-core/core/menus"
	"github.com/dinetab/chat-core/core/protocol"
)

type Option func(*Engine)

// StreamSource opens the response byte stream for one turn. The engine only
// consumes the body; request construction, auth, and retries belong to the
// source. Cancelling ctx must eventually unblock reads on the returned body.
type StreamSource interface {
	Open(ctx context.Context, request protocol.TurnRequest) (io.ReadCloser, error)
}

// Notifier surfaces non-recoverable server errors to the user. Presentation
// (toast, banner, ...) is the implementation's concern.
type Notifier interface {
	Notify(message string)
}

func WithStreamSource(source StreamSource) Option {
	return func(e *Engine) { e.source = source }
}

func WithCartService(cart carts.Service) Option {
	return func(e *Engine) { e.cart = cart }
}

func WithCatalog(catalog menus.Catalog) Option {
	return func(e *Engine) { e.catalog = catalog }
}

func WithNotifier(notifier Notifier) Option {
	return func(e *Engine) { e.notifier = notifier }
}

func WithSessionID(sessionID string) Option {
	return func(e *Engine) { e.sessionID = sessionID }
}

// WithHistoryWindow bounds how many prior messages a turn request carries.
func WithHistoryWindow(window int) Option {
	return func(e *Engine) { e.historyWindow = window }
}

// WithRenderFlushInterval overrides the render buffer batching interval.
func WithRenderFlushInterval(interval time.Duration) Option {
	return func(e *Engine) { e.flushInterval = interval }
}

// WithEventCallback registers a callback for every engine event.
func WithEventCallback(callback func(events.Event)) Option {
	return func(e *Engine) { e.callbacks.onEvent = callback }
}

// WithMessageUpdatedCallback registers a callback for visible-content
// snapshots produced by render buffer flushes.
func WithMessageUpdatedCallback(callback func(messageID, content string)) Option {
	return func(e *Engine) { e.callbacks.onMessageUpdated = callback }
}

// WithMessageSegmentCallback registers a callback for raw streamed text
// deltas, before batching. Most consumers want WithMessageUpdatedCallback.
func WithMessageSegmentCallback(callback func(segment string)) Option {
	return func(e *Engine) { e.callbacks.onMessageSegment = callback }
}

func WithTurnCompletedCallback(callback func(turnID string)) Option {
	return func(e *Engine) { e.callbacks.onTurnCompleted = callback }
}

func WithTurnFailedCallback(callback func(turnID string, err error)) Option {
	return func(e *Engine) { e.callbacks.onTurnFailed = callback }
}

func WithCancellationCallback(callback func()) Option {
	return func(e *Engine) { e.callbacks.onCancellation = callback }
}

// WithProposalPendingCallback registers a callback fired when a cart proposal
// arrives and awaits confirmation, including when it replaces a pending one.
func WithProposalPendingCallback(callback func(proposalID string)) Option {
	return func(e *Engine) { e.callbacks.onProposalPending = callback }
}

type engineCallbacks struct {
	onEvent           func(events.Event)
	onMessageUpdated  func(messageID, content string)
	onMessageSegment  func(segment string)
	onTurnCompleted   func(turnID string)
	onTurnFailed      func(turnID string, err error)
	onCancellation    func()
	onProposalPending func(proposalID string)
}
