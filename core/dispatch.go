package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dinetab/chat-core/core/carts"
	"github.com/dinetab/chat-core/core/events"
	"github.com/dinetab/chat-core/core/menus"
	"github.com/dinetab/chat-core/core/protocol"
)

// dispatch routes one parsed envelope to exactly one handler. The render
// buffer is flushed before any non-text envelope touches the same message so
// text already streamed is visible in order. Returns true on the terminal
// complete envelope.
func (t *activeTurn) dispatch(ctx context.Context, envelope protocol.Envelope) bool {
	switch envelope := envelope.(type) {
	case protocol.TextEnvelope:
		if t.firstTokenAt.IsZero() {
			t.firstTokenAt = time.Now()
		}
		t.markStreaming()
		t.engine.emit(events.NewMessageSegment(t.currentMessageID(), envelope.Text))
		t.buffer.Append(envelope.Text)

	case protocol.StructuredDataEnvelope:
		t.buffer.Flush()
		t.updateMessage(func(message *Message) {
			for _, item := range envelope.Items {
				message.MenuRefs = append(message.MenuRefs, menus.Reference{
					CatalogID:   item.ID,
					DisplayName: item.Name,
					ImageURL:    item.ImageURL,
					PriceCents:  item.PriceCents,
				})
			}
		})
		t.engine.emit(events.NewMessageAnnotationsUpdated(t.currentMessageID()))

	case protocol.MenuRefsEnvelope:
		t.buffer.Flush()
		t.updateMessage(func(message *Message) {
			message.MenuRefs = append(message.MenuRefs, envelope.Refs...)
		})
		t.engine.emit(events.NewMessageAnnotationsUpdated(t.currentMessageID()))

	case protocol.SuggestedActionsEnvelope:
		t.buffer.Flush()
		t.updateMessage(func(message *Message) {
			message.SuggestedActions = append(message.SuggestedActions, envelope.Actions...)
		})
		t.engine.emit(events.NewMessageAnnotationsUpdated(t.currentMessageID()))

	case protocol.MetadataEnvelope:
		t.buffer.Flush()
		t.adoptMessageID(envelope.MessageID)
		t.updateMessage(func(message *Message) {
			if message.Metadata == nil {
				message.Metadata = &Metadata{}
			}
			if envelope.Intent != "" {
				message.Metadata.Intent = envelope.Intent
			}
			if envelope.Confidence != nil {
				message.Metadata.Confidence = *envelope.Confidence
			}
			message.Metadata.ToolsUsed = append(message.Metadata.ToolsUsed, envelope.ToolsUsed...)
		})
		t.engine.emit(events.NewMessageAnnotationsUpdated(t.currentMessageID()))

	case protocol.CartOperationEnvelope:
		// Imperative and pre-resolved: no confirmation step. Applied in the
		// background so text deltas keep flowing while the cart resolves.
		t.applyCartOperation(ctx, envelope.Operation)

	case protocol.CartProposalEnvelope:
		t.engine.storePendingProposal(envelope.Proposal)

	case protocol.ErrorEnvelope:
		logger.WarnContext(ctx, "server reported stream error",
			"turn_id", t.id, "message", envelope.Message, "recoverable", envelope.Recoverable)
		if !envelope.Recoverable && t.engine.notifier != nil {
			t.engine.notifier.Notify(envelope.Message)
		}

	case protocol.CompleteEnvelope:
		return true

	default:
		// Forward-compatible with server-added envelope kinds.
		logger.DebugContext(ctx, "ignoring unhandled envelope kind", "kind", envelope.Kind())
	}

	return false
}

// applyCartOperation delegates an imperative mutation to the cart
// collaborator without awaiting it. A failed or unresolvable operation is
// reported and skipped; it never terminates the turn.
func (t *activeTurn) applyCartOperation(ctx context.Context, operation carts.Operation) {
	if t.engine.cart == nil {
		logger.WarnContext(ctx, "dropping cart operation, no cart service configured", "action", operation.Action)
		return
	}

	// The operation must survive turn completion and cancellation.
	opCtx := context.WithoutCancel(ctx)
	go func() {
		var err error
		switch operation.Action {
		case carts.ActionAdd:
			err = t.engine.cart.Add(opCtx, operation.Line)
		case carts.ActionRemove:
			err = t.engine.cart.Remove(opCtx, operation.Line.CatalogID)
		case carts.ActionUpdate:
			err = t.engine.cart.Update(opCtx, operation.Line)
		case carts.ActionClear:
			err = t.engine.cart.Clear(opCtx)
		default:
			err = fmt.Errorf("unknown cart action %q", operation.Action)
		}

		if err != nil {
			if errors.Is(err, menus.ErrItemNotFound) {
				logger.WarnContext(opCtx, "skipping cart operation for unknown item",
					"action", operation.Action, "catalog_id", operation.Line.CatalogID)
			} else {
				logger.ErrorContext(opCtx, "cart operation failed",
					"action", operation.Action, "catalog_id", operation.Line.CatalogID, "error", err)
			}
			t.engine.emit(events.NewCartOperationFailed(string(operation.Action), operation.Line.CatalogID, err))
			return
		}

		t.engine.emit(events.NewCartOperationApplied(string(operation.Action), operation.Line.CatalogID))
	}()
}
