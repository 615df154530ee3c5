package engine

import "github.com/dinetab/chat-core/core/events"

type eventEmitter func(events.Event)

func noopEventEmitter(events.Event) {}

func newCallbackEventEmitter(callbacks engineCallbacks) eventEmitter {
	return func(event events.Event) {
		if callbacks.onEvent != nil {
			callbacks.onEvent(event)
		}

		switch typedEvent := event.(type) {
		case events.MessageUpdated:
			if callbacks.onMessageUpdated != nil {
				callbacks.onMessageUpdated(typedEvent.MessageID, typedEvent.Content)
			}
		case events.MessageSegment:
			if callbacks.onMessageSegment != nil {
				callbacks.onMessageSegment(typedEvent.Segment)
			}
		case events.TurnCompleted:
			if callbacks.onTurnCompleted != nil {
				callbacks.onTurnCompleted(typedEvent.TurnID)
			}
		case events.TurnFailed:
			if callbacks.onTurnFailed != nil {
				callbacks.onTurnFailed(typedEvent.TurnID, typedEvent.Err)
			}
		case events.TurnCancelled:
			if callbacks.onCancellation != nil {
				callbacks.onCancellation()
			}
		case events.ProposalPending:
			if callbacks.onProposalPending != nil {
				callbacks.onProposalPending(typedEvent.ProposalID)
			}
		}
	}
}
