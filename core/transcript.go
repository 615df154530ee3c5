package engine

import (
	"sync"

	"github.com/jinzhu/copier"

	"github.com/dinetab/chat-core/core/protocol"
)

// transcript owns the ordered message list for one session. The engine holds
// a transient reference to the active turn's message; everything else is
// immutable once terminal.
type transcript struct {
	mu       sync.RWMutex
	messages []Message
}

func (t *transcript) append(message Message) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.messages = append(t.messages, message)
}

// update mutates the message with the given id in place. Returns false when
// no such message exists.
func (t *transcript) update(id string, mutate func(*Message)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.messages {
		if t.messages[i].ID == id {
			mutate(&t.messages[i])
			return true
		}
	}
	return false
}

// snapshot returns a deep copy of the message list so observers can never
// mutate engine-owned state.
func (t *transcript) snapshot() []Message {
	t.mu.RLock()
	defer t.mu.RUnlock()

	snapshot := make([]Message, 0, len(t.messages))
	if err := copier.CopyWithOption(&snapshot, &t.messages, copier.Option{DeepCopy: true}); err != nil {
		// Shallow fallback; annotation slices stay shared but callers only read.
		snapshot = append(snapshot[:0], t.messages...)
	}
	return snapshot
}

// history returns the most recent terminal messages as wire history turns,
// bounded by window. The active turn's message is excluded.
func (t *transcript) history(window int) []protocol.HistoryTurn {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var history []protocol.HistoryTurn
	for _, message := range t.messages {
		if !message.Status.terminal() || message.Content == "" {
			continue
		}
		// Error-terminal replies carry the synthetic fallback text, which
		// must not leak back to the server as conversation.
		if message.Status == StatusError {
			continue
		}
		role := protocol.RoleUser
		if message.Role == RoleAssistant {
			role = protocol.RoleAssistant
		}
		history = append(history, protocol.HistoryTurn{Role: role, Content: message.Content})
	}

	if window > 0 && len(history) > window {
		history = history[len(history)-window:]
	}
	return history
}
