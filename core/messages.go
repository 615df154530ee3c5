package engine

import (
	"github.com/dinetab/chat-core/core/menus"
	"github.com/dinetab/chat-core/core/protocol"
)

// Role identifies the sender of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Status is the lifecycle state of a message. Exactly one message per turn is
// mutated while its status is typing or streaming; a terminal status freezes
// the content.
type Status string

const (
	// StatusQueued is the instant after submission, before the stream opened.
	StatusQueued Status = "queued"
	// StatusTyping means the stream is open but no reply text arrived yet.
	StatusTyping Status = "typing"
	// StatusStreaming means reply text is accumulating.
	StatusStreaming Status = "streaming"
	StatusComplete  Status = "complete"
	StatusAborted   Status = "aborted"
	StatusError     Status = "error"
)

// terminal reports whether the status freezes the message.
func (s Status) terminal() bool {
	return s == StatusComplete || s == StatusAborted || s == StatusError
}

// Metadata is the optional reply metadata merged from metadata envelopes.
// Scalar fields are replaced by later envelopes; ToolsUsed is append-only.
type Metadata struct {
	Intent     string
	Confidence float64
	ToolsUsed  []string
}

// Message is a single displayable transcript unit.
type Message struct {
	ID      string
	Role    Role
	Content string
	Status  Status

	MenuRefs         []menus.Reference
	SuggestedActions []protocol.SuggestedAction
	Metadata         *Metadata
}
