package events

const (
	// KindMessageUpdated identifies a visible-content snapshot update.
	KindMessageUpdated Kind = "message.updated"
	// KindMessageSegment identifies a raw streamed text delta.
	KindMessageSegment Kind = "message.segment"
	// KindMessageAnnotationsUpdated identifies merged message annotations.
	KindMessageAnnotationsUpdated Kind = "message.annotations_updated"
)

// MessageUpdated carries the full visible content of a message after a
// render-buffer flush.
type MessageUpdated struct {
	Base
	MessageID string
	Content   string
}

// NewMessageUpdated creates a message content snapshot event.
func NewMessageUpdated(messageID, content string) MessageUpdated {
	return MessageUpdated{Base: NewBase(KindMessageUpdated), MessageID: messageID, Content: content}
}

// MessageSegment carries a single streamed text delta in arrival order.
type MessageSegment struct {
	Base
	MessageID string
	Segment   string
}

// NewMessageSegment creates a streamed text delta event.
func NewMessageSegment(messageID, segment string) MessageSegment {
	return MessageSegment{Base: NewBase(KindMessageSegment), MessageID: messageID, Segment: segment}
}

// MessageAnnotationsUpdated signals that menu references, suggested actions,
// or metadata were merged into a message.
type MessageAnnotationsUpdated struct {
	Base
	MessageID string
}

// NewMessageAnnotationsUpdated creates an annotations update event.
func NewMessageAnnotationsUpdated(messageID string) MessageAnnotationsUpdated {
	return MessageAnnotationsUpdated{Base: NewBase(KindMessageAnnotationsUpdated), MessageID: messageID}
}
