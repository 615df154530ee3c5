package protocol

// Role identifies the sender of a transcript message on the wire.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// HistoryTurn is one prior exchange included in a turn request.
type HistoryTurn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// TurnRequest is the request body a stream source sends to open a turn. The
// engine builds it from the transcript with a bounded history window; the
// transport owns everything else about the request.
type TurnRequest struct {
	SessionID string        `json:"session_id"`
	TurnID    string        `json:"turn_id"`
	Message   string        `json:"message"`
	History   []HistoryTurn `json:"history,omitempty"`
}
