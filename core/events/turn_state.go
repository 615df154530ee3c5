package events

const (
	// KindTurnStarted identifies a turn whose stream was opened.
	KindTurnStarted Kind = "turn_state.started"
	// KindTurnCompleted identifies a successfully completed turn.
	KindTurnCompleted Kind = "turn_state.completed"
	// KindTurnCancelled identifies a cancelled turn.
	KindTurnCancelled Kind = "turn_state.cancelled"
	// KindTurnFailed identifies a turn terminated by a transport failure.
	KindTurnFailed Kind = "turn_state.failed"
)

// TurnStarted signals that a submitted turn opened its stream.
type TurnStarted struct {
	Base
	TurnID string
}

// NewTurnStarted creates a turn started event.
func NewTurnStarted(turnID string) TurnStarted {
	return TurnStarted{Base: NewBase(KindTurnStarted), TurnID: turnID}
}

// TurnCompleted signals that a turn reached its terminal complete state.
type TurnCompleted struct {
	Base
	TurnID string
}

// NewTurnCompleted creates a turn completed event.
func NewTurnCompleted(turnID string) TurnCompleted {
	return TurnCompleted{Base: NewBase(KindTurnCompleted), TurnID: turnID}
}

// TurnCancelled signals that a turn was cancelled. Content flushed before the
// cancellation point is preserved.
type TurnCancelled struct {
	Base
	TurnID string
}

// NewTurnCancelled creates a turn cancelled event.
func NewTurnCancelled(turnID string) TurnCancelled {
	return TurnCancelled{Base: NewBase(KindTurnCancelled), TurnID: turnID}
}

// TurnFailed signals that a turn terminated on a transport-level failure.
type TurnFailed struct {
	Base
	TurnID string
	Err    error
}

// NewTurnFailed creates a turn failed event.
func NewTurnFailed(turnID string, err error) TurnFailed {
	return TurnFailed{Base: NewBase(KindTurnFailed), TurnID: turnID, Err: err}
}
