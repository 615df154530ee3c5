package events

import "time"

// Kind is the namespaced event discriminator, e.g. "message.updated" or
// "proposal.pending". The full index lives in doc.go.
type Kind string

// Event is implemented by everything the engine emits. Consumers either
// switch on the concrete type or route on Kind.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// Base carries the kind and emission time shared by all engine events.
type Base struct {
	kind      Kind
	timestamp time.Time
}

// NewBase stamps an event with its kind and the time it was emitted.
func NewBase(kind Kind) Base {
	return Base{kind: kind, timestamp: time.Now()}
}

func (b Base) Kind() Kind {
	return b.kind
}

// Timestamp is the emission time, which for streamed text events also fixes
// the arrival order a consumer can rely on.
func (b Base) Timestamp() time.Time {
	return b.timestamp
}
