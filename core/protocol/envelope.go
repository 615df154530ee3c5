// Package protocol implements the wire layer of the conversational stream:
// newline-delimited JSON envelopes, optionally prefix-framed, terminated by a
// sentinel literal. It owns the envelope taxonomy and all field-name
// normalization so historical payload aliases are handled in exactly one
// place.
package protocol

import (
	"github.com/dinetab/chat-core/core/carts"
	"github.com/dinetab/chat-core/core/menus"
)

type Kind string

const (
	KindText             Kind = "text"
	KindStructuredData   Kind = "structured_data"
	KindCartOperation    Kind = "cart_operation"
	KindMenuRefs         Kind = "menu_refs"
	KindSuggestedActions Kind = "suggested_actions"
	KindCartProposal     Kind = "cart_proposal"
	KindMetadata         Kind = "metadata"
	KindComplete         Kind = "complete"
	KindError            Kind = "error"
)

// Envelope is one discrete, typed unit of the wire protocol. Envelopes are
// processed strictly in arrival order within one turn.
type Envelope interface {
	Kind() Kind
}

// TextEnvelope carries a partial token run of the reply text.
type TextEnvelope struct {
	Text string
}

func (TextEnvelope) Kind() Kind { return KindText }

// StructuredDataEnvelope carries catalog items with display metadata.
type StructuredDataEnvelope struct {
	Items []menus.Item
}

func (StructuredDataEnvelope) Kind() Kind { return KindStructuredData }

// CartOperationEnvelope carries an imperative, pre-resolved cart mutation
// that takes effect without confirmation.
type CartOperationEnvelope struct {
	Operation carts.Operation
}

func (CartOperationEnvelope) Kind() Kind { return KindCartOperation }

// MenuRefsEnvelope carries ordered references to catalog entries.
type MenuRefsEnvelope struct {
	Refs []menus.Reference
}

func (MenuRefsEnvelope) Kind() Kind { return KindMenuRefs }

// SuggestedAction is one tappable reply affordance.
type SuggestedAction struct {
	Label   string
	Payload string
}

// SuggestedActionsEnvelope carries ordered suggested replies.
type SuggestedActionsEnvelope struct {
	Actions []SuggestedAction
}

func (SuggestedActionsEnvelope) Kind() Kind { return KindSuggestedActions }

// CartProposalEnvelope carries a candidate set of cart additions that require
// explicit confirmation before any effect.
type CartProposalEnvelope struct {
	Proposal carts.Proposal
}

func (CartProposalEnvelope) Kind() Kind { return KindCartProposal }

// MetadataEnvelope carries reply metadata. Confidence is nil when the server
// did not report one; MessageID, when present, is the server-side identity
// the placeholder message adopts in place.
type MetadataEnvelope struct {
	MessageID  string
	Intent     string
	Confidence *float64
	ToolsUsed  []string
}

func (MetadataEnvelope) Kind() Kind { return KindMetadata }

// CompleteEnvelope marks the turn as complete.
type CompleteEnvelope struct{}

func (CompleteEnvelope) Kind() Kind { return KindComplete }

// ErrorEnvelope carries a server-reported error. Recoverable errors are
// logged only; non-recoverable ones are surfaced to the user. Neither
// terminates the turn by itself.
type ErrorEnvelope struct {
	Message     string
	Recoverable bool
}

func (ErrorEnvelope) Kind() Kind { return KindError }
