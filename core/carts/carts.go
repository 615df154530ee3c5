// Package carts defines the cart collaborator contract, the imperative
// operations the server can stream, and the proposal model that requires
// explicit confirmation before any mutation.
package carts

import "context"

// Action discriminates imperative cart operations.
type Action string

const (
	ActionAdd    Action = "add"
	ActionRemove Action = "remove"
	ActionUpdate Action = "update"
	ActionClear  Action = "clear"
)

// Line is one cart line item, already resolved against the catalog.
type Line struct {
	CatalogID      string   `json:"catalog_id"`
	Variant        string   `json:"variant,omitempty"`
	Quantity       int      `json:"quantity"`
	Customizations []string `json:"customizations,omitempty"`
	Note           string   `json:"note,omitempty"`
}

// Operation is an imperative, pre-resolved cart mutation streamed by the
// server. Unlike a Proposal it takes effect without confirmation.
type Operation struct {
	Action Action `json:"action"`
	Line   Line   `json:"item"`
}

// Service is the external cart collaborator the engine delegates mutations
// to. Implementations own persistence and pricing.
type Service interface {
	Add(ctx context.Context, line Line) error
	Remove(ctx context.Context, catalogID string) error
	Update(ctx context.Context, line Line) error
	Clear(ctx context.Context) error
}

// Proposal is a candidate set of cart additions pending user confirmation.
// At most one proposal is pending per session at any time.
type Proposal struct {
	ID    string         `json:"id"`
	Lines []ProposalLine `json:"lines"`
}

// ProposalLine is one proposed addition. ID is assigned by the engine when
// the proposal is stored so confirmations can select a subset of lines.
type ProposalLine struct {
	ID             string   `json:"id,omitempty"`
	CatalogID      string   `json:"catalog_id"`
	Variant        string   `json:"variant,omitempty"`
	Quantity       int      `json:"quantity"`
	Customizations []string `json:"customizations,omitempty"`
	Note           string   `json:"note,omitempty"`
}

// Line converts a proposal line into the cart line that would be applied on
// confirmation.
func (l ProposalLine) Line() Line {
	return Line{
		CatalogID:      l.CatalogID,
		Variant:        l.Variant,
		Quantity:       l.Quantity,
		Customizations: l.Customizations,
		Note:           l.Note,
	}
}
