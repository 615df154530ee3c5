package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"

	"github.com/dinetab/chat-core/core/carts"
	"github.com/dinetab/chat-core/core/events"
)

var (
	// ErrNoPendingProposal is returned when a confirmation arrives with no
	// proposal waiting for it.
	ErrNoPendingProposal = errors.New("no pending cart proposal")
	// ErrNoCartService is returned when a proposal is confirmed without a
	// configured cart collaborator.
	ErrNoCartService = errors.New("no cart service configured")
)

// ProposalOutcome reports a finished confirmation: which lines were applied
// and which were skipped. A skipped line never fails the whole confirmation.
type ProposalOutcome struct {
	ProposalID string
	Applied    []string
	Skipped    []SkippedLine
}

// SkippedLine is one proposed line that could not be applied.
type SkippedLine struct {
	LineID    string
	CatalogID string
	Reason    error
}

// storePendingProposal holds a streamed proposal as the single pending one
// for the session. A newer proposal replaces a pending one (last-write-wins);
// the replacement is logged and carried on the pending event so a UI can
// tell the user the earlier proposal was discarded.
func (e *Engine) storePendingProposal(proposal carts.Proposal) {
	if proposal.ID == "" {
		proposal.ID = uuid.NewString()
	}
	for i := range proposal.Lines {
		if proposal.Lines[i].ID == "" {
			proposal.Lines[i].ID = uuid.NewString()
		}
	}

	e.mu.Lock()
	replaced := ""
	if e.pending != nil {
		replaced = e.pending.ID
	}
	e.pending = &proposal
	e.mu.Unlock()

	if replaced != "" {
		logger.Warn("replacing pending cart proposal", "replaced", replaced, "proposal_id", proposal.ID)
	}
	e.emit(events.NewProposalPending(proposal.ID, replaced))
}

// PendingProposal returns a copy of the pending proposal, or nil.
func (e *Engine) PendingProposal() *carts.Proposal {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.pending == nil {
		return nil
	}

	snapshot := carts.Proposal{}
	if err := copier.CopyWithOption(&snapshot, e.pending, copier.Option{DeepCopy: true}); err != nil {
		snapshot = *e.pending
	}
	return &snapshot
}

// ConfirmProposal applies the selected subset of the pending proposal's
// lines as real cart additions, one at a time. Each line's catalog reference
// is resolved first; a line that fails resolution or rejection by the cart
// is skipped and reported, the rest proceed. The pending proposal is cleared
// whether or not every line applied; an empty selection clears it with no
// mutation at all.
func (e *Engine) ConfirmProposal(ctx context.Context, lineIDs []string) (*ProposalOutcome, error) {
	if e.cart == nil {
		return nil, ErrNoCartService
	}

	e.mu.Lock()
	if e.pending == nil {
		e.mu.Unlock()
		return nil, ErrNoPendingProposal
	}
	proposal := *e.pending
	e.pending = nil
	e.mu.Unlock()

	selected := make(map[string]bool, len(lineIDs))
	for _, lineID := range lineIDs {
		selected[lineID] = true
	}

	outcome := &ProposalOutcome{ProposalID: proposal.ID}
	for _, line := range proposal.Lines {
		if !selected[line.ID] {
			continue
		}

		if err := e.applyProposalLine(ctx, line); err != nil {
			logger.WarnContext(ctx, "skipping proposal line",
				"proposal_id", proposal.ID, "line_id", line.ID, "catalog_id", line.CatalogID, "error", err)
			outcome.Skipped = append(outcome.Skipped, SkippedLine{LineID: line.ID, CatalogID: line.CatalogID, Reason: err})
			continue
		}
		outcome.Applied = append(outcome.Applied, line.ID)
	}

	skipped := make([]string, 0, len(outcome.Skipped))
	for _, line := range outcome.Skipped {
		skipped = append(skipped, line.LineID)
	}
	e.emit(events.NewProposalConfirmed(proposal.ID, outcome.Applied, skipped))

	return outcome, nil
}

// applyProposalLine resolves one line against the catalog and delegates the
// addition to the cart collaborator.
func (e *Engine) applyProposalLine(ctx context.Context, line carts.ProposalLine) error {
	if e.catalog != nil {
		if _, err := e.catalog.Resolve(ctx, line.CatalogID); err != nil {
			return fmt.Errorf("failed to resolve catalog reference: %w", err)
		}
	}

	if err := e.cart.Add(ctx, line.Line()); err != nil {
		return fmt.Errorf("failed to add line to cart: %w", err)
	}
	return nil
}

// CancelProposal discards the pending proposal with no side effect. Calling
// it with nothing pending is a no-op.
func (e *Engine) CancelProposal() {
	e.mu.Lock()
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	if pending == nil {
		return
	}
	e.emit(events.NewProposalCancelled(pending.ID))
}
