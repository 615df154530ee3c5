package events

const (
	// KindProposalPending identifies a newly pending cart proposal.
	KindProposalPending Kind = "proposal.pending"
	// KindProposalConfirmed identifies a finished proposal confirmation.
	KindProposalConfirmed Kind = "proposal.confirmed"
	// KindProposalCancelled identifies a discarded proposal.
	KindProposalCancelled Kind = "proposal.cancelled"
)

// ProposalPending signals that a cart proposal awaits confirmation. When a
// newer proposal replaces a pending one, Replaced carries the discarded
// proposal's id.
type ProposalPending struct {
	Base
	ProposalID string
	Replaced   string
}

// NewProposalPending creates a proposal pending event.
func NewProposalPending(proposalID, replaced string) ProposalPending {
	return ProposalPending{Base: NewBase(KindProposalPending), ProposalID: proposalID, Replaced: replaced}
}

// ProposalConfirmed reports the outcome of a proposal confirmation.
type ProposalConfirmed struct {
	Base
	ProposalID string
	Applied    []string
	Skipped    []string
}

// NewProposalConfirmed creates a proposal confirmed event.
func NewProposalConfirmed(proposalID string, applied, skipped []string) ProposalConfirmed {
	return ProposalConfirmed{Base: NewBase(KindProposalConfirmed), ProposalID: proposalID, Applied: applied, Skipped: skipped}
}

// ProposalCancelled signals that the pending proposal was discarded with no
// side effect.
type ProposalCancelled struct {
	Base
	ProposalID string
}

// NewProposalCancelled creates a proposal cancelled event.
func NewProposalCancelled(proposalID string) ProposalCancelled {
	return ProposalCancelled{Base: NewBase(KindProposalCancelled), ProposalID: proposalID}
}
