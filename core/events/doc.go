// Package events defines the typed engine observer contract.
//
// Event kinds are grouped by receiver-facing namespaces:
//
//   - message.*
//   - turn_state.*
//   - proposal.*
//   - cart.*
//
// Semantics used across the package:
//
//   - Updated: mutable point-in-time snapshot that can change over time.
//   - Segment: append-only text piece emitted in stream order.
//   - Pending: state awaiting an explicit user resolution.
//
// message events
//
//   - MessageUpdated (message.updated): visible content snapshot for a
//     message after a render-buffer flush.
//   - MessageSegment (message.segment): raw streamed text delta, emitted
//     before batching. Most consumers want MessageUpdated instead.
//   - MessageAnnotationsUpdated (message.annotations_updated): menu
//     references, suggested actions, or metadata merged into a message.
//
// turn_state events
//
//   - TurnStarted (turn_state.started): a submitted turn opened its stream.
//   - TurnCompleted (turn_state.completed): turn reached its terminal
//     complete state.
//   - TurnCancelled (turn_state.cancelled): turn was cancelled; partial
//     content is preserved.
//   - TurnFailed (turn_state.failed): turn terminated on a transport-level
//     failure.
//
// proposal events
//
//   - ProposalPending (proposal.pending): a cart proposal arrived and awaits
//     confirmation. A second pending proposal replaces the first and emits
//     this event again.
//   - ProposalConfirmed (proposal.confirmed): a confirmation finished;
//     includes applied and skipped line ids.
//   - ProposalCancelled (proposal.cancelled): the pending proposal was
//     discarded with no side effect.
//
// cart events
//
//   - CartOperationApplied (cart.operation_applied): an imperative cart
//     operation was delegated to the cart collaborator successfully.
//   - CartOperationFailed (cart.operation_failed): the cart collaborator
//     rejected an imperative operation; the turn continues.
package events
