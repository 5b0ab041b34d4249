package workflow

import "context"

// TransitionInput carries the evidence a transition needs: approval must
// include a transfer-proof reference, rejection a non-empty reason.
type TransitionInput struct {
	TransferProofRef string
	RejectionReason  string
}

type inputKey struct{}

// WithInput attaches transition input to the context for guard evaluation.
func WithInput(ctx context.Context, input TransitionInput) context.Context {
	return context.WithValue(ctx, inputKey{}, input)
}

// InputFromContext extracts transition input attached by WithInput.
func InputFromContext(ctx context.Context) TransitionInput {
	input, _ := ctx.Value(inputKey{}).(TransitionInput)
	return input
}

func hasTransferProof(ctx context.Context) bool {
	return InputFromContext(ctx).TransferProofRef != ""
}

func hasRejectionReason(ctx context.Context) bool {
	return InputFromContext(ctx).RejectionReason != ""
}

// BuildReimbursementStateMachine creates a machine configured for the
// reimbursement approval lifecycle, positioned at the given state.
// Approve and Reject are also permitted straight from PENDING; advancing
// to PROCESSING first is the normal flow, not a prerequisite.
func BuildReimbursementStateMachine(initial State) StateMachine {
	builder := NewBuilder()

	builder.Configure(StatePending).
		Permit(TriggerStartProcessing, StateProcessing).
		PermitIf(TriggerApprove, StateApproved, hasTransferProof).
		PermitIf(TriggerReject, StateRejected, hasRejectionReason)

	builder.Configure(StateProcessing).
		PermitIf(TriggerApprove, StateApproved, hasTransferProof).
		PermitIf(TriggerReject, StateRejected, hasRejectionReason)

	// APPROVED and REJECTED are terminal, no outgoing transitions.

	return builder.Build(initial)
}
