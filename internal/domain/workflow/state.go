// Package workflow implements the reimbursement approval state machine:
// PENDING -> PROCESSING -> APPROVED | REJECTED.
package workflow

// State is a reimbursement lifecycle state.
type State string

const (
	StatePending    State = "PENDING"
	StateProcessing State = "PROCESSING"
	StateApproved   State = "APPROVED"
	StateRejected   State = "REJECTED"
)

var validStates = map[State]bool{
	StatePending:    true,
	StateProcessing: true,
	StateApproved:   true,
	StateRejected:   true,
}

var terminalStates = map[State]bool{
	StateApproved: true,
	StateRejected: true,
}

// IsValid returns true if the state is a known lifecycle state.
func (s State) IsValid() bool {
	return validStates[s]
}

// IsTerminal returns true if no further transitions are allowed.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state.
func (s State) String() string {
	return string(s)
}

// Trigger is an event that can cause a state transition.
type Trigger string

const (
	TriggerStartProcessing Trigger = "START_PROCESSING"
	TriggerApprove         Trigger = "APPROVE"
	TriggerReject          Trigger = "REJECT"
)

// String returns the string representation of the trigger.
func (t Trigger) String() string {
	return string(t)
}
