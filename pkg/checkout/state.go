package checkout

import (
	"fmt"
	"time"
)

// State is the client side view of an order during checkout.
type State int

const (
	NoOrder State = iota
	Creating
	Created
	Conflict
	ResumingPending
	CancellingThenRetrying
	SubmittingProof
	ProofAccepted
	ProofRejected
)

var stateNames = [...]string{
	NoOrder:                "no_order",
	Creating:               "creating",
	Created:                "created",
	Conflict:               "conflict",
	ResumingPending:        "resuming_pending",
	CancellingThenRetrying: "cancelling_then_retrying",
	SubmittingProof:        "submitting_proof",
	ProofAccepted:          "proof_accepted",
	ProofRejected:          "proof_rejected",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// InFlight reports whether a call is running in this state.
func (s State) InFlight() bool {
	switch s {
	case Creating, ResumingPending, CancellingThenRetrying, SubmittingProof:
		return true
	}
	return false
}

// transitions lists the edges of the checkout state machine. Settled
// states may also start over at NoOrder when a new attempt begins.
var transitions = map[State][]State{
	NoOrder:                {Creating, ResumingPending, CancellingThenRetrying},
	Creating:               {Created, Conflict, NoOrder},
	Conflict:               {ResumingPending, CancellingThenRetrying},
	ResumingPending:        {Created, Conflict, NoOrder},
	CancellingThenRetrying: {Created, Conflict, NoOrder},
	Created:                {SubmittingProof},
	SubmittingProof:        {ProofAccepted, ProofRejected},
	ProofRejected:          {SubmittingProof},
	ProofAccepted:          {},
}

// CanTransition reports whether to directly follows from.
func CanTransition(from, to State) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition is one recorded state change.
type Transition struct {
	From State
	To   State
	At   time.Time

	// Order is the order number involved, if any.
	Order string
}

// TransitionError is returned when an operation is not valid in the
// current state.
type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("checkout: cannot go from %s to %s", e.From, e.To)
}
