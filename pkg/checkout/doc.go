// Package checkout drives the cart to order to payment flow on top of
// storesdk.
//
// The Coordinator keeps the client observed state of one checkout:
//
//	NoOrder -> Creating -> Created | Conflict
//	Conflict -> ResumingPending | CancellingThenRetrying -> Created
//	Created -> SubmittingProof -> ProofAccepted | ProofRejected
//	ProofRejected -> SubmittingProof
//
// An order conflict (the user already has an order awaiting payment) is a
// result, not an error, so callers can offer to resume that order or to
// cancel it and try again.
//
// Cart and order responses carry per resource sequence numbers. A
// response that arrives after a newer one for the same resource has been
// applied is returned to its caller but does not replace the snapshot.
package checkout
