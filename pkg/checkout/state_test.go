package checkout

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStateString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "no_order", NoOrder.String())
	require.Equal(t, "cancelling_then_retrying", CancellingThenRetrying.String())
	require.Equal(t, "state(42)", State(42).String())
}

func TestCanTransition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		from, to State
		ok       bool
	}{
		{NoOrder, Creating, true},
		{Creating, Created, true},
		{Creating, Conflict, true},
		{Conflict, ResumingPending, true},
		{Conflict, CancellingThenRetrying, true},
		{ResumingPending, Created, true},
		{CancellingThenRetrying, Created, true},
		{Created, SubmittingProof, true},
		{SubmittingProof, ProofAccepted, true},
		{SubmittingProof, ProofRejected, true},
		{ProofRejected, SubmittingProof, true},
		{NoOrder, SubmittingProof, false},
		{NoOrder, CancellingThenRetrying, true},
		{Creating, CancellingThenRetrying, false},
		{ProofAccepted, SubmittingProof, false},
		{Created, Conflict, false},
	}
	for _, tt := range tests {
		t.Run(tt.from.String()+"->"+tt.to.String(), func(t *testing.T) {
			require.Equal(t, tt.ok, CanTransition(tt.from, tt.to))
		})
	}
}

func TestSequencer(t *testing.T) {
	t.Parallel()

	var s sequencer
	a, b := s.next(), s.next()
	require.True(t, s.apply(b))
	require.False(t, s.apply(a), "older ticket after newer")
	require.False(t, s.apply(b), "same ticket twice")
	require.True(t, s.apply(s.next()))
}
