package checkout

// sequencer orders responses for one logical resource. Every request takes
// a ticket; a response is applied only if no later ticket was applied
// first. Not safe for concurrent use on its own.
type sequencer struct {
	issued  uint64
	applied uint64
}

func (s *sequencer) next() uint64 {
	s.issued++
	return s.issued
}

// apply reports whether the response for ticket is the newest seen, and
// records it.
func (s *sequencer) apply(ticket uint64) bool {
	if ticket <= s.applied {
		return false
	}
	s.applied = ticket
	return true
}
