package engine

import "sync/atomic"

// Sequencer issues the venue-wide monotonic sequence. It stamps order
// admission (the time-priority tie-break), every trade, and every
// outbound event, and doubles as the durability/replay cursor.
type Sequencer struct {
	n atomic.Uint64
}

// NewSequencer creates a sequencer starting at zero.
func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Next returns the next sequence value. Safe for concurrent use.
func (s *Sequencer) Next() uint64 {
	return s.n.Add(1)
}

// Current returns the last issued sequence value.
func (s *Sequencer) Current() uint64 {
	return s.n.Load()
}

// Advance raises the sequencer floor to at least seq. Used when
// replaying the journal so freshly issued sequences never collide
// with persisted ones.
func (s *Sequencer) Advance(seq uint64) {
	for {
		cur := s.n.Load()
		if cur >= seq {
			return
		}
		if s.n.CompareAndSwap(cur, seq) {
			return
		}
	}
}
