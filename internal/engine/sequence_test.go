package engine

import (
	"sync"
	"testing"
)

func TestSequencerMonotonic(t *testing.T) {
	s := NewSequencer()
	var last uint64
	for i := 0; i < 1000; i++ {
		n := s.Next()
		if n <= last {
			t.Fatalf("sequence %d not greater than %d", n, last)
		}
		last = n
	}
	if s.Current() != last {
		t.Errorf("Current() = %d, want %d", s.Current(), last)
	}
}

func TestSequencerAdvance(t *testing.T) {
	s := NewSequencer()
	s.Advance(100)
	if got := s.Next(); got != 101 {
		t.Errorf("Next() after Advance(100) = %d, want 101", got)
	}

	// Advancing backwards is a no-op.
	s.Advance(50)
	if got := s.Next(); got != 102 {
		t.Errorf("Next() after stale Advance = %d, want 102", got)
	}
}

func TestSequencerConcurrentUnique(t *testing.T) {
	s := NewSequencer()
	const workers = 8
	const perWorker = 1000

	var wg sync.WaitGroup
	results := make([][]uint64, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			out := make([]uint64, 0, perWorker)
			for i := 0; i < perWorker; i++ {
				out = append(out, s.Next())
			}
			results[w] = out
		}(w)
	}
	wg.Wait()

	seen := make(map[uint64]bool, workers*perWorker)
	for _, out := range results {
		for _, n := range out {
			if seen[n] {
				t.Fatalf("duplicate sequence %d", n)
			}
			seen[n] = true
		}
	}
	if len(seen) != workers*perWorker {
		t.Errorf("expected %d unique sequences, got %d", workers*perWorker, len(seen))
	}
}
