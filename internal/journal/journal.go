// Package journal persists the engine's outbound events to a pebble
// store, keyed by the venue-wide sequence. Appends are handed off to a
// single writer goroutine so the matching critical section never waits
// on a database round trip; durability is eventual, at-least-once, and
// the in-memory book remains authoritative. Replay rebuilds book state
// after a restart.
package journal

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/soletrade/venue/internal/domain"
)

const appendBuffer = 4096

var (
	eventPrefix   = []byte("e:")
	checkpointKey = []byte("checkpoint")
)

func eventKey(seq uint64) []byte {
	key := make([]byte, len(eventPrefix)+8)
	copy(key, eventPrefix)
	binary.BigEndian.PutUint64(key[len(eventPrefix):], seq)
	return key
}

// Journal is a durable, idempotent event log. Writes to the same
// sequence key overwrite identically, so re-appending after a crash is
// harmless.
type Journal struct {
	db     *pebble.DB
	logger *slog.Logger

	ch      chan domain.Event
	done    chan struct{}
	wg      sync.WaitGroup
	durable atomic.Uint64 // last sequence written to pebble
}

// Open opens (or creates) a journal in dir and starts the writer and
// checkpointer goroutines. checkpointInterval bounds how stale the
// recorded checkpoint may be.
func Open(dir string, checkpointInterval time.Duration, logger *slog.Logger) (*Journal, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	j := &Journal{
		db:     db,
		logger: logger,
		ch:     make(chan domain.Event, appendBuffer),
		done:   make(chan struct{}),
	}

	j.wg.Add(2)
	go j.writeLoop()
	go j.checkpointLoop(checkpointInterval)

	return j, nil
}

// Append enqueues an event for persistence. It returns immediately
// unless the writer has fallen a full buffer behind, in which case the
// send applies backpressure rather than dropping the event.
func (j *Journal) Append(ev domain.Event) {
	j.ch <- ev
}

func (j *Journal) writeLoop() {
	defer j.wg.Done()
	for ev := range j.ch {
		data, err := json.Marshal(ev)
		if err != nil {
			j.logger.Error("journal encode failed",
				slog.Uint64("sequence", ev.Sequence),
				slog.String("error", err.Error()))
			continue
		}
		if err := j.db.Set(eventKey(ev.Sequence), data, pebble.Sync); err != nil {
			j.logger.Error("journal write failed",
				slog.Uint64("sequence", ev.Sequence),
				slog.String("error", err.Error()))
			continue
		}
		j.durable.Store(ev.Sequence)
	}
}

func (j *Journal) checkpointLoop(interval time.Duration) {
	defer j.wg.Done()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.writeCheckpoint()
		case <-j.done:
			return
		}
	}
}

func (j *Journal) writeCheckpoint() {
	seq := j.durable.Load()
	if seq == 0 {
		return
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seq)
	if err := j.db.Set(checkpointKey, buf[:], pebble.Sync); err != nil {
		j.logger.Error("journal checkpoint failed", slog.String("error", err.Error()))
	}
}

// Checkpoint returns the last checkpointed sequence, or zero if none
// has been recorded.
func (j *Journal) Checkpoint() (uint64, error) {
	val, closer, err := j.db.Get(checkpointKey)
	if err != nil {
		if err == pebble.ErrNotFound {
			return 0, nil
		}
		return 0, err
	}
	defer closer.Close()
	if len(val) != 8 {
		return 0, fmt.Errorf("corrupt checkpoint: %d bytes", len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

// Replay invokes fn for every persisted event with sequence >= from,
// in sequence order. Returns the last sequence seen.
func (j *Journal) Replay(from uint64, fn func(domain.Event) error) (uint64, error) {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: eventKey(from),
		UpperBound: []byte("e;"), // one past the "e:" prefix
	})
	if err != nil {
		return 0, fmt.Errorf("replay iterator: %w", err)
	}
	defer iter.Close()

	var last uint64
	for iter.First(); iter.Valid(); iter.Next() {
		var ev domain.Event
		if err := json.Unmarshal(iter.Value(), &ev); err != nil {
			return last, fmt.Errorf("decode event at %x: %w", iter.Key(), err)
		}
		if ev.Sequence <= last && last != 0 {
			// Duplicate delivery from an at-least-once writer.
			continue
		}
		if err := fn(ev); err != nil {
			return last, err
		}
		last = ev.Sequence
	}
	return last, iter.Error()
}

// LastSequence returns the highest persisted event sequence.
func (j *Journal) LastSequence() (uint64, error) {
	iter, err := j.db.NewIter(&pebble.IterOptions{
		LowerBound: eventKey(0),
		UpperBound: []byte("e;"),
	})
	if err != nil {
		return 0, err
	}
	defer iter.Close()

	if !iter.Last() {
		return 0, iter.Error()
	}
	key := iter.Key()
	if len(key) != len(eventPrefix)+8 {
		return 0, fmt.Errorf("corrupt event key %x", key)
	}
	return binary.BigEndian.Uint64(key[len(eventPrefix):]), nil
}

// Close drains pending appends, records a final checkpoint, and closes
// the store.
func (j *Journal) Close() error {
	close(j.ch)
	close(j.done)
	j.wg.Wait()
	j.writeCheckpoint()
	return j.db.Close()
}
