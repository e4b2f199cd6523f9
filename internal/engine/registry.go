package engine

import (
	"sync"

	"github.com/soletrade/venue/internal/domain"
)

// Registry maps instrument symbols to their order books and owns the
// instrument lifecycle. Requests for different symbols never serialize
// against each other: the registry lock guards only the map, while each
// book serializes its own matching.
type Registry struct {
	seq     *Sequencer
	mu      sync.RWMutex
	books   map[string]*OrderBook
	retired map[string]bool
}

// NewRegistry creates an empty registry sharing the venue sequencer.
func NewRegistry(seq *Sequencer) *Registry {
	return &Registry{
		seq:     seq,
		books:   make(map[string]*OrderBook),
		retired: make(map[string]bool),
	}
}

// Activate creates the order book for a newly listed instrument.
// Symbols are never reused: re-activating a live or retired symbol is
// rejected. A non-nil onReady runs before the registry lock is
// released, so no Get can observe the book until it returns; callers
// use it to journal the activation ahead of any order event for the
// symbol.
func (r *Registry) Activate(instrument *domain.Instrument, onReady func(*OrderBook)) (*OrderBook, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.retired[instrument.Symbol] {
		return nil, domain.ErrInstrumentRetired
	}
	if _, ok := r.books[instrument.Symbol]; ok {
		return nil, domain.ErrInstrumentExists
	}
	book := NewOrderBook(instrument, r.seq)
	r.books[instrument.Symbol] = book
	if onReady != nil {
		onReady(book)
	}
	return book, nil
}

// Get routes a request to the book for the given symbol.
func (r *Registry) Get(symbol string) (*OrderBook, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	book, ok := r.books[symbol]
	if !ok {
		return nil, domain.ErrUnknownInstrument
	}
	return book, nil
}

// Retire removes an instrument from trading. The book is drained: all
// resting orders are canceled and returned so the reporter can emit one
// Canceled outcome per order. Subsequent submissions for the symbol are
// rejected with ErrUnknownInstrument.
func (r *Registry) Retire(symbol string) ([]*domain.Order, error) {
	r.mu.Lock()
	book, ok := r.books[symbol]
	if ok {
		delete(r.books, symbol)
		r.retired[symbol] = true
	}
	r.mu.Unlock()

	if !ok {
		return nil, domain.ErrUnknownInstrument
	}
	return book.Drain(), nil
}

// Instruments lists the reference data of all live instruments.
func (r *Registry) Instruments() []*domain.Instrument {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Instrument, 0, len(r.books))
	for _, book := range r.books {
		out = append(out, book.Instrument())
	}
	return out
}
