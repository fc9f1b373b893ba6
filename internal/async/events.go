package async

import (
	"github.com/google/uuid"

	"github.com/saiputravu/helheim/internal/book"
)

// EventKind tags the variant held by an Event. The tag space is
// extensible (e.g. a future BookSnapshot kind); only TradeBatch has
// defined behavior today.
type EventKind int

const (
	TradeBatch EventKind = iota
)

// Event is the tagged union published on the engine's egress queue. One
// TradeBatch event is published per incoming order that produced at least
// one trade -- this is the natural serialization boundary: consumers see
// the full effect of an order atomically, never a partial batch. ID is a
// diagnostic correlation id for log lines, not part of the matching
// contract -- the book's own order ids are the caller-assigned uint64s
// that matter to P1-P7.
type Event struct {
	ID     uuid.UUID
	Kind   EventKind
	Trades []book.Trade
}

// TopOfBook is the reply payload for QueryTopOfBook: a worker-serialized
// snapshot of the best bid/ask, safe to read concurrently with matching
// because it is computed on the worker goroutine and handed off by value.
type TopOfBook struct {
	BestBid int64
	HasBid  bool
	BestAsk int64
	HasAsk  bool
}
