package book

import (
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tidwall/btree"
)

// levels is one side's ladder: an ordered map from price to the level
// resting at that price. The comparator alone decides iteration order, so
// "best" is always btree.Min on both ladders thanks to the opposite
// orderings used by newBids and newAsks.
type levels = btree.BTreeG[*level]

// locator is the id_index's value: where a resting order currently lives,
// so Cancel never has to scan the whole book.
type locator struct {
	side  Side
	price int64
}

// Book is the resident order book for a single instrument. It is not safe
// for concurrent use -- callers must confine all mutation, and all reads,
// to a single goroutine. async.Engine provides that confinement via its
// worker.
type Book struct {
	bids *levels
	asks *levels

	idIndex map[uint64]locator
}

// New constructs an empty book. bids iterate highest price first, asks
// iterate lowest price first -- the two orderings that make Min() on
// either ladder always return the best level.
func New() *Book {
	bids := btree.NewBTreeG(func(a, b *level) bool { return a.price > b.price })
	asks := btree.NewBTreeG(func(a, b *level) bool { return a.price < b.price })
	return &Book{
		bids:    bids,
		asks:    asks,
		idIndex: make(map[uint64]locator),
	}
}

// AddOrder submits a new order to the book. It is matched against the
// opposite ladder first; the book only sees a new resting id if some
// quantity survives crossing. Returns the trades produced by the crossing
// loop, in execution order.
//
// Returns ErrInvalidOrder for a non-positive quantity or price or an
// unknown side, and ErrDuplicateID if order.ID is already resting on
// either side.
func (b *Book) AddOrder(order Order) ([]Trade, error) {
	if order.Qty <= 0 || order.Price <= 0 {
		return nil, ErrInvalidOrder
	}
	if order.Side != Buy && order.Side != Sell {
		return nil, ErrInvalidOrder
	}
	if _, dup := b.idIndex[order.ID]; dup {
		return nil, ErrDuplicateID
	}
	if order.TS.IsZero() {
		order.TS = time.Now()
	}

	o := &order
	var trades []Trade

	switch o.Side {
	case Buy:
		trades = b.cross(o, b.asks, func(restingPx int64) bool { return o.Price >= restingPx })
	case Sell:
		trades = b.cross(o, b.bids, func(restingPx int64) bool { return o.Price <= restingPx })
	}

	if o.Qty > 0 {
		b.rest(o)
	}
	return trades, nil
}

// cross sweeps the opposite ladder while the incoming order still has
// quantity and the best resting level is crossable. crossable reports
// whether the incoming order's limit can trade against a given resting
// price; it encodes the only asymmetry between the buy and sell paths.
func (b *Book) cross(taker *Order, opposite *levels, crossable func(restingPrice int64) bool) []Trade {
	var trades []Trade

	for taker.Qty > 0 {
		best, ok := opposite.MinMut()
		if !ok || !crossable(best.price) {
			break
		}

		for taker.Qty > 0 && !best.empty() {
			resting := best.front()
			traded := min(taker.Qty, resting.Qty)

			trades = append(trades, Trade{
				MakerID: resting.ID,
				TakerID: taker.ID,
				Price:   resting.Price,
				Qty:     traded,
			})

			taker.Qty -= traded
			resting.Qty -= traded

			if resting.Qty == 0 {
				delete(b.idIndex, resting.ID)
				best.popFront()
			} else {
				// Resting order kept quantity: the taker must be drained.
				break
			}
		}

		if best.empty() {
			opposite.Delete(best)
			log.Debug().Int64("price", best.price).Msg("book: level erased")
		}
	}

	return trades
}

// rest enqueues the unfilled remainder of order at the tail of its price
// level, creating the level if this is the first order to arrive there.
func (b *Book) rest(o *Order) {
	var ladder *levels
	switch o.Side {
	case Buy:
		ladder = b.bids
	case Sell:
		ladder = b.asks
	}

	if lv, ok := ladder.GetMut(&level{price: o.Price}); ok {
		lv.pushBack(o)
	} else {
		ladder.Set(newLevel(o.Price, o))
		log.Debug().Int64("price", o.Price).Str("side", o.Side.String()).Msg("book: level created")
	}
	b.idIndex[o.ID] = locator{side: o.Side, price: o.Price}
}

// Cancel removes a resting order by id. Returns true iff an order was
// actually removed; a miss (unknown or already-filled/cancelled id) is a
// normal false, not an error.
func (b *Book) Cancel(id uint64) bool {
	loc, ok := b.idIndex[id]
	if !ok {
		return false
	}

	var ladder *levels
	switch loc.side {
	case Buy:
		ladder = b.bids
	case Sell:
		ladder = b.asks
	}

	lv, ok := ladder.GetMut(&level{price: loc.price})
	if !ok {
		// id_index pointed at a level that doesn't exist: an
		// invariant violation, not a runtime condition. Log it and
		// fail soft rather than panic.
		log.Error().Uint64("id", id).Msg("book: id_index pointed at a missing level")
		delete(b.idIndex, id)
		return false
	}

	if !lv.removeID(id) {
		log.Error().Uint64("id", id).Msg("book: id_index pointed at a level missing the order")
		delete(b.idIndex, id)
		return false
	}

	delete(b.idIndex, id)
	if lv.empty() {
		ladder.Delete(lv)
	}
	return true
}

// BestBid returns the highest resting bid price, if any.
func (b *Book) BestBid() (int64, bool) {
	lv, ok := b.bids.Min()
	if !ok {
		return 0, false
	}
	return lv.price, true
}

// BestAsk returns the lowest resting ask price, if any.
func (b *Book) BestAsk() (int64, bool) {
	lv, ok := b.asks.Min()
	if !ok {
		return 0, false
	}
	return lv.price, true
}

// PrintBook writes a human-readable dump of the book to sink: asks
// low-to-high, then bids high-to-low, one "id x qty" token per resting
// order on each level line. Diagnostic only; the format is not part of the
// matching contract and is not covered by tests.
func (b *Book) PrintBook(sink io.Writer) {
	fmt.Fprintln(sink, "asks:")
	for _, lv := range b.asks.Items() {
		fmt.Fprintf(sink, "  %d:", lv.price)
		for _, o := range lv.orders {
			fmt.Fprintf(sink, " %d x %d", o.ID, o.Qty)
		}
		fmt.Fprintln(sink)
	}
	fmt.Fprintln(sink, "bids:")
	for _, lv := range b.bids.Items() {
		fmt.Fprintf(sink, "  %d:", lv.price)
		for _, o := range lv.orders {
			fmt.Fprintf(sink, " %d x %d", o.ID, o.Qty)
		}
		fmt.Fprintln(sink)
	}
}
