package book

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func order(id uint64, side Side, price, qty int64) Order {
	return Order{ID: id, Side: side, Price: price, Qty: qty}
}

func TestAddOrder_NoCross(t *testing.T) {
	b := New()

	trades, err := b.AddOrder(order(1, Buy, 100, 10))
	require.NoError(t, err)
	assert.Empty(t, trades)

	bid, ok := b.BestBid()
	assert.True(t, ok)
	assert.Equal(t, int64(100), bid)

	_, ok = b.BestAsk()
	assert.False(t, ok)
}

// A crossing order can sweep liquidity off more than one maker level in a
// single call, trading against each in price order until it is filled.
func TestAddOrder_FullCrossMultipleLevels(t *testing.T) {
	b := New()
	mustAdd(t, b, order(1, Sell, 101, 50))
	mustAdd(t, b, order(2, Sell, 102, 40))

	trades := mustAdd(t, b, order(3, Buy, 100, 70))
	assert.Empty(t, trades)

	trades = mustAdd(t, b, order(4, Buy, 102, 80))
	require.Len(t, trades, 2)
	assert.Equal(t, Trade{MakerID: 1, TakerID: 4, Price: 101, Qty: 50}, trades[0])
	assert.Equal(t, Trade{MakerID: 2, TakerID: 4, Price: 102, Qty: 30}, trades[1])

	// Maker 2 had 40 and gave up 30, so 10 still rest at 102.
	ask, askOk := b.BestAsk()
	assert.True(t, askOk)
	assert.Equal(t, int64(102), ask)
	bid, bidOk := b.BestBid()
	assert.True(t, bidOk)
	assert.Equal(t, int64(100), bid)
}

// A maker that the taker only partially fills keeps its remaining
// quantity resting at its own price.
func TestAddOrder_PartialFillResidual(t *testing.T) {
	b := New()
	mustAdd(t, b, order(1, Sell, 101, 50))

	trades := mustAdd(t, b, order(2, Buy, 101, 30))
	require.Len(t, trades, 1)
	assert.Equal(t, Trade{MakerID: 1, TakerID: 2, Price: 101, Qty: 30}, trades[0])

	ask, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(101), ask)
	_, ok = b.BestBid()
	assert.False(t, ok)
}

// Orders resting at the same price trade in arrival order: the earlier
// order fills first and in full before the later one is touched.
func TestAddOrder_FIFOWithinLevel(t *testing.T) {
	b := New()
	mustAdd(t, b, order(1, Sell, 101, 10))
	mustAdd(t, b, order(2, Sell, 101, 10))

	trades := mustAdd(t, b, order(3, Buy, 101, 15))
	require.Len(t, trades, 2)
	assert.Equal(t, Trade{MakerID: 1, TakerID: 3, Price: 101, Qty: 10}, trades[0])
	assert.Equal(t, Trade{MakerID: 2, TakerID: 3, Price: 101, Qty: 5}, trades[1])
}

// A cancelled order never trades, and cancelling the same id twice only
// succeeds once.
func TestCancel(t *testing.T) {
	b := New()
	mustAdd(t, b, order(1, Buy, 100, 10))
	mustAdd(t, b, order(2, Buy, 100, 10))

	assert.True(t, b.Cancel(1))
	assert.False(t, b.Cancel(1)) // cancelling an already-cancelled id is a no-op

	trades := mustAdd(t, b, order(3, Sell, 100, 10))
	require.Len(t, trades, 1)
	assert.Equal(t, Trade{MakerID: 2, TakerID: 3, Price: 100, Qty: 10}, trades[0])
}

func TestCancel_UnknownID(t *testing.T) {
	b := New()
	assert.False(t, b.Cancel(999))
}

// Sweeping across several ask levels drains the book level by level and
// leaves it non-crossed.
func TestAddOrder_SweepAcrossLevels(t *testing.T) {
	b := New()
	mustAdd(t, b, order(1, Sell, 101, 10))
	mustAdd(t, b, order(2, Sell, 102, 10))
	mustAdd(t, b, order(3, Sell, 103, 10))

	trades := mustAdd(t, b, order(4, Buy, 103, 25))
	require.Len(t, trades, 3)
	assert.Equal(t, int64(10), trades[0].Qty)
	assert.Equal(t, int64(10), trades[1].Qty)
	assert.Equal(t, int64(5), trades[2].Qty)

	ask, ok := b.BestAsk()
	require.True(t, ok)
	assert.Equal(t, int64(103), ask)
	bestBid, bidOk := b.BestBid()
	assert.False(t, bidOk)
	_ = bestBid
}

func TestAddOrder_RejectsNonPositiveQty(t *testing.T) {
	b := New()
	_, err := b.AddOrder(order(1, Buy, 100, 0))
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = b.AddOrder(order(1, Buy, 100, -5))
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestAddOrder_RejectsNonPositivePrice(t *testing.T) {
	b := New()
	_, err := b.AddOrder(order(1, Buy, 0, 10))
	assert.ErrorIs(t, err, ErrInvalidOrder)
	_, err = b.AddOrder(order(1, Sell, -1, 10))
	assert.ErrorIs(t, err, ErrInvalidOrder)
}

func TestAddOrder_RejectsDuplicateID(t *testing.T) {
	b := New()
	mustAdd(t, b, order(1, Buy, 100, 10))
	_, err := b.AddOrder(order(1, Buy, 99, 5))
	assert.ErrorIs(t, err, ErrDuplicateID)
}

// Whatever the arrival order of buys and sells, the book never rests in a
// crossed state: the best bid is always below the best ask once any
// crossable quantity has been matched away.
func TestInvariant_NeverCrossedAtRest(t *testing.T) {
	b := New()
	seq := []Order{
		order(1, Sell, 105, 10),
		order(2, Sell, 104, 10),
		order(3, Buy, 100, 10),
		order(4, Buy, 104, 15),
		order(5, Sell, 99, 20),
		order(6, Buy, 110, 30),
	}
	for _, o := range seq {
		mustAdd(t, b, o)
		bid, bidOk := b.BestBid()
		ask, askOk := b.BestAsk()
		if bidOk && askOk {
			assert.Lessf(t, bid, ask, "book crossed after order %d: bid=%d ask=%d", o.ID, bid, ask)
		}
	}
}

// With no cancellations, every unit of submitted quantity is accounted
// for: it either traded or is still resting. Each trade consumes its
// quantity from both the maker and the taker, so traded quantity counts
// twice against the submitted total. Every resting order's id
// is reflected in the cancellation index at its correct side and price.
func TestInvariant_ConservationAndIndex(t *testing.T) {
	b := New()
	submitted := []Order{
		order(1, Sell, 100, 10),
		order(2, Sell, 101, 20),
		order(3, Buy, 101, 25),
		order(4, Buy, 99, 5),
	}

	var totalTraded int64
	var restingQty int64
	for _, o := range submitted {
		trades := mustAdd(t, b, o)
		for _, tr := range trades {
			totalTraded += tr.Qty
		}
	}

	for _, lv := range b.bids.Items() {
		for _, o := range lv.orders {
			restingQty += o.Qty
			loc, ok := b.idIndex[o.ID]
			require.True(t, ok)
			assert.Equal(t, Buy, loc.side)
			assert.Equal(t, lv.price, loc.price)
		}
	}
	for _, lv := range b.asks.Items() {
		for _, o := range lv.orders {
			restingQty += o.Qty
			loc, ok := b.idIndex[o.ID]
			require.True(t, ok)
			assert.Equal(t, Sell, loc.side)
			assert.Equal(t, lv.price, loc.price)
		}
	}

	var totalSubmitted int64
	for _, o := range submitted {
		totalSubmitted += o.Qty
	}
	assert.Equal(t, totalSubmitted, 2*totalTraded+restingQty)
}

func mustAdd(t *testing.T, b *Book, o Order) []Trade {
	t.Helper()
	trades, err := b.AddOrder(o)
	require.NoError(t, err)
	return trades
}
