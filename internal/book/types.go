// Package book implements the price-time priority limit order book: the
// resident data structure a single trading instrument's resting orders live
// in, and the crossing algorithm that matches an incoming order against it.
package book

import (
	"errors"
	"fmt"
	"time"
)

// Side identifies which side of the book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

var (
	// ErrInvalidOrder is returned when a submitted order violates the
	// book's entry contract (non-positive quantity or price, unknown side).
	ErrInvalidOrder = errors.New("book: invalid order")
	// ErrDuplicateID is returned when AddOrder is called with an id that
	// is already resting. Every resting id is in the cancellation index,
	// so the check is a single map lookup.
	ErrDuplicateID = errors.New("book: duplicate order id")
)

// Order is a plain limit order. Identity -- ID, Side, Price -- is fixed at
// submission; Qty is the only field that changes while an order rests.
type Order struct {
	ID    uint64
	Side  Side
	Price int64 // ticks; no floating point
	Qty   int64 // remaining quantity; strictly positive while resting
	TS    time.Time
}

func (o Order) String() string {
	return fmt.Sprintf("#%d %s %d@%d", o.ID, o.Side, o.Qty, o.Price)
}

// Trade is one fill produced by the crossing loop. Price is always the
// maker's price: the resting order sets the trade price regardless of how
// aggressive the taker's limit was.
type Trade struct {
	MakerID uint64
	TakerID uint64
	Price   int64
	Qty     int64
}

func (t Trade) String() string {
	return fmt.Sprintf("maker=%d taker=%d %d@%d", t.MakerID, t.TakerID, t.Qty, t.Price)
}
