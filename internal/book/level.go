package book

// level holds every resting order at a single price on a single side, in
// arrival order. Price-time priority within a level falls directly out of
// treating orders as a FIFO slice: the head is always next to trade.
type level struct {
	price  int64
	orders []*Order
}

func newLevel(price int64, first *Order) *level {
	return &level{price: price, orders: []*Order{first}}
}

func (l *level) pushBack(o *Order) {
	l.orders = append(l.orders, o)
}

func (l *level) front() *Order {
	if len(l.orders) == 0 {
		return nil
	}
	return l.orders[0]
}

// popFront removes the head order. Called once it has been fully filled.
func (l *level) popFront() {
	l.orders = l.orders[1:]
}

func (l *level) empty() bool {
	return len(l.orders) == 0
}

// removeID removes the order with the given id from anywhere in the level,
// preserving arrival order of the remainder. Returns false if not found.
func (l *level) removeID(id uint64) bool {
	for i, o := range l.orders {
		if o.ID == id {
			l.orders = append(l.orders[:i], l.orders[i+1:]...)
			return true
		}
	}
	return false
}
