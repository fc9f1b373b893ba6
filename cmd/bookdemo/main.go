// Command bookdemo seeds a handful of orders through the async engine
// in-process and prints the resulting trades and final book snapshot.
// It exists to exercise the engine end to end; it is not part of the
// tested matching contract.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/saiputravu/helheim/internal/async"
	"github.com/saiputravu/helheim/internal/book"
)

func main() {
	e := async.New()
	defer e.Shutdown()

	seed := []book.Order{
		{ID: 1, Side: book.Sell, Price: 101, Qty: 50},
		{ID: 2, Side: book.Sell, Price: 102, Qty: 40},
		{ID: 3, Side: book.Buy, Price: 100, Qty: 70},
		{ID: 4, Side: book.Buy, Price: 102, Qty: 80},
	}
	for _, o := range seed {
		e.Submit(o)
	}

	// QueryTopOfBook round-trips through the same FIFO ingress queue the
	// orders travelled, so by the time it replies every seeded order has
	// been fully processed and any resulting events are already on the
	// egress queue.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	tob, err := e.QueryTopOfBook(ctx)
	if err != nil {
		fmt.Println("query failed:", err)
		return
	}

	for {
		ev, ok := e.PollEvent()
		if !ok {
			break
		}
		for _, trade := range ev.Trades {
			fmt.Println(trade.String())
		}
	}

	if tob.HasBid {
		fmt.Printf("best bid: %d\n", tob.BestBid)
	}
	if tob.HasAsk {
		fmt.Printf("best ask: %d\n", tob.BestAsk)
	}
}
