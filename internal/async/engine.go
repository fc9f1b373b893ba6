// Package async adapts the synchronous order book to a producer/consumer
// environment: many client goroutines submit orders, many consumers drain
// trade events, and exactly one worker goroutine owns the book.
package async

import (
	"context"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"github.com/saiputravu/helheim/internal/book"
	"github.com/saiputravu/helheim/internal/config"
	"github.com/saiputravu/helheim/internal/queue"
)

// inboundKind distinguishes the message shapes that travel the ingress
// queue: order submissions, cancellations, and top-of-book queries. All
// three share one queue so a cancel or query observes the book exactly as
// of its position in submission order, never racing ahead of or behind
// resting orders.
type inboundKind int

const (
	msgOrder inboundKind = iota
	msgCancel
	msgQuery
)

type inboundMsg struct {
	kind        inboundKind
	order       book.Order
	cancelID    uint64
	queryReply  chan TopOfBook
	cancelReply chan bool
}

// Engine owns one Book, one ingress queue of orders, one egress queue of
// events, and exactly one worker goroutine that drains ingress, invokes
// the book, and publishes egress. The book itself is never touched by any
// other goroutine -- that confinement, not a lock, is what keeps matching
// safe.
type Engine struct {
	book *book.Book

	ingress *queue.Queue[inboundMsg]
	egress  *queue.Queue[Event]

	t       tomb.Tomb
	running atomic.Bool
	closing chan struct{}
}

// New starts the engine's worker and returns a ready-to-use Engine.
// Accepts config.Option values, e.g. config.WithLogLevel(zerolog.DebugLevel).
func New(opts ...config.Option) *Engine {
	cfg := config.Apply(opts...)
	zerolog.SetGlobalLevel(cfg.LogLevel)

	e := &Engine{
		book:    book.New(),
		ingress: queue.New[inboundMsg](),
		egress:  queue.New[Event](),
		closing: make(chan struct{}),
	}
	log.Debug().Int("queueCapacityHint", cfg.QueueCapacity).Msg("async: engine starting")
	e.running.Store(true)
	e.t.Go(e.run)
	return e
}

// Submit enqueues an order for matching. Orders from a single caller
// arrive at the book in the order Submit was called, since the ingress
// queue is strict FIFO; orders from different callers interleave in
// whatever order they win the queue's internal critical section.
func (e *Engine) Submit(o book.Order) {
	e.ingress.Push(inboundMsg{kind: msgOrder, order: o})
}

// Cancel routes a cancellation through the worker so it is applied in
// strict submission order relative to any order queued ahead of it,
// rather than racing the worker's own book mutation. A Cancel that races
// with or follows Shutdown returns false instead of blocking forever: once
// ingress is closed the worker will never see the cancel message (Push
// silently drops it), so nothing would ever answer on reply.
func (e *Engine) Cancel(id uint64) bool {
	select {
	case <-e.closing:
		return false
	default:
	}

	reply := make(chan bool, 1)
	e.ingress.Push(inboundMsg{kind: msgCancel, cancelID: id, cancelReply: reply})

	select {
	case ok := <-reply:
		return ok
	case <-e.closing:
		return false
	}
}

// PollEvent is a non-blocking drain from the egress queue.
func (e *Engine) PollEvent() (Event, bool) {
	return e.egress.TryPop()
}

// WaitEvent blocks until an event is available or the egress queue is
// closed and drained, at which point it returns false.
func (e *Engine) WaitEvent() (Event, bool) {
	return e.egress.Pop()
}

// BestBid and BestAsk read the book directly, with no synchronization
// against the worker's writes. This is safe only for single-threaded test
// or diagnostic use while the worker is idle; callers that need a
// consistent read while the engine is running concurrently must use
// QueryTopOfBook instead, which is answered by the worker itself.
func (e *Engine) BestBid() (int64, bool) { return e.book.BestBid() }
func (e *Engine) BestAsk() (int64, bool) { return e.book.BestAsk() }

// QueryTopOfBook asks the worker for a consistent best-bid/best-ask
// snapshot by routing the request through the ingress queue itself, so it
// is answered in strict submission order relative to any orders queued
// ahead of it -- the synchronized alternative to the direct, unguarded
// reads BestBid/BestAsk perform.
func (e *Engine) QueryTopOfBook(ctx context.Context) (TopOfBook, error) {
	reply := make(chan TopOfBook, 1)
	e.ingress.Push(inboundMsg{kind: msgQuery, queryReply: reply})

	select {
	case tob := <-reply:
		return tob, nil
	case <-ctx.Done():
		return TopOfBook{}, ctx.Err()
	}
}

// Shutdown is idempotent: exactly one caller performs the transition from
// running to stopped. It closes ingress (unblocking the worker if it was
// waiting), joins the worker so every order already accepted is fully
// processed, then closes egress. After Shutdown returns no new event is
// published; WaitEvent/PollEvent still deliver the events already queued
// and then report the queue as drained.
func (e *Engine) Shutdown() {
	if !e.running.CompareAndSwap(true, false) {
		return
	}
	close(e.closing)
	e.ingress.Close()
	if err := e.t.Wait(); err != nil {
		log.Error().Err(err).Msg("async: worker exited with error")
	}
	e.egress.Close()
}

// run is the engine's single worker. It pops the next inbound message,
// services it, and only then accepts the next one -- giving consumers a
// serial, program-order view of the book.
func (e *Engine) run() error {
	log.Debug().Msg("async: worker starting")
	for {
		msg, ok := e.ingress.Pop()
		if !ok {
			log.Debug().Msg("async: ingress drained, worker exiting")
			return nil
		}

		switch msg.kind {
		case msgOrder:
			e.handleOrder(msg.order)
		case msgCancel:
			msg.cancelReply <- e.book.Cancel(msg.cancelID)
		case msgQuery:
			e.handleQuery(msg.queryReply)
		}
	}
}

func (e *Engine) handleOrder(o book.Order) {
	trades, err := e.book.AddOrder(o)
	if err != nil {
		log.Error().Err(err).Uint64("id", o.ID).Msg("async: order rejected")
		return
	}
	if len(trades) > 0 {
		ev := Event{ID: uuid.New(), Kind: TradeBatch, Trades: trades}
		log.Debug().Str("eventId", ev.ID.String()).Int("trades", len(trades)).Msg("async: publishing trade batch")
		e.egress.Push(ev)
	}
}

func (e *Engine) handleQuery(reply chan TopOfBook) {
	var tob TopOfBook
	tob.BestBid, tob.HasBid = e.book.BestBid()
	tob.BestAsk, tob.HasAsk = e.book.BestAsk()
	reply <- tob
}
