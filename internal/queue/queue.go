// Package queue implements the concurrent FIFO the async engine uses for
// its inbound order stream and outbound event stream: a multi-producer,
// multi-consumer queue with a closeable lifecycle, guarded by a single
// mutex and condition variable.
package queue

import "sync"

// Queue is a FIFO of one element type T. Zero value is not usable; build
// one with New. Safe for concurrent Push/Pop/TryPop/Close from any number
// of goroutines.
type Queue[T any] struct {
	mu     sync.Mutex
	notify *sync.Cond
	items  []T
	closed bool
}

// New returns an empty, open queue.
func New[T any]() *Queue[T] {
	q := &Queue[T]{}
	q.notify = sync.NewCond(&q.mu)
	return q
}

// Push appends value to the tail. If the queue has already been closed,
// the value is silently dropped -- producers may race with shutdown and
// must never observe an error for it. Wakes one waiter.
func (q *Queue[T]) Push(value T) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.items = append(q.items, value)
	q.notify.Signal()
}

// Pop blocks until the queue is non-empty or closed. On a non-empty queue
// it removes the head and returns it with true. Once the queue is empty
// and closed, it returns false. Spurious wakeups are tolerated by looping
// on the wait.
func (q *Queue[T]) Pop() (value T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.notify.Wait()
	}
	if len(q.items) == 0 {
		return value, false
	}
	value, q.items = q.items[0], q.items[1:]
	return value, true
}

// TryPop returns immediately: false if the queue is empty (closed or not),
// otherwise the head value moved out and true.
func (q *Queue[T]) TryPop() (value T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return value, false
	}
	value, q.items = q.items[0], q.items[1:]
	return value, true
}

// Close is idempotent. It marks the queue closed and wakes every blocked
// waiter. No push accepted after Close takes effect is enqueued; values
// already queued before Close remain drainable by Pop/TryPop.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	q.notify.Broadcast()
}

// Len reports the number of values currently queued. Diagnostic only --
// the result is stale the instant the lock is released under concurrent
// use.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
