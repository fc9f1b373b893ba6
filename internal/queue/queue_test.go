package queue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushTryPop_FIFO(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	for _, want := range []int{1, 2, 3} {
		got, ok := q.TryPop()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestTryPop_EmptyQueue(t *testing.T) {
	q := New[string]()
	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestPop_BlocksUntilPush(t *testing.T) {
	q := New[int]()
	done := make(chan int, 1)

	go func() {
		v, ok := q.Pop()
		if ok {
			done <- v
		} else {
			done <- -1
		}
	}()

	time.Sleep(20 * time.Millisecond) // give Pop time to start blocking
	q.Push(42)

	select {
	case v := <-done:
		assert.Equal(t, 42, v)
	case <-time.After(time.Second):
		t.Fatal("Pop did not unblock after Push")
	}
}

func TestPop_ReturnsFalseAfterCloseAndDrain(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Close()

	v, ok := q.Pop()
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	_, ok = q.Pop()
	assert.False(t, ok)
}

func TestPush_SilentlyDroppedAfterClose(t *testing.T) {
	q := New[int]()
	q.Close()
	q.Push(1) // must not panic or block

	_, ok := q.TryPop()
	assert.False(t, ok)
}

func TestClose_Idempotent(t *testing.T) {
	q := New[int]()
	q.Close()
	q.Close() // must not panic or double-broadcast badly
}

func TestClose_WakesBlockedPop(t *testing.T) {
	q := New[int]()
	done := make(chan bool, 1)

	go func() {
		_, ok := q.Pop()
		done <- ok
	}()

	time.Sleep(20 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Close did not wake blocked Pop")
	}
}

func TestConcurrentProducersConsumers(t *testing.T) {
	q := New[int]()
	const producers, perProducer = 8, 200

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(i)
			}
		}()
	}

	received := make(chan int, producers*perProducer)
	var consumerWG sync.WaitGroup
	for c := 0; c < 4; c++ {
		consumerWG.Add(1)
		go func() {
			defer consumerWG.Done()
			for {
				v, ok := q.Pop()
				if !ok {
					return
				}
				received <- v
			}
		}()
	}

	wg.Wait()
	q.Close()
	consumerWG.Wait()
	close(received)

	count := 0
	for range received {
		count++
	}
	assert.Equal(t, producers*perProducer, count)
}
