package netdemo

import (
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const taskChanSize = 100

// WorkerFunction handles one task.
type WorkerFunction func(t *tomb.Tomb, task any) error

// WorkerPool keeps a fixed number of goroutines draining a shared task
// channel, supervised by a tomb so the demo server can shut the whole
// pool down alongside the matching engine. Generalized to carry any task
// type rather than being tied to a single connection-only shape.
type WorkerPool struct {
	n     int
	tasks chan any
}

// NewWorkerPool returns a pool sized for n concurrent workers.
func NewWorkerPool(n int) WorkerPool {
	return WorkerPool{
		tasks: make(chan any, taskChanSize),
		n:     n,
	}
}

// AddTask enqueues a task for the pool to pick up.
func (pool *WorkerPool) AddTask(task any) {
	pool.tasks <- task
}

// Setup starts n persistent workers, each draining pool.tasks until t
// starts dying. It returns once all n are running.
func (pool *WorkerPool) Setup(t *tomb.Tomb, work WorkerFunction) {
	log.Info().Int("workers", pool.n).Msg("netdemo: starting worker pool")
	for i := 0; i < pool.n; i++ {
		t.Go(func() error { return pool.worker(t, work) })
	}
}

func (pool *WorkerPool) worker(t *tomb.Tomb, work WorkerFunction) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case task := <-pool.tasks:
			if err := work(t, task); err != nil {
				log.Error().Err(err).Msg("netdemo: worker exiting on error")
				return err
			}
		}
	}
}
