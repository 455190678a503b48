package worker

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrPoolClosed is returned by Submit after Shutdown.
var ErrPoolClosed = errors.New("worker pool is shut down")

// Pool is a fixed set of goroutine workers fed from one task queue.
// It is created once, reused for any number of batches, and must be shut down
// by its owner.
type Pool struct {
	UUID    string
	workers []*Worker
	tasks   chan Task
	wg      sync.WaitGroup
	mu      sync.RWMutex
	closed  bool
	log     log.Ext1FieldLogger
}

// NewPool starts size workers. A nil logger means the logrus standard logger.
func NewPool(size int, logger log.Ext1FieldLogger) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("invalid pool size %d", size)
	}
	if logger == nil {
		logger = log.StandardLogger()
	}
	pUUID := uuid.New().String()
	p := &Pool{
		UUID:    pUUID,
		workers: make([]*Worker, size),
		tasks:   make(chan Task, size),
		log:     logger.WithField("pool", pUUID),
	}
	for i := 0; i < size; i++ {
		wr := newWorker(i, p.log)
		p.workers[i] = wr
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			wr.serve(p.tasks)
		}()
	}
	p.log.WithField("size", size).Debug("[Worker] Pool started")
	return p, nil
}

// Size is the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Submit queues a task, blocking while the queue is full.
func (p *Pool) Submit(task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}
	p.tasks <- task
	return nil
}

// Health reports the current state of every worker, indexed by worker ID.
func (p *Pool) Health() []State {
	states := make([]State, len(p.workers))
	for i, wr := range p.workers {
		states[i] = wr.Health()
	}
	return states
}

// Shutdown closes the queue and waits for every worker to exit. Queued tasks are
// still executed. A second call returns ErrPoolClosed.
func (p *Pool) Shutdown() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrPoolClosed
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
	p.log.Debug("[Worker] Pool stopped")
	return nil
}
