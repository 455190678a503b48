package mapreduce

import (
	"fmt"
	"sync"
	"time"

	"github.com/emptyOVO/mrkit-gpa/worker"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Engine binds one mapper/reducer pair to a worker pool and runs the
// map -> shuffle -> reduce pipeline over in-memory batches.
//
// The pool is acquired by New and released by Shutdown; callers should
// `defer eng.Shutdown()` right after construction. Calls on one Engine are
// serialized.
type Engine[I any, K comparable, V any, O any] struct {
	id      string
	mapper  Mapper[I, K, V]
	reducer Reducer[K, V, O]
	cfg     Config
	pool    *worker.Pool
	log     log.FieldLogger

	mu     sync.Mutex
	closed bool
}

// New starts the worker pool and returns a ready Engine.
func New[I any, K comparable, V any, O any](m Mapper[I, K, V], r Reducer[K, V, O], cfg Config) (*Engine[I, K, V, O], error) {
	if m == nil || r == nil {
		return nil, fmt.Errorf("mapper and reducer are required")
	}
	if cfg.Workers < 0 {
		return nil, fmt.Errorf("%w: invalid worker count %d", ErrPoolExhaustion, cfg.Workers)
	}
	cfg.withDefaults()

	id := uuid.New().String()
	logger := cfg.Logger.WithField("engine", id)
	pool, err := worker.NewPool(cfg.Workers, logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPoolExhaustion, err)
	}
	logger.WithField("workers", cfg.Workers).Info("[Engine] Ready")
	return &Engine[I, K, V, O]{
		id:      id,
		mapper:  m,
		reducer: r,
		cfg:     cfg,
		pool:    pool,
		log:     logger,
	}, nil
}

// ID identifies the engine in logs.
func (e *Engine[I, K, V, O]) ID() string {
	return e.id
}

// Workers is the size of the engine's pool.
func (e *Engine[I, K, V, O]) Workers() int {
	return e.cfg.Workers
}

// RunSequential maps, shuffles and reduces inputs on the calling goroutine.
// Output order follows first-seen key order and is reproducible.
func (e *Engine[I, K, V, O]) RunSequential(inputs []I) ([]O, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrShutdown
	}
	return e.runSequential(inputs)
}

// RunParallel distributes both phases over the pool in chunks of chunkSize items;
// chunkSize <= 0 lets each phase pick DefaultChunkSize. Results come back in
// completion order, so only the multiset of outputs matches RunSequential.
func (e *Engine[I, K, V, O]) RunParallel(inputs []I, chunkSize int) ([]O, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrShutdown
	}
	return e.runParallel(inputs, chunkSize)
}

// Shutdown stops the pool and waits for its workers. The engine is unusable
// afterwards; a second call returns ErrShutdown.
func (e *Engine[I, K, V, O]) Shutdown() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrShutdown
	}
	e.closed = true
	if err := e.pool.Shutdown(); err != nil {
		return err
	}
	e.log.Info("[Engine] Shut down")
	return nil
}

func (e *Engine[I, K, V, O]) mapOne(idx int, in I) (kv KV[K, V], err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &MapperError{Index: idx, Err: recovered(r)}
		}
	}()
	kv, err = e.mapper.Map(in)
	if err != nil {
		return kv, &MapperError{Index: idx, Err: err}
	}
	return kv, nil
}

func (e *Engine[I, K, V, O]) reduceOne(g Group[K, V]) (out O, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ReducerError{Key: g.Key, Err: recovered(r)}
		}
	}()
	out, err = e.reducer.Reduce(g)
	if err != nil {
		return out, &ReducerError{Key: g.Key, Err: err}
	}
	return out, nil
}

func (e *Engine[I, K, V, O]) phaseDone(mode, phase string, start time.Time, items int) {
	e.log.WithFields(log.Fields{
		"mode":  mode,
		"phase": phase,
		"items": items,
		"took":  time.Since(start),
	}).Debugf("[Engine] %s took %.3f seconds", phase, time.Since(start).Seconds())
}
