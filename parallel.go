package mapreduce

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/emptyOVO/mrkit-gpa/worker"
)

func (e *Engine[I, K, V, O]) runParallel(inputs []I, chunkSize int) ([]O, error) {
	start := time.Now()
	mapped, err := runChunked(e.pool, inputs, e.chunkSize(len(inputs), chunkSize), e.mapOne)
	if err != nil {
		return nil, err
	}
	e.phaseDone("parallel", "Mapping", start, len(inputs))

	start = time.Now()
	groups, err := Shuffle(mapped)
	if err != nil {
		return nil, err
	}
	e.phaseDone("parallel", "Shuffling", start, len(mapped))

	start = time.Now()
	out, err := runChunked(e.pool, groups, e.chunkSize(len(groups), chunkSize), func(_ int, g Group[K, V]) (O, error) {
		return e.reduceOne(g)
	})
	if err != nil {
		return nil, err
	}
	e.phaseDone("parallel", "Reducing", start, len(groups))
	return out, nil
}

func (e *Engine[I, K, V, O]) chunkSize(n, requested int) int {
	if requested > 0 {
		return requested
	}
	return DefaultChunkSize(n, e.cfg.Workers, e.cfg.ChunksPerWorker)
}

type chunk struct {
	from, to int
}

func splitChunks(n, size int) []chunk {
	if size < 1 {
		size = 1
	}
	chunks := make([]chunk, 0, (n+size-1)/size)
	for from := 0; from < n; from += size {
		to := from + size
		if to > n {
			to = n
		}
		chunks = append(chunks, chunk{from: from, to: to})
	}
	return chunks
}

type chunkResult[R any] struct {
	items []R
	err   error
}

// runChunked applies fn to every item on the pool, one task per chunk, and
// concatenates chunk results in the order the chunks finish. The first error
// wins; chunks that have not started by then are skipped.
func runChunked[T any, R any](p *worker.Pool, items []T, size int, fn func(int, T) (R, error)) ([]R, error) {
	chunks := splitChunks(len(items), size)
	// Buffered so workers never block on a caller that already returned.
	results := make(chan chunkResult[R], len(chunks))
	var failed int32

	for _, c := range chunks {
		c := c
		err := p.Submit(func() {
			if atomic.LoadInt32(&failed) != 0 {
				results <- chunkResult[R]{}
				return
			}
			out := make([]R, 0, c.to-c.from)
			for i := c.from; i < c.to; i++ {
				r, err := fn(i, items[i])
				if err != nil {
					atomic.StoreInt32(&failed, 1)
					results <- chunkResult[R]{err: err}
					return
				}
				out = append(out, r)
			}
			results <- chunkResult[R]{items: out}
		})
		if err != nil {
			atomic.StoreInt32(&failed, 1)
			return nil, fmt.Errorf("dispatch chunk [%d,%d): %w", c.from, c.to, err)
		}
	}

	out := make([]R, 0, len(items))
	for range chunks {
		res := <-results
		if res.err != nil {
			return nil, res.err
		}
		out = append(out, res.items...)
	}
	return out, nil
}
