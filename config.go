package mapreduce

import (
	"runtime"

	log "github.com/sirupsen/logrus"
)

// DefaultChunksPerWorker is how many chunks each worker should receive per phase
// when the caller leaves the chunk size to the engine.
const DefaultChunksPerWorker = 4

// Config tunes an Engine. The zero value is usable.
type Config struct {
	// Workers is the pool size. Zero selects DefaultWorkers; negative is invalid.
	Workers int
	// ChunksPerWorker drives DefaultChunkSize. Zero selects DefaultChunksPerWorker.
	ChunksPerWorker int
	// Logger receives engine and pool logs. Nil selects the logrus standard logger.
	Logger log.FieldLogger
}

func (c *Config) withDefaults() {
	if c.Workers == 0 {
		c.Workers = DefaultWorkers()
	}
	if c.ChunksPerWorker <= 0 {
		c.ChunksPerWorker = DefaultChunksPerWorker
	}
	if c.Logger == nil {
		c.Logger = log.StandardLogger()
	}
}

// DefaultWorkers is twice the number of logical CPUs.
func DefaultWorkers() int {
	return runtime.NumCPU() * 2
}

// DefaultChunkSize splits n items so each of workers receives about
// chunksPerWorker chunks. It never returns less than 1.
func DefaultChunkSize(n, workers, chunksPerWorker int) int {
	if workers < 1 {
		workers = 1
	}
	if chunksPerWorker < 1 {
		chunksPerWorker = 1
	}
	size := n / (workers * chunksPerWorker)
	if size < 1 {
		return 1
	}
	return size
}
