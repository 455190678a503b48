package worker

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// State is the activity of a single pool worker.
type State int

const (
	IDLE State = iota
	BUSY
	STOPPED
)

func (s State) String() string {
	switch s {
	case IDLE:
		return "IDLE"
	case BUSY:
		return "BUSY"
	case STOPPED:
		return "STOPPED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Task is one unit of work executed by a pool worker.
type Task func()

type Worker struct {
	UUID  string
	ID    int
	State State
	mux   sync.Mutex
	log   log.Ext1FieldLogger
}

func newWorker(id int, logger log.Ext1FieldLogger) *Worker {
	wUUID := uuid.New().String()
	return &Worker{
		UUID:  wUUID,
		ID:    id,
		State: IDLE,
		log:   logger.WithFields(log.Fields{"worker": id, "uuid": wUUID}),
	}
}

// serve runs tasks until the queue is closed.
func (wr *Worker) serve(tasks <-chan Task) {
	wr.log.Trace("[Worker] Start serving")
	for task := range tasks {
		wr.setWorkerState(BUSY)
		wr.run(task)
		wr.setWorkerState(IDLE)
	}
	wr.setWorkerState(STOPPED)
	wr.log.Trace("[Worker] End serving")
}

// run keeps a panicking task from taking the worker goroutine down with it.
// Tasks submitted by the engine recover their own panics; this is the last line.
func (wr *Worker) run(task Task) {
	defer func() {
		if r := recover(); r != nil {
			wr.log.WithField("panic", r).Error("[Worker] Task panicked")
		}
	}()
	task()
}

func (wr *Worker) Health() State {
	wr.mux.Lock()
	state := wr.State
	wr.mux.Unlock()
	return state
}

func (wr *Worker) setWorkerState(state State) {
	wr.mux.Lock()
	wr.State = state
	wr.mux.Unlock()
}
