package mapreduce

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolExhaustion is returned by New when the worker pool cannot be started.
	ErrPoolExhaustion = errors.New("worker pool cannot be started")
	// ErrShutdown is returned by every call made after Shutdown.
	ErrShutdown = errors.New("engine is shut down")
	// ErrPanic wraps a panic recovered from a mapper or reducer.
	ErrPanic = errors.New("panic in user function")
)

// MapperError reports the first mapper failure of a batch.
type MapperError struct {
	Index int // position of the offending record in the input slice
	Err   error
}

func (e *MapperError) Error() string {
	return fmt.Sprintf("map record %d: %v", e.Index, e.Err)
}

func (e *MapperError) Unwrap() error { return e.Err }

// ReducerError reports the first reducer failure of a batch.
type ReducerError struct {
	Key interface{}
	Err error
}

func (e *ReducerError) Error() string {
	return fmt.Sprintf("reduce key %v: %v", e.Key, e.Err)
}

func (e *ReducerError) Unwrap() error { return e.Err }

// UnhashableKeyError is returned when a mapper emits a key that cannot be used
// as a map key, e.g. an interface key holding a slice.
type UnhashableKeyError struct {
	Key    interface{}
	Reason string
}

func (e *UnhashableKeyError) Error() string {
	return fmt.Sprintf("unhashable key %#v: %s", e.Key, e.Reason)
}

func recovered(r interface{}) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %v", ErrPanic, err)
	}
	return fmt.Errorf("%w: %v", ErrPanic, r)
}
