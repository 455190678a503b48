package batch

import (
	"context"
	"time"

	"github.com/emptyOVO/mrkit-gpa/mrapps"
)

// StageResult captures the durations of the two chained map-reduce stages.
type StageResult struct {
	Semesters      int
	Stage1Duration time.Duration
	Stage2Duration time.Duration
	TotalDuration  time.Duration
}

// Runner abstracts the execution strategy of the two-stage GPA pipeline.
type Runner interface {
	Name() string
	Run(ctx context.Context, records []mrapps.Record) ([]mrapps.StudentReport, StageResult, error)
}

var defaultRunner Runner = ParallelRunner{}

// SetDefaultRunner overrides the process-wide runtime strategy.
func SetDefaultRunner(r Runner) {
	if r == nil {
		return
	}
	defaultRunner = r
}

// DefaultRunner returns the current process-wide runtime strategy.
func DefaultRunner() Runner {
	return defaultRunner
}

// RunGPA executes the pipeline through the configured runner.
func RunGPA(ctx context.Context, records []mrapps.Record) ([]mrapps.StudentReport, StageResult, error) {
	return DefaultRunner().Run(ctx, records)
}

// NewRunner maps a transform type onto a Runner.
func NewRunner(tf FlowTransformConfig) Runner {
	if tf.Type == TransformSequential {
		return SequentialRunner{}
	}
	return ParallelRunner{Workers: tf.Workers, ChunksPerWorker: tf.ChunksPerWorker}
}
