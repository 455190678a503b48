package batch

import (
	"context"
	"fmt"
	"time"

	mapreduce "github.com/emptyOVO/mrkit-gpa"
	"github.com/emptyOVO/mrkit-gpa/mrapps"
	log "github.com/sirupsen/logrus"
)

type (
	semesterEngine = mapreduce.Engine[mrapps.Record, mrapps.SemesterKey, mrapps.CourseGrade, mrapps.SemesterGPA]
	studentEngine  = mapreduce.Engine[mrapps.SemesterGPA, string, mrapps.TermGPA, mrapps.StudentReport]
)

// SequentialRunner runs both stages with Engine.RunSequential.
type SequentialRunner struct {
	Logger log.FieldLogger
}

func (SequentialRunner) Name() string { return TransformSequential }

func (r SequentialRunner) Run(ctx context.Context, records []mrapps.Record) ([]mrapps.StudentReport, StageResult, error) {
	return runStages(ctx, mapreduce.Config{Workers: 1, Logger: r.Logger}, r.Name(),
		func(e *semesterEngine) ([]mrapps.SemesterGPA, error) { return e.RunSequential(records) },
		func(e *studentEngine, in []mrapps.SemesterGPA) ([]mrapps.StudentReport, error) { return e.RunSequential(in) },
	)
}

// ParallelRunner runs both stages with Engine.RunParallel. Zero fields select
// the engine defaults.
type ParallelRunner struct {
	Workers         int
	ChunksPerWorker int
	Logger          log.FieldLogger
}

func (ParallelRunner) Name() string { return TransformParallel }

func (r ParallelRunner) Run(ctx context.Context, records []mrapps.Record) ([]mrapps.StudentReport, StageResult, error) {
	cfg := mapreduce.Config{Workers: r.Workers, ChunksPerWorker: r.ChunksPerWorker, Logger: r.Logger}
	return runStages(ctx, cfg, r.Name(),
		func(e *semesterEngine) ([]mrapps.SemesterGPA, error) { return e.RunParallel(records, 0) },
		func(e *studentEngine, in []mrapps.SemesterGPA) ([]mrapps.StudentReport, error) { return e.RunParallel(in, 0) },
	)
}

func runStages(
	ctx context.Context,
	cfg mapreduce.Config,
	name string,
	stage1 func(*semesterEngine) ([]mrapps.SemesterGPA, error),
	stage2 func(*studentEngine, []mrapps.SemesterGPA) ([]mrapps.StudentReport, error),
) ([]mrapps.StudentReport, StageResult, error) {
	var res StageResult
	if err := ctx.Err(); err != nil {
		return nil, res, err
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.StandardLogger()
	}
	logger = logger.WithField("runner", name)

	first, err := mapreduce.New[mrapps.Record, mrapps.SemesterKey, mrapps.CourseGrade, mrapps.SemesterGPA](mrapps.SemesterMapper, mrapps.GPAReducer, cfg)
	if err != nil {
		return nil, res, fmt.Errorf("stage 1 engine: %w", err)
	}
	defer first.Shutdown()
	second, err := mapreduce.New[mrapps.SemesterGPA, string, mrapps.TermGPA, mrapps.StudentReport](mrapps.StudentMapper, mrapps.ReportReducer, cfg)
	if err != nil {
		return nil, res, fmt.Errorf("stage 2 engine: %w", err)
	}
	defer second.Shutdown()

	started := time.Now()
	var semesters []mrapps.SemesterGPA
	if err := waitStage(ctx, func() (err error) {
		semesters, err = stage1(first)
		return err
	}); err != nil {
		return nil, res, fmt.Errorf("stage 1: %w", err)
	}
	res.Stage1Duration = time.Since(started)
	res.Semesters = len(semesters)
	logger.WithFields(log.Fields{"semesters": len(semesters), "took": res.Stage1Duration}).Info("[Batch] Stage 1 done")

	s2 := time.Now()
	var reports []mrapps.StudentReport
	if err := waitStage(ctx, func() (err error) {
		reports, err = stage2(second, semesters)
		return err
	}); err != nil {
		return nil, res, fmt.Errorf("stage 2: %w", err)
	}
	res.Stage2Duration = time.Since(s2)
	res.TotalDuration = time.Since(started)
	logger.WithFields(log.Fields{"students": len(reports), "took": res.Stage2Duration}).Info("[Batch] Stage 2 done")
	return reports, res, nil
}

// waitStage runs a stage to completion. Engines cannot be interrupted, so a
// cancelled context is only reported once the stage has returned.
func waitStage(ctx context.Context, stage func() error) error {
	done := make(chan error, 1)
	go func() {
		done <- stage()
	}()

	var canceled error
	cancelCh := ctx.Done()
	for {
		select {
		case err := <-done:
			if err != nil {
				return err
			}
			return canceled
		case <-cancelCh:
			canceled = ctx.Err()
			cancelCh = nil
		}
	}
}
