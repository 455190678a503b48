package batch

import (
	"context"
	"errors"
	"testing"

	mapreduce "github.com/emptyOVO/mrkit-gpa"
	"github.com/emptyOVO/mrkit-gpa/mrapps"
	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"
)

func testRunners(t *testing.T) []Runner {
	t.Helper()
	logger, _ := test.NewNullLogger()
	return []Runner{
		SequentialRunner{Logger: logger},
		ParallelRunner{Workers: 4, Logger: logger},
		ParallelRunner{Workers: 1, ChunksPerWorker: 1, Logger: logger},
	}
}

func TestRunnersS1(t *testing.T) {
	want := []mrapps.StudentReport{{
		StudentID: "S1",
		Grades:    map[string]float64{"Fall2023": 3.5, "Spring2024": 4.0},
	}}
	for _, r := range testRunners(t) {
		got, res, err := r.Run(context.Background(), s1Records)
		if err != nil {
			t.Fatalf("%s: %v", r.Name(), err)
		}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("%s: unexpected reports (-want +got):\n%s", r.Name(), diff)
		}
		if res.Semesters != 2 {
			t.Fatalf("%s: expected 2 semesters, got %d", r.Name(), res.Semesters)
		}
		if res.TotalDuration < res.Stage1Duration || res.TotalDuration < res.Stage2Duration {
			t.Fatalf("%s: inconsistent durations %+v", r.Name(), res)
		}
	}
}

func TestRunnersAgreeOnSyntheticData(t *testing.T) {
	records := PrepareSyntheticRecords(PrepareConfig{Students: 200, Semesters: 4, CoursesPerTerm: 5})
	var reports [][]mrapps.StudentReport
	for _, r := range testRunners(t) {
		got, _, err := r.Run(context.Background(), records)
		if err != nil {
			t.Fatalf("%s: %v", r.Name(), err)
		}
		if len(got) != 200 {
			t.Fatalf("%s: expected 200 reports, got %d", r.Name(), len(got))
		}
		reports = append(reports, got)
	}
	for i := 1; i < len(reports); i++ {
		if err := ValidateReports(reports[0], reports[i]); err != nil {
			t.Fatalf("runner %d disagrees with sequential: %v", i, err)
		}
	}
}

func TestRunnerUnknownGrade(t *testing.T) {
	records := append([]mrapps.Record{}, s1Records...)
	records = append(records, mrapps.Record{StudentID: "S2", Semester: "Fall2023", Course: "CS101", Hours: 3, Grade: "Z"})
	for _, r := range testRunners(t) {
		_, _, err := r.Run(context.Background(), records)
		var re *mapreduce.ReducerError
		if !errors.As(err, &re) {
			t.Fatalf("%s: expected ReducerError, got %v", r.Name(), err)
		}
		if !errors.Is(err, mrapps.ErrUnknownGrade) {
			t.Fatalf("%s: expected ErrUnknownGrade, got %v", r.Name(), err)
		}
	}
}

func TestRunnerCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for _, r := range testRunners(t) {
		if _, _, err := r.Run(ctx, s1Records); !errors.Is(err, context.Canceled) {
			t.Fatalf("%s: expected context.Canceled, got %v", r.Name(), err)
		}
	}
}

func TestWaitStageReportsCancelAfterStage(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	finished := false
	err := waitStage(ctx, func() error {
		cancel()
		finished = true
		return nil
	})
	if !finished {
		t.Fatalf("stage did not run")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRunnerNegativeWorkers(t *testing.T) {
	_, _, err := ParallelRunner{Workers: -1}.Run(context.Background(), s1Records)
	if !errors.Is(err, mapreduce.ErrPoolExhaustion) {
		t.Fatalf("expected ErrPoolExhaustion, got %v", err)
	}
}

func TestNewRunner(t *testing.T) {
	if r := NewRunner(FlowTransformConfig{Type: TransformSequential}); r.Name() != TransformSequential {
		t.Fatalf("expected sequential runner, got %s", r.Name())
	}
	r := NewRunner(FlowTransformConfig{Type: TransformParallel, Workers: 3, ChunksPerWorker: 2})
	pr, ok := r.(ParallelRunner)
	if !ok || pr.Workers != 3 || pr.ChunksPerWorker != 2 {
		t.Fatalf("unexpected runner %#v", r)
	}
}

func TestDefaultRunner(t *testing.T) {
	prev := DefaultRunner()
	defer SetDefaultRunner(prev)

	SetDefaultRunner(nil)
	if DefaultRunner() != prev {
		t.Fatalf("nil runner must be ignored")
	}
	SetDefaultRunner(SequentialRunner{})
	got, _, err := RunGPA(context.Background(), s1Records)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].StudentID != "S1" {
		t.Fatalf("unexpected reports %v", got)
	}
}
