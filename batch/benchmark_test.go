package batch

import (
	"bytes"
	"context"
	"encoding/csv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestBenchmarkWorkerCounts(t *testing.T) {
	cases := []struct {
		max, step int
		want      []int
	}{
		{16, 4, []int{1, 4, 8, 12, 16}},
		{2, 4, []int{1}},
		{3, 4, []int{1, 4}},
		{4, 1, []int{1, 2, 3, 4, 5}},
	}
	for _, c := range cases {
		if diff := cmp.Diff(c.want, benchmarkWorkerCounts(c.max, c.step)); diff != "" {
			t.Fatalf("max=%d step=%d (-want +got):\n%s", c.max, c.step, diff)
		}
	}
}

func TestRunBenchmark(t *testing.T) {
	logger, hook := test.NewNullLogger()
	records := PrepareSyntheticRecords(PrepareConfig{Students: 20, Semesters: 2, CoursesPerTerm: 3})
	res, err := RunBenchmark(context.Background(), records, BenchmarkConfig{Trials: 2, MaxWorkers: 4, WorkerStep: 2, Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	if !res.Match {
		t.Fatalf("sequential and parallel results differ")
	}
	if res.Records != len(records) || len(res.Sequential) != 2 {
		t.Fatalf("unexpected result %+v", res)
	}
	if diff := cmp.Diff([]int{1, 2, 4}, res.WorkerCounts); diff != "" {
		t.Fatalf("unexpected worker counts:\n%s", diff)
	}
	for _, w := range res.WorkerCounts {
		if len(res.Parallel[w]) != 2 {
			t.Fatalf("expected 2 trials for %d workers, got %d", w, len(res.Parallel[w]))
		}
	}
	if len(hook.AllEntries()) == 0 {
		t.Fatalf("expected benchmark progress to be logged")
	}
}

func TestWriteBenchmarkCSV(t *testing.T) {
	res := BenchmarkResult{
		Records:    12,
		Sequential: []time.Duration{time.Second, 3 * time.Second},
		Parallel: map[int][]time.Duration{
			1: {time.Second, 2 * time.Second},
			4: {500 * time.Millisecond},
		},
		WorkerCounts: []int{1, 4},
	}
	var buf bytes.Buffer
	if err := WriteBenchmarkCSV(&buf, res); err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(buf.Bytes(), []byte("\n\n")) {
		t.Fatalf("expected a blank separator line:\n%s", buf.String())
	}
	r := csv.NewReader(&buf)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{
		{"Parallel Results on 12 records."},
		{"Average Sequential Time:", "2"},
		{"1", "4"},
		{"1", "0.5"},
		{"2", ""},
	}
	// csv.Reader skips the blank separator line.
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("unexpected csv (-want +got):\n%s", diff)
	}
}
