package batch

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"runtime"
	"sort"
	"strconv"
	"time"

	"github.com/emptyOVO/mrkit-gpa/mrapps"
	log "github.com/sirupsen/logrus"
)

// BenchmarkConfig controls the sequential vs parallel comparison.
type BenchmarkConfig struct {
	Trials          int
	MaxWorkers      int
	WorkerStep      int
	ChunksPerWorker int
	Logger          log.FieldLogger
}

func (c *BenchmarkConfig) withDefaults() {
	if c.Trials <= 0 {
		c.Trials = 5
	}
	if c.MaxWorkers <= 0 {
		c.MaxWorkers = runtime.NumCPU() * 2
	}
	if c.WorkerStep <= 0 {
		c.WorkerStep = 4
	}
	if c.ChunksPerWorker <= 0 {
		c.ChunksPerWorker = 4
	}
	if c.Logger == nil {
		c.Logger = log.StandardLogger()
	}
}

// BenchmarkResult holds per-trial wall times.
type BenchmarkResult struct {
	Records      int
	Sequential   []time.Duration
	Parallel     map[int][]time.Duration
	WorkerCounts []int
	Match        bool
}

// AverageSequential returns the mean sequential run time.
func (r BenchmarkResult) AverageSequential() time.Duration {
	if len(r.Sequential) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range r.Sequential {
		sum += d
	}
	return sum / time.Duration(len(r.Sequential))
}

// benchmarkWorkerCounts sweeps 0, step, 2*step ... up to max+1, clamping each
// value to at least one worker and dropping duplicates.
func benchmarkWorkerCounts(max, step int) []int {
	var out []int
	seen := make(map[int]bool)
	for n := 0; n <= max+1; n += step {
		w := n
		if w < 1 {
			w = 1
		}
		if seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

// RunBenchmark times the two-stage pipeline sequentially, then in parallel for
// each worker count of the sweep, and checks that the last parallel result
// matches the sequential one.
func RunBenchmark(ctx context.Context, records []mrapps.Record, cfg BenchmarkConfig) (BenchmarkResult, error) {
	cfg.withDefaults()
	res := BenchmarkResult{
		Records:      len(records),
		Parallel:     make(map[int][]time.Duration),
		WorkerCounts: benchmarkWorkerCounts(cfg.MaxWorkers, cfg.WorkerStep),
	}

	var seqReports []mrapps.StudentReport
	seq := SequentialRunner{Logger: cfg.Logger}
	for i := 0; i < cfg.Trials; i++ {
		started := time.Now()
		reports, _, err := seq.Run(ctx, records)
		if err != nil {
			return res, fmt.Errorf("sequential trial %d: %w", i, err)
		}
		took := time.Since(started)
		res.Sequential = append(res.Sequential, took)
		seqReports = reports
		cfg.Logger.WithFields(log.Fields{"trial": i, "took": took}).Info("[Batch] Sequential trial done")
	}
	cfg.Logger.WithField("avg", res.AverageSequential()).Info("[Batch] Sequential average")

	var parReports []mrapps.StudentReport
	for _, workers := range res.WorkerCounts {
		par := ParallelRunner{Workers: workers, ChunksPerWorker: cfg.ChunksPerWorker, Logger: cfg.Logger}
		for i := 0; i < cfg.Trials; i++ {
			started := time.Now()
			reports, _, err := par.Run(ctx, records)
			if err != nil {
				return res, fmt.Errorf("parallel trial %d (%d workers): %w", i, workers, err)
			}
			took := time.Since(started)
			res.Parallel[workers] = append(res.Parallel[workers], took)
			parReports = reports
			cfg.Logger.WithFields(log.Fields{"workers": workers, "trial": i, "took": took}).Info("[Batch] Parallel trial done")
		}
	}

	if err := ValidateReports(seqReports, parReports); err != nil {
		cfg.Logger.WithError(err).Warn("[Batch] Sequential and parallel results differ")
	} else {
		res.Match = true
	}
	return res, nil
}

// WriteBenchmarkCSV writes a title row, the average sequential time in
// seconds, a blank row, the worker counts, then one row of seconds per trial.
func WriteBenchmarkCSV(w io.Writer, res BenchmarkResult) error {
	cw := csv.NewWriter(w)
	rows := [][]string{
		{fmt.Sprintf("Parallel Results on %d records.", res.Records)},
		{"Average Sequential Time:", formatSeconds(res.AverageSequential())},
		{},
	}

	counts := res.WorkerCounts
	if len(counts) == 0 {
		for k := range res.Parallel {
			counts = append(counts, k)
		}
		sort.Ints(counts)
	}
	header := make([]string, len(counts))
	trials := 0
	for i, c := range counts {
		header[i] = strconv.Itoa(c)
		if n := len(res.Parallel[c]); n > trials {
			trials = n
		}
	}
	rows = append(rows, header)
	for t := 0; t < trials; t++ {
		row := make([]string, len(counts))
		for i, c := range counts {
			if t < len(res.Parallel[c]) {
				row[i] = formatSeconds(res.Parallel[c][t])
			}
		}
		rows = append(rows, row)
	}
	return cw.WriteAll(rows)
}

func formatSeconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}
