package batch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/emptyOVO/mrkit-gpa/batch/sql_batch"
	"github.com/emptyOVO/mrkit-gpa/mrapps"
	log "github.com/sirupsen/logrus"
)

const (
	SourceCSV       = "csv"
	SourceMySQL     = "mysql"
	SourceSQLite    = "sqlite"
	SourceSynthetic = "synthetic"

	TransformSequential = "sequential"
	TransformParallel   = "parallel"

	SinkJSON   = "json"
	SinkMySQL  = "mysql"
	SinkSQLite = "sqlite"
)

// FlowConfig describes a source -> GPA map-reduce -> sink pipeline.
type FlowConfig struct {
	Version   string              `json:"version"`
	Source    FlowSourceConfig    `json:"source"`
	Transform FlowTransformConfig `json:"transform"`
	Sink      FlowSinkConfig      `json:"sink"`
}

type FlowSourceConfig struct {
	Type      string        `json:"type"`
	Dir       string        `json:"dir"`
	DB        DBConfig      `json:"db"`
	Config    SourceConfig  `json:"config"`
	Synthetic PrepareConfig `json:"synthetic"`
}

type FlowTransformConfig struct {
	Type            string `json:"type"`
	Workers         int    `json:"workers"`
	ChunksPerWorker int    `json:"chunks_per_worker"`
}

type FlowSinkConfig struct {
	Type   string     `json:"type"`
	Path   string     `json:"path"` // json sink: output file, "" or "-" for stdout
	DB     DBConfig   `json:"db"`
	Config SinkConfig `json:"config"`
}

func (c *FlowConfig) withDefaults() {
	if c.Source.Type == "" {
		c.Source.Type = SourceCSV
	}
	if c.Transform.Type == "" {
		c.Transform.Type = TransformParallel
	}
	if c.Sink.Type == "" {
		c.Sink.Type = SinkJSON
	}
	switch c.Source.Type {
	case SourceMySQL:
		c.Source.DB.Driver = DriverMySQL
	case SourceSQLite:
		c.Source.DB.Driver = DriverSQLite
	}
	switch c.Sink.Type {
	case SinkMySQL:
		c.Sink.DB.Driver = DriverMySQL
	case SinkSQLite:
		c.Sink.DB.Driver = DriverSQLite
	}
	c.Source.Config.WithDefaults()
	c.Sink.Config.WithDefaults()
}

// FlowBenchmarkResult captures source/transform/sink stage durations.
type FlowBenchmarkResult struct {
	Records           int
	Students          int
	SourceDuration    time.Duration
	TransformDuration time.Duration
	SinkDuration      time.Duration
	TotalDuration     time.Duration
}

// LoadFlowConfig reads a JSON flow file, rejecting unknown fields.
func LoadFlowConfig(path string) (FlowConfig, error) {
	var cfg FlowConfig
	f, err := os.Open(path)
	if err != nil {
		return cfg, err
	}
	defer f.Close()
	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// RunFlow executes source -> transform -> sink defined by FlowConfig.
func RunFlow(ctx context.Context, cfg FlowConfig) error {
	_, err := RunFlowBenchmark(ctx, cfg)
	return err
}

// RunFlowBenchmark executes a config-driven flow and reports stage durations.
func RunFlowBenchmark(ctx context.Context, cfg FlowConfig) (FlowBenchmarkResult, error) {
	var bench FlowBenchmarkResult
	started := time.Now()

	cfg.withDefaults()
	if err := ValidateFlowConfig(cfg); err != nil {
		return bench, err
	}

	sSource := time.Now()
	records, err := loadSource(ctx, cfg.Source)
	if err != nil {
		return bench, fmt.Errorf("source %s: %w", cfg.Source.Type, err)
	}
	bench.SourceDuration = time.Since(sSource)
	bench.Records = len(records)

	sTransform := time.Now()
	reports, _, err := NewRunner(cfg.Transform).Run(ctx, records)
	if err != nil {
		return bench, fmt.Errorf("transform %s: %w", cfg.Transform.Type, err)
	}
	bench.TransformDuration = time.Since(sTransform)
	bench.Students = len(reports)

	sSink := time.Now()
	if err := writeSink(ctx, cfg.Sink, reports); err != nil {
		return bench, fmt.Errorf("sink %s: %w", cfg.Sink.Type, err)
	}
	bench.SinkDuration = time.Since(sSink)
	bench.TotalDuration = time.Since(started)

	log.WithFields(log.Fields{
		"records":   bench.Records,
		"students":  bench.Students,
		"source":    bench.SourceDuration,
		"transform": bench.TransformDuration,
		"sink":      bench.SinkDuration,
	}).Info("[Batch] Flow done")
	return bench, nil
}

func loadSource(ctx context.Context, src FlowSourceConfig) ([]mrapps.Record, error) {
	switch src.Type {
	case SourceCSV:
		return ReadCSVDir(src.Dir)
	case SourceSynthetic:
		return PrepareSyntheticRecords(src.Synthetic), nil
	case SourceMySQL, SourceSQLite:
		db, err := openDB(ctx, src.DB)
		if err != nil {
			return nil, err
		}
		defer db.Close()
		return sql_batch.NewSourceAdapter(src.Config).Export(ctx, db)
	}
	return nil, fmt.Errorf("unsupported source.type: %s", src.Type)
}

func writeSink(ctx context.Context, sink FlowSinkConfig, reports []mrapps.StudentReport) error {
	switch sink.Type {
	case SinkJSON:
		if sink.Path == "" || sink.Path == "-" {
			return WriteReportsJSON(os.Stdout, reports)
		}
		if err := os.MkdirAll(filepath.Dir(sink.Path), 0o755); err != nil {
			return err
		}
		f, err := os.Create(sink.Path)
		if err != nil {
			return err
		}
		if err := WriteReportsJSON(f, reports); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case SinkMySQL, SinkSQLite:
		db, err := openDB(ctx, sink.DB)
		if err != nil {
			return err
		}
		defer db.Close()
		return sql_batch.NewSinkAdapter(sink.Config).Import(ctx, db, reports)
	}
	return fmt.Errorf("unsupported sink.type: %s", sink.Type)
}

// WriteReportsJSON writes reports as one indented JSON array sorted by student.
// The caller's slice is left untouched.
func WriteReportsJSON(w io.Writer, reports []mrapps.StudentReport) error {
	sorted := append([]mrapps.StudentReport(nil), reports...)
	mrapps.SortReports(sorted)
	if sorted == nil {
		sorted = []mrapps.StudentReport{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(sorted)
}
