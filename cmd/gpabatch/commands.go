package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/emptyOVO/mrkit-gpa/batch"
	"github.com/emptyOVO/mrkit-gpa/mrapps"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const runTimeout = 2 * time.Hour

// dbFlags binds the connection flags shared by commands that touch a database.
type dbFlags struct {
	driver string
	path   string
	table  string
}

func (f *dbFlags) register(cmd *cobra.Command, prefix, table string) {
	cmd.Flags().StringVar(&f.driver, prefix+"driver", "", "Database driver (mysql|sqlite3)")
	cmd.Flags().StringVar(&f.path, prefix+"sqlite", "", "SQLite database file (implies --"+prefix+"driver=sqlite3)")
	cmd.Flags().StringVar(&f.table, prefix+"table", table, "Table name")
}

func (f dbFlags) config() batch.DBConfig {
	cfg := batch.DBConfig{
		Driver:   f.driver,
		Path:     f.path,
		Host:     getenvDefault("MYSQL_HOST", "127.0.0.1"),
		Port:     getenvInt("MYSQL_PORT", 3306),
		User:     getenvDefault("MYSQL_USER", "root"),
		Password: os.Getenv("MYSQL_PASSWORD"),
		Database: os.Getenv("MYSQL_DB"),
	}
	if cfg.Driver == "" && cfg.Path != "" {
		cfg.Driver = batch.DriverSQLite
	}
	return cfg
}

func (f dbFlags) enabled() bool {
	return f.driver != "" || f.path != ""
}

func newRunCmd() *cobra.Command {
	var (
		configPath string
		inputDir   string
		mode       string
		workers    int
		chunks     int
		output     string
		source     dbFlags
		sink       dbFlags
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a flow from a config file or from flags",
		RunE: func(cmd *cobra.Command, args []string) error {
			var cfg batch.FlowConfig
			if configPath != "" {
				var err error
				if cfg, err = batch.LoadFlowConfig(configPath); err != nil {
					return err
				}
			} else {
				cfg = batch.FlowConfig{
					Version:   batch.FlowVersionV1,
					Source:    batch.FlowSourceConfig{Type: batch.SourceCSV, Dir: inputDir},
					Transform: batch.FlowTransformConfig{Type: mode, Workers: workers, ChunksPerWorker: chunks},
					Sink:      batch.FlowSinkConfig{Type: batch.SinkJSON, Path: output},
				}
				if source.enabled() {
					db := source.config()
					cfg.Source = batch.FlowSourceConfig{Type: sqlSourceType(db), DB: db, Config: batch.SourceConfig{Table: source.table}}
				}
				if sink.enabled() {
					db := sink.config()
					cfg.Sink = batch.FlowSinkConfig{Type: sqlSinkType(db), DB: db, Config: batch.SinkConfig{TargetTable: sink.table, Replace: true}}
				}
			}
			if err := batch.ValidateFlowConfig(cfg); err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
			defer cancel()
			res, err := batch.RunFlowBenchmark(ctx, cfg)
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "records=%d students=%d source=%s transform=%s sink=%s total=%s\n",
				res.Records, res.Students, res.SourceDuration, res.TransformDuration, res.SinkDuration, res.TotalDuration)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Flow config file (JSON)")
	cmd.Flags().StringVarP(&inputDir, "input", "i", getenvDefault("GPA_INPUT_DIR", "example_data"), "Directory of CSV course records")
	cmd.Flags().StringVarP(&mode, "mode", "m", batch.TransformParallel, "Execution strategy (sequential|parallel)")
	cmd.Flags().IntVarP(&workers, "workers", "w", getenvInt("MR_WORKERS", 0), "Parallel workers (0 = 2x CPUs)")
	cmd.Flags().IntVar(&chunks, "chunks-per-worker", 0, "Chunks per worker (0 = default)")
	cmd.Flags().StringVarP(&output, "output", "o", "-", "JSON report file, - for stdout")
	source.register(cmd, "source-", "grades")
	sink.register(cmd, "sink-", "student_gpa")
	return cmd
}

func sqlSourceType(db batch.DBConfig) string {
	if db.Driver == batch.DriverSQLite {
		return batch.SourceSQLite
	}
	return batch.SourceMySQL
}

func sqlSinkType(db batch.DBConfig) string {
	if db.Driver == batch.DriverSQLite {
		return batch.SinkSQLite
	}
	return batch.SinkMySQL
}

func newCheckCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a flow config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := batch.LoadFlowConfig(configPath)
			if err != nil {
				return err
			}
			if err := batch.ValidateFlowConfig(cfg); err != nil {
				return err
			}
			fmt.Println("config check pass")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Flow config file (JSON)")
	if err := cmd.MarkFlagRequired("config"); err != nil {
		panic(err)
	}
	return cmd
}

func newBenchmarkCmd() *cobra.Command {
	var (
		inputDir  string
		students  int
		cfg       batch.BenchmarkConfig
		outputCSV string
	)
	cmd := &cobra.Command{
		Use:   "benchmark",
		Short: "Compare sequential and parallel runs over a worker sweep",
		RunE: func(cmd *cobra.Command, args []string) error {
			var records []mrapps.Record
			if students > 0 {
				records = batch.PrepareSyntheticRecords(batch.PrepareConfig{Students: students})
			} else {
				var err error
				if records, err = batch.ReadCSVDir(inputDir); err != nil {
					return err
				}
			}
			log.Infof("[Batch] %d total records", len(records))

			ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
			defer cancel()
			res, err := batch.RunBenchmark(ctx, records, cfg)
			if err != nil {
				return err
			}

			if outputCSV == "" {
				outputCSV = fmt.Sprintf("Parallel_Results_%d.csv", time.Now().Unix())
			}
			if dir := filepath.Dir(outputCSV); dir != "." {
				if err := os.MkdirAll(dir, 0o755); err != nil {
					return err
				}
			}
			f, err := os.Create(outputCSV)
			if err != nil {
				return err
			}
			if err := batch.WriteBenchmarkCSV(f, res); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Println(outputCSV)
			fmt.Printf("Sequential and Parallel Results Match? %t\n", res.Match)
			return nil
		},
	}
	cmd.Flags().StringVarP(&inputDir, "input", "i", getenvDefault("GPA_INPUT_DIR", "example_data"), "Directory of CSV course records")
	cmd.Flags().IntVar(&students, "synthetic-students", 0, "Benchmark on generated records for this many students instead of --input")
	cmd.Flags().IntVar(&cfg.Trials, "trials", 5, "Runs per configuration")
	cmd.Flags().IntVar(&cfg.MaxWorkers, "max-workers", 0, "Largest worker count of the sweep (0 = 2x CPUs)")
	cmd.Flags().IntVar(&cfg.WorkerStep, "step", 4, "Worker count increment")
	cmd.Flags().IntVar(&cfg.ChunksPerWorker, "chunks-per-worker", 4, "Chunks per worker")
	cmd.Flags().StringVarP(&outputCSV, "output", "o", "", "Result CSV path (default Parallel_Results_<unix>.csv)")
	return cmd
}

func newPrepareCmd() *cobra.Command {
	var (
		prep   batch.PrepareConfig
		csvDir string
		target dbFlags
	)
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Generate synthetic course records into a CSV directory or a SQL table",
		RunE: func(cmd *cobra.Command, args []string) error {
			if csvDir != "" {
				if err := os.MkdirAll(csvDir, 0o755); err != nil {
					return err
				}
				f, err := os.Create(filepath.Join(csvDir, "grades.csv"))
				if err != nil {
					return err
				}
				if err := batch.WriteCSV(f, batch.PrepareSyntheticRecords(prep)); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Println("prepare done")
				return nil
			}
			if !target.enabled() {
				return fmt.Errorf("prepare needs --csv-dir, --driver or --sqlite")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), runTimeout)
			defer cancel()
			db, err := batch.OpenForApp(ctx, target.config())
			if err != nil {
				return err
			}
			defer db.Close()
			prep.SourceTable = target.table
			if err := batch.PrepareSyntheticSource(ctx, db, prep); err != nil {
				return err
			}
			fmt.Println("prepare done")
			return nil
		},
	}
	cmd.Flags().StringVar(&csvDir, "csv-dir", "", "Write grades.csv into this directory")
	cmd.Flags().IntVar(&prep.Students, "students", getenvInt("STUDENTS", 1000), "Number of students")
	cmd.Flags().IntVar(&prep.Semesters, "semesters", 4, "Semesters per student")
	cmd.Flags().IntVar(&prep.CoursesPerTerm, "courses", 5, "Courses per semester")
	cmd.Flags().Int64Var(&prep.Seed, "seed", 29, "Random seed")
	target.register(cmd, "", "grades")
	return cmd
}
