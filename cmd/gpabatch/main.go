package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var level string
	rootCmd := &cobra.Command{
		Use:   "gpabatch",
		Short: "gpabatch computes per-semester student GPAs with an in-process map-reduce engine",
		Long: `gpabatch reads course records from CSV files, MySQL, SQLite or a synthetic generator,
runs the two chained GPA map-reduce stages sequentially or on a worker pool, and
writes the student reports as JSON or into a SQL table.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := log.ParseLevel(level)
			if err != nil {
				return err
			}
			log.SetLevel(lvl)
			log.SetOutput(os.Stderr)
			return nil
		},
	}
	rootCmd.PersistentFlags().StringVar(&level, "log-level", getenvDefault("LOG_LEVEL", "info"), "Log level (trace|debug|info|warn|error)")

	rootCmd.AddCommand(newRunCmd(), newCheckCmd(), newBenchmarkCmd(), newPrepareCmd())
	return rootCmd
}

func getenvDefault(name, d string) string {
	v := os.Getenv(name)
	if v == "" {
		return d
	}
	return v
}

func getenvInt(name string, d int) int {
	v := os.Getenv(name)
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}
