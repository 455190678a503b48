package main

import (
	"context"
	"os"
	"strconv"

	"github.com/emptyOVO/mrkit-gpa/batch"
	log "github.com/sirupsen/logrus"
)

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

// Reads grades from MySQL, computes GPAs on a worker pool and writes the
// reports back into another table.
func main() {
	db := batch.DBConfig{
		Host:     getenvDefault("MYSQL_HOST", "localhost"),
		Port:     getenvInt("MYSQL_PORT", 3306),
		User:     getenvDefault("MYSQL_USER", "root"),
		Password: getenvDefault("MYSQL_PASSWORD", "123456"),
		Database: getenvDefault("MYSQL_DB", "school"),
	}

	cfg := batch.FlowConfig{
		Version: batch.FlowVersionV1,
		Source: batch.FlowSourceConfig{
			Type:   batch.SourceMySQL,
			DB:     db,
			Config: batch.SourceConfig{Table: getenvDefault("SOURCE_TABLE", "grades")},
		},
		Transform: batch.FlowTransformConfig{
			Type:    batch.TransformParallel,
			Workers: getenvInt("MR_WORKERS", 8),
		},
		Sink: batch.FlowSinkConfig{
			Type:   batch.SinkMySQL,
			DB:     db,
			Config: batch.SinkConfig{TargetTable: getenvDefault("TARGET_TABLE", "student_gpa"), Replace: true},
		},
	}

	if err := batch.RunFlow(context.Background(), cfg); err != nil {
		log.Fatal(err)
	}
}
