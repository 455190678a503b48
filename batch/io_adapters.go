package batch

import (
	"context"
	"database/sql"

	"github.com/emptyOVO/mrkit-gpa/batch/sql_batch"
	"github.com/emptyOVO/mrkit-gpa/mrapps"
)

func ExportRecordsFromDB(ctx context.Context, db *sql.DB, cfg SourceConfig) ([]mrapps.Record, error) {
	return sql_batch.ExportRecords(ctx, db, cfg)
}

func ImportReportsToDB(ctx context.Context, db *sql.DB, cfg SinkConfig, reports []mrapps.StudentReport) error {
	return sql_batch.ImportReports(ctx, db, cfg, reports)
}

func LoadReportsFromDB(ctx context.Context, db *sql.DB, cfg SinkConfig) ([]mrapps.StudentReport, error) {
	return sql_batch.LoadReports(ctx, db, cfg)
}
