package sql_batch

import (
	"context"
	"database/sql"

	"github.com/emptyOVO/mrkit-gpa/mrapps"
)

type SourceAdapter struct {
	cfg SourceConfig
}

func NewSourceAdapter(cfg SourceConfig) SourceAdapter {
	return SourceAdapter{cfg: cfg}
}

func (a SourceAdapter) Export(ctx context.Context, db *sql.DB) ([]mrapps.Record, error) {
	return ExportRecords(ctx, db, a.cfg)
}

type SinkAdapter struct {
	cfg SinkConfig
}

func NewSinkAdapter(cfg SinkConfig) SinkAdapter {
	return SinkAdapter{cfg: cfg}
}

func (a SinkAdapter) Import(ctx context.Context, db *sql.DB, reports []mrapps.StudentReport) error {
	return ImportReports(ctx, db, a.cfg, reports)
}
