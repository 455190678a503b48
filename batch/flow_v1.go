package batch

import (
	"fmt"
	"strings"
)

const FlowVersionV1 = "v1"

// ValidateFlowConfig validates v1 flow schema and required fields.
func ValidateFlowConfig(cfg FlowConfig) error {
	cfg.withDefaults()

	if strings.TrimSpace(cfg.Version) != FlowVersionV1 {
		return fmt.Errorf("unsupported version: %q (expected %q)", cfg.Version, FlowVersionV1)
	}

	switch cfg.Source.Type {
	case SourceCSV:
		if strings.TrimSpace(cfg.Source.Dir) == "" {
			return fmt.Errorf("source.dir is required for csv source")
		}
	case SourceMySQL, SourceSQLite:
		if err := cfg.Source.DB.validate(); err != nil {
			return fmt.Errorf("source.db: %w", err)
		}
		if _, err := quoteIdentifier(cfg.Source.Config.Table); err != nil {
			return fmt.Errorf("source.config.table: %w", err)
		}
	case SourceSynthetic:
		if cfg.Source.Synthetic.Students < 0 || cfg.Source.Synthetic.Semesters < 0 || cfg.Source.Synthetic.CoursesPerTerm < 0 {
			return fmt.Errorf("source.synthetic sizes must not be negative")
		}
	default:
		return fmt.Errorf("unsupported source.type: %s", cfg.Source.Type)
	}

	switch cfg.Transform.Type {
	case TransformSequential, TransformParallel:
	default:
		return fmt.Errorf("unsupported transform.type: %s", cfg.Transform.Type)
	}
	if cfg.Transform.Workers < 0 {
		return fmt.Errorf("transform.workers must not be negative")
	}
	if cfg.Transform.ChunksPerWorker < 0 {
		return fmt.Errorf("transform.chunks_per_worker must not be negative")
	}

	switch cfg.Sink.Type {
	case SinkJSON:
	case SinkMySQL, SinkSQLite:
		if err := cfg.Sink.DB.validate(); err != nil {
			return fmt.Errorf("sink.db: %w", err)
		}
		if _, err := quoteIdentifier(cfg.Sink.Config.TargetTable); err != nil {
			return fmt.Errorf("sink.config.targettable: %w", err)
		}
	default:
		return fmt.Errorf("unsupported sink.type: %s", cfg.Sink.Type)
	}
	return nil
}
