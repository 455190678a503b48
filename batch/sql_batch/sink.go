package sql_batch

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/emptyOVO/mrkit-gpa/mrapps"
)

// ImportReports writes one (student_id, semester, gpa) row per report entry in a
// single transaction. With Replace set the table is emptied first; otherwise
// existing rows with the same key are overwritten.
func ImportReports(ctx context.Context, db *sql.DB, cfg SinkConfig, reports []mrapps.StudentReport) error {
	cfg.WithDefaults()
	table, err := quoteIdentifier(cfg.TargetTable)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
  student_id VARCHAR(64) NOT NULL,
  semester VARCHAR(64) NOT NULL,
  gpa DOUBLE NOT NULL,
  PRIMARY KEY (student_id, semester)
)`, table)); err != nil {
		return err
	}
	if cfg.Replace {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
			return err
		}
	}

	batch := make([][3]interface{}, 0, cfg.BatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		args := make([]interface{}, 0, len(batch)*3)
		valueSQL := make([]string, 0, len(batch))
		for _, row := range batch {
			valueSQL = append(valueSQL, "(?, ?, ?)")
			args = append(args, row[0], row[1], row[2])
		}
		sqlStr := fmt.Sprintf("REPLACE INTO %s (student_id, semester, gpa) VALUES %s", table, strings.Join(valueSQL, ","))
		if _, err := tx.ExecContext(ctx, sqlStr, args...); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for _, r := range reports {
		semesters := make([]string, 0, len(r.Grades))
		for s := range r.Grades {
			semesters = append(semesters, s)
		}
		sort.Strings(semesters)
		for _, s := range semesters {
			batch = append(batch, [3]interface{}{r.StudentID, s, r.Grades[s]})
			if len(batch) >= cfg.BatchSize {
				if err := flush(); err != nil {
					return err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadReports reads a table written by ImportReports back into reports.
func LoadReports(ctx context.Context, db *sql.DB, cfg SinkConfig) ([]mrapps.StudentReport, error) {
	cfg.WithDefaults()
	table, err := quoteIdentifier(cfg.TargetTable)
	if err != nil {
		return nil, err
	}
	rows, err := db.QueryContext(ctx, fmt.Sprintf("SELECT student_id, semester, gpa FROM %s ORDER BY student_id, semester", table))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []mrapps.StudentReport
	for rows.Next() {
		var student, semester string
		var gpa float64
		if err := rows.Scan(&student, &semester, &gpa); err != nil {
			return nil, err
		}
		if len(out) == 0 || out[len(out)-1].StudentID != student {
			out = append(out, mrapps.StudentReport{StudentID: student, Grades: map[string]float64{}})
		}
		out[len(out)-1].Grades[semester] = gpa
	}
	return out, rows.Err()
}
