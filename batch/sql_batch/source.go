package sql_batch

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/emptyOVO/mrkit-gpa/mrapps"
)

// ExportRecords loads every matching course record into memory.
func ExportRecords(ctx context.Context, db *sql.DB, cfg SourceConfig) ([]mrapps.Record, error) {
	cfg.WithDefaults()
	table, err := quoteIdentifier(cfg.Table)
	if err != nil {
		return nil, err
	}
	cols := make([]string, 0, 5)
	for _, c := range []string{cfg.StudentColumn, cfg.SemesterColumn, cfg.CourseColumn, cfg.HoursColumn, cfg.GradeColumn} {
		q, err := quoteIdentifier(c)
		if err != nil {
			return nil, err
		}
		cols = append(cols, q)
	}

	querySQL := fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(cols, ", "), table, cfg.Where)
	rows, err := db.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", cfg.Table, err)
	}
	defer rows.Close()

	var out []mrapps.Record
	for rows.Next() {
		var student, semester, course, hours, grade interface{}
		if err := rows.Scan(&student, &semester, &course, &hours, &grade); err != nil {
			return nil, err
		}
		h, err := strconv.Atoi(strings.TrimSpace(asString(hours)))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid hours %q: %w", len(out)+1, asString(hours), err)
		}
		out = append(out, mrapps.Record{
			StudentID: asString(student),
			Semester:  asString(semester),
			Course:    asString(course),
			Hours:     h,
			Grade:     strings.TrimSpace(asString(grade)),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
