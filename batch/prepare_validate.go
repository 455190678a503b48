package batch

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"

	"github.com/emptyOVO/mrkit-gpa/mrapps"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	syntheticGrades  = []string{"A", "A", "B", "B", "B", "C", "C", "D", "F"}
	syntheticHours   = []int{1, 2, 3, 3, 3, 4}
	syntheticTerms   = []string{"Fall", "Spring"}
	syntheticSubject = []string{"CS", "MA", "PH", "EN", "HI", "BI"}
)

// PrepareSyntheticRecords generates a deterministic set of course records.
// The same config always yields the same records.
func PrepareSyntheticRecords(cfg PrepareConfig) []mrapps.Record {
	cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))
	out := make([]mrapps.Record, 0, cfg.Students*cfg.Semesters*cfg.CoursesPerTerm)
	for s := 0; s < cfg.Students; s++ {
		student := fmt.Sprintf("S%06d", s+1)
		for t := 0; t < cfg.Semesters; t++ {
			semester := fmt.Sprintf("%s%d", syntheticTerms[t%2], 2020+t/2)
			for c := 0; c < cfg.CoursesPerTerm; c++ {
				out = append(out, mrapps.Record{
					StudentID: student,
					Semester:  semester,
					Course:    fmt.Sprintf("%s%d", syntheticSubject[rng.Intn(len(syntheticSubject))], 100+rng.Intn(400)),
					Hours:     syntheticHours[rng.Intn(len(syntheticHours))],
					Grade:     syntheticGrades[rng.Intn(len(syntheticGrades))],
				})
			}
		}
	}
	return out
}

// PrepareSyntheticSource recreates cfg.SourceTable and fills it with
// PrepareSyntheticRecords(cfg).
func PrepareSyntheticSource(ctx context.Context, db *sql.DB, cfg PrepareConfig) error {
	cfg.withDefaults()
	table, err := quoteIdentifier(cfg.SourceTable)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s`, table)); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf(`
CREATE TABLE %s (
  id BIGINT NOT NULL,
  student_id VARCHAR(64) NOT NULL,
  semester VARCHAR(64) NOT NULL,
  course VARCHAR(64) NOT NULL,
  hours INT NOT NULL,
  grade VARCHAR(8) NOT NULL,
  PRIMARY KEY (id)
)`, table)); err != nil {
		return err
	}

	records := PrepareSyntheticRecords(cfg)
	const batchSize = 1000
	for start := 0; start < len(records); start += batchSize {
		end := start + batchSize
		if end > len(records) {
			end = len(records)
		}
		placeholders := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for i := start; i < end; i++ {
			r := records[i]
			placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?)")
			args = append(args, i+1, r.StudentID, r.Semester, r.Course, r.Hours, r.Grade)
		}
		insertSQL := fmt.Sprintf(
			"INSERT INTO %s (id, student_id, semester, course, hours, grade) VALUES %s",
			table,
			strings.Join(placeholders, ","),
		)
		if _, err := db.ExecContext(ctx, insertSQL, args...); err != nil {
			return err
		}
	}
	return nil
}

// ValidateReports checks that two runs produced the same reports, ignoring
// order. GPAs are compared with a small tolerance since parallel runs may sum
// a semester's courses in a different order.
func ValidateReports(expected, actual []mrapps.StudentReport) error {
	if len(expected) != len(actual) {
		return fmt.Errorf("report count mismatch: expected %d, actual %d", len(expected), len(actual))
	}
	diff := cmp.Diff(expected, actual,
		cmpopts.SortSlices(func(a, b mrapps.StudentReport) bool { return a.StudentID < b.StudentID }),
		cmpopts.EquateApprox(0, 1e-9),
		cmpopts.EquateEmpty(),
	)
	if diff != "" {
		return fmt.Errorf("reports mismatch (-expected +actual):\n%s", diff)
	}
	return nil
}

func quoteIdentifier(s string) (string, error) {
	if !identifierRe.MatchString(s) {
		return "", fmt.Errorf("invalid identifier: %s", s)
	}
	return "`" + s + "`", nil
}
