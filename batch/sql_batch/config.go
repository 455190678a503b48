package sql_batch

import (
	"fmt"
	"regexp"
)

var identifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SourceConfig selects course records from a table.
type SourceConfig struct {
	Table          string `json:"table"`
	StudentColumn  string `json:"studentcolumn"`
	SemesterColumn string `json:"semestercolumn"`
	CourseColumn   string `json:"coursecolumn"`
	HoursColumn    string `json:"hourscolumn"`
	GradeColumn    string `json:"gradecolumn"`
	Where          string `json:"where"`
}

func (c *SourceConfig) WithDefaults() {
	if c.Table == "" {
		c.Table = "grades"
	}
	if c.StudentColumn == "" {
		c.StudentColumn = "student_id"
	}
	if c.SemesterColumn == "" {
		c.SemesterColumn = "semester"
	}
	if c.CourseColumn == "" {
		c.CourseColumn = "course"
	}
	if c.HoursColumn == "" {
		c.HoursColumn = "hours"
	}
	if c.GradeColumn == "" {
		c.GradeColumn = "grade"
	}
	if c.Where == "" {
		c.Where = "1=1"
	}
}

// SinkConfig configures report import into a (student_id, semester, gpa) table.
type SinkConfig struct {
	TargetTable string `json:"targettable"`
	Replace     bool   `json:"replace"`
	BatchSize   int    `json:"batchsize"`
}

func (c *SinkConfig) WithDefaults() {
	if c.TargetTable == "" {
		c.TargetTable = "student_gpa"
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 2000
	}
}

func quoteIdentifier(s string) (string, error) {
	if !identifierRe.MatchString(s) {
		return "", fmt.Errorf("invalid identifier: %s", s)
	}
	return "`" + s + "`", nil
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(t)
	default:
		return fmt.Sprint(t)
	}
}
