// Package mrapps holds the map and reduce functions of the GPA pipeline.
//
// Stage 1 groups course grades by (student, semester) and computes an
// hours-weighted GPA. Stage 2 groups semester GPAs by student into one report.
package mrapps

import (
	"errors"
	"fmt"
	"strings"

	mapreduce "github.com/emptyOVO/mrkit-gpa"
)

// ErrUnknownGrade is returned for a letter grade missing from the point table.
var ErrUnknownGrade = errors.New("unknown grade")

var gradePoints = map[string]float64{
	"A": 4,
	"B": 3,
	"C": 2,
	"D": 1,
	"F": 0,
}

// GradePoints returns the points of a letter grade.
func GradePoints(grade string) (float64, error) {
	p, ok := gradePoints[strings.TrimSpace(grade)]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownGrade, grade)
	}
	return p, nil
}

// Record is one course result of one student.
type Record struct {
	StudentID string
	Semester  string
	Course    string
	Hours     int
	Grade     string
}

type SemesterKey struct {
	StudentID string
	Semester  string
}

type CourseGrade struct {
	Course string
	Hours  int
	Grade  string
}

// SemesterGPA is the output of stage 1 and the input of stage 2.
type SemesterGPA struct {
	StudentID string
	Semester  string
	GPA       float64
}

type TermGPA struct {
	Semester string
	GPA      float64
}

// StudentReport maps every semester of a student to its GPA.
type StudentReport struct {
	StudentID string             `json:"StudentID"`
	Grades    map[string]float64 `json:"Grades"`
}

func MapBySemester(r Record) (mapreduce.KV[SemesterKey, CourseGrade], error) {
	return mapreduce.KV[SemesterKey, CourseGrade]{
		Key:   SemesterKey{StudentID: r.StudentID, Semester: r.Semester},
		Value: CourseGrade{Course: r.Course, Hours: r.Hours, Grade: r.Grade},
	}, nil
}

// CalculateGPA weights grade points by credit hours. A semester without any
// credit hours has GPA 0.
func CalculateGPA(g mapreduce.Group[SemesterKey, CourseGrade]) (SemesterGPA, error) {
	var hours, points float64
	for _, c := range g.Values {
		p, err := GradePoints(c.Grade)
		if err != nil {
			return SemesterGPA{}, fmt.Errorf("course %s: %w", c.Course, err)
		}
		hours += float64(c.Hours)
		points += p * float64(c.Hours)
	}
	gpa := 0.0
	if hours != 0 {
		gpa = points / hours
	}
	return SemesterGPA{StudentID: g.Key.StudentID, Semester: g.Key.Semester, GPA: gpa}, nil
}

func MapByStudentID(s SemesterGPA) (mapreduce.KV[string, TermGPA], error) {
	return mapreduce.KV[string, TermGPA]{
		Key:   s.StudentID,
		Value: TermGPA{Semester: s.Semester, GPA: s.GPA},
	}, nil
}

func ReduceByStudentID(g mapreduce.Group[string, TermGPA]) (StudentReport, error) {
	report := StudentReport{StudentID: g.Key, Grades: make(map[string]float64, len(g.Values))}
	for _, t := range g.Values {
		report.Grades[t.Semester] = t.GPA
	}
	return report, nil
}

// Typed adapters for building engines.
var (
	SemesterMapper = mapreduce.MapFunc[Record, SemesterKey, CourseGrade](MapBySemester)
	GPAReducer     = mapreduce.ReduceFunc[SemesterKey, CourseGrade, SemesterGPA](CalculateGPA)
	StudentMapper  = mapreduce.MapFunc[SemesterGPA, string, TermGPA](MapByStudentID)
	ReportReducer  = mapreduce.ReduceFunc[string, TermGPA, StudentReport](ReduceByStudentID)
)
