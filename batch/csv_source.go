package batch

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/emptyOVO/mrkit-gpa/mrapps"
)

var csvColumns = []string{"StudentID", "Semester", "Course", "Hours", "Grade"}

// ReadCSVDir loads every *.csv file directly under dir, in file name order.
// Each file needs a header row naming at least the StudentID, Semester, Course,
// Hours and Grade columns.
func ReadCSVDir(dir string) ([]mrapps.Record, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []mrapps.Record
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".csv") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		records, err := readCSVFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		out = append(out, records...)
	}
	return out, nil
}

func readCSVFile(path string) ([]mrapps.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}

// ReadCSV parses one header-led CSV stream of course records.
func ReadCSV(r io.Reader) ([]mrapps.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	for _, c := range csvColumns {
		if _, ok := idx[c]; !ok {
			return nil, fmt.Errorf("missing column %s", c)
		}
	}

	var out []mrapps.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		hours, err := strconv.Atoi(strings.TrimSpace(row[idx["Hours"]]))
		if err != nil {
			line, _ := cr.FieldPos(idx["Hours"])
			return nil, fmt.Errorf("line %d: invalid hours: %w", line, err)
		}
		out = append(out, mrapps.Record{
			StudentID: row[idx["StudentID"]],
			Semester:  row[idx["Semester"]],
			Course:    row[idx["Course"]],
			Hours:     hours,
			Grade:     strings.TrimSpace(row[idx["Grade"]]),
		})
	}
	return out, nil
}

// WriteCSV writes records with the header ReadCSV expects.
func WriteCSV(w io.Writer, records []mrapps.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvColumns); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.StudentID, r.Semester, r.Course, strconv.Itoa(r.Hours), r.Grade}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
