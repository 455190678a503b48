package mrapps

import "sort"

// SortReports orders reports by student ID in place.
func SortReports(reports []StudentReport) {
	sort.Slice(reports, func(i, j int) bool {
		return reports[i].StudentID < reports[j].StudentID
	})
}

// SortSemesterGPAs orders stage-1 output by student, then semester.
func SortSemesterGPAs(gpas []SemesterGPA) {
	sort.Slice(gpas, func(i, j int) bool {
		if gpas[i].StudentID != gpas[j].StudentID {
			return gpas[i].StudentID < gpas[j].StudentID
		}
		return gpas[i].Semester < gpas[j].Semester
	})
}
