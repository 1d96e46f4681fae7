package docgen

import (
	"math"
	"sort"
	"strings"
)

// control-type label marking a record as exam-classified. grade
// averages only consider these rows.
const examControlType = "экзамен"

func isExamRow(row TranscriptRow) bool {
	return strings.EqualFold(strings.TrimSpace(row.ControlType), examControlType)
}

// CeilHundredths rounds up to two decimal places. the institution's
// convention: never round a grade average down.
func CeilHundredths(x float64) float64 {
	return math.Ceil(x*100) / 100
}

type SemesterStat struct {
	Semester int     `json:"semester"`
	Credits  float64 `json:"credits"`
	// credit-weighted average of exam grades, ceiled at hundredths
	GPA float64 `json:"gpa"`
}

type TranscriptStats struct {
	TotalCredits float64        `json:"total_credits"`
	Semesters    []SemesterStat `json:"semesters"`
	// average of semester GPAs, ceiled at hundredths
	CumulativeGPA float64 `json:"cumulative_gpa"`
}

// ComputeStats derives the numbers the document definition needs from
// raw transcript rows. total credits count every row; averages are
// restricted to exam-classified rows and weighted by credits.
func ComputeStats(rows []TranscriptRow) TranscriptStats {
	var stats TranscriptStats

	type acc struct {
		weighted float64
		credits  float64
	}
	bySemester := map[int]*acc{}

	for _, row := range rows {
		stats.TotalCredits += row.Credits

		if !isExamRow(row) {
			continue
		}
		a := bySemester[row.Semester]
		if a == nil {
			a = &acc{}
			bySemester[row.Semester] = a
		}
		a.weighted += row.Grade * row.Credits
		a.credits += row.Credits
	}

	semesters := make([]int, 0, len(bySemester))
	for s := range bySemester {
		semesters = append(semesters, s)
	}
	sort.Ints(semesters)

	var gpaSum float64
	for _, s := range semesters {
		a := bySemester[s]
		gpa := CeilHundredths(a.weighted / a.credits)
		gpaSum += gpa
		stats.Semesters = append(stats.Semesters, SemesterStat{
			Semester: s,
			Credits:  a.credits,
			GPA:      gpa,
		})
	}
	if len(semesters) > 0 {
		stats.CumulativeGPA = CeilHundredths(gpaSum / float64(len(semesters)))
	}

	return stats
}
