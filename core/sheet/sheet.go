package sheet

import (
	"fmt"
	"strconv"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/subject"
)

// Name of the single worksheet of an exported workbook.
const Name = "Marks"

// Export is the consolidated, read-only view of a Test's marks.
// Questions are in sheet order and Students in roll number order.
type Export struct {
	Test      serialtest.Test       `json:"test"`
	Subject   subject.Subject       `json:"subject"`
	Questions []serialtest.Question `json:"questions"`
	Students  []Student             `json:"students"`
}

// Student is a mark record with its derived marks and totals.
// Marks holds one entry per question; unsubmitted students only have zeros.
type Student struct {
	RollNumber    int64              `json:"rollNumber"`
	Name          string             `json:"name"`
	Submitted     bool               `json:"submitted"`
	Marks         map[string]float64 `json:"questionMarks"`
	OutcomeTotals marks.Totals       `json:"coMarks"`
	Total         float64            `json:"totalMarks"`
}

// Derive builds the exported view of rec. Stored totals are ignored.
func Derive(qs []serialtest.Question, rec marks.Record) Student {
	st := Student{
		RollNumber: rec.RollNumber,
		Name:       rec.Name,
		Submitted:  rec.Submitted,
		Marks:      make(map[string]float64, len(qs)),
	}
	for _, q := range qs {
		var mark float64
		if rec.Submitted {
			mark = rec.QuestionMarks[q.QuestionNumber]
		}
		st.Marks[q.QuestionNumber] = mark
	}
	if rec.Submitted {
		st.OutcomeTotals = marks.ComputeTotals(qs, rec.QuestionMarks)
	}
	st.Total = st.OutcomeTotals.Sum()
	return st
}

// Sheet is the rectangular rendering of an Export.
type Sheet struct {
	Metadata      [][]interface{}
	Header        []string
	OutcomeHeader []string
	Rows          [][]interface{}
}

// Build lays out e: label/value metadata rows, a blank row, the question header,
// the outcome header and one row per student.
func Build(e Export) Sheet {
	s := Sheet{
		Metadata: [][]interface{}{
			{"Academic Year:", e.Subject.AcademicYear},
			{"Batch:", e.Test.Batch},
			{"Subject Code:", e.Subject.Code},
			{"Subject Name:", e.Subject.Name},
			{"Serial Test:", e.Test.SerialTestNumber},
			{"Section:", e.Test.Section},
		},
	}

	s.Header = []string{"Register Number", "Name", "Submitted"}
	s.OutcomeHeader = []string{"", "", ""}
	for _, q := range e.Questions {
		s.Header = append(s.Header, "Q"+q.QuestionNumber)
		s.OutcomeHeader = append(s.OutcomeHeader, "CO"+strconv.Itoa(q.Outcome))
	}
	s.Header = append(s.Header, "Total Marks", "")
	s.OutcomeHeader = append(s.OutcomeHeader, "", "")
	for i := 1; i <= core.OutcomeCount; i++ {
		s.Header = append(s.Header, fmt.Sprintf("CO%d Total", i))
		s.OutcomeHeader = append(s.OutcomeHeader, "")
	}

	s.Rows = make([][]interface{}, 0, len(e.Students))
	for _, st := range e.Students {
		row := make([]interface{}, 0, len(s.Header))
		submitted := "No"
		if st.Submitted {
			submitted = "Yes"
		}
		row = append(row, st.RollNumber, st.Name, submitted)
		for _, q := range e.Questions {
			row = append(row, st.Marks[q.QuestionNumber])
		}
		row = append(row, st.Total, "")
		for _, total := range st.OutcomeTotals {
			row = append(row, total)
		}
		s.Rows = append(s.Rows, row)
	}
	return s
}

// Table returns every row of the sheet in order, the blank separator included.
func (s Sheet) Table() [][]interface{} {
	table := make([][]interface{}, 0, len(s.Metadata)+3+len(s.Rows))
	table = append(table, s.Metadata...)
	table = append(table, []interface{}{""})
	table = append(table, toCells(s.Header), toCells(s.OutcomeHeader))
	table = append(table, s.Rows...)
	return table
}

// Strings renders a row as text.
func Strings(row []interface{}) []string {
	out := make([]string, len(row))
	for i, v := range row {
		switch val := v.(type) {
		case string:
			out[i] = val
		case float64:
			out[i] = strconv.FormatFloat(val, 'f', -1, 64)
		default:
			out[i] = fmt.Sprint(val)
		}
	}
	return out
}

// FileName is the download name of the exported workbook.
func FileName(e Export) string {
	return fmt.Sprintf("%s_ST%d_%s_%s_marks.xlsx", e.Subject.Code, e.Test.SerialTestNumber, e.Test.Batch, e.Test.Section)
}

func toCells(ss []string) []interface{} {
	cells := make([]interface{}, len(ss))
	for i, s := range ss {
		cells[i] = s
	}
	return cells
}
