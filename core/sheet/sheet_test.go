package sheet

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/subject"
)

var questions = []serialtest.Question{
	{QuestionNumber: "1", Part: serialtest.PartA, Outcome: 1, MaxScore: 2},
	{QuestionNumber: "11", Part: serialtest.PartB, Outcome: 2, MaxScore: 10},
}

func TestDerive(t *testing.T) {
	tests := []struct {
		name string
		rec  marks.Record
		want Student
	}{
		{
			name: "submitted",
			rec: marks.Record{
				RollNumber: 100, Name: "Asha", Submitted: true,
				QuestionMarks: map[string]float64{"1": 2, "11": 7},
				OutcomeTotals: marks.Totals{0, 0, 0, 0, 99}, // stale totals are recomputed
			},
			want: Student{
				RollNumber: 100, Name: "Asha", Submitted: true,
				Marks:         map[string]float64{"1": 2, "11": 7},
				OutcomeTotals: marks.Totals{2, 7, 0, 0, 0},
				Total:         9,
			},
		},
		{
			name: "submitted with missing marks",
			rec:  marks.Record{RollNumber: 102, Name: "Mani", Submitted: true, QuestionMarks: map[string]float64{"11": 3}},
			want: Student{
				RollNumber: 102, Name: "Mani", Submitted: true,
				Marks:         map[string]float64{"1": 0, "11": 3},
				OutcomeTotals: marks.Totals{0, 3, 0, 0, 0},
				Total:         3,
			},
		},
		{
			name: "pending ignores stray marks",
			rec:  marks.Record{RollNumber: 101, Name: "Ravi", QuestionMarks: map[string]float64{"1": 1}},
			want: Student{RollNumber: 101, Name: "Ravi", Marks: map[string]float64{"1": 0, "11": 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Derive(questions, tt.rec))
		})
	}
}

func TestBuild(t *testing.T) {
	e := Export{
		Test:      serialtest.Test{ID: 1, SerialTestNumber: 2, Batch: "2022", Section: "A"},
		Subject:   subject.Subject{Code: "CS101", Name: "Data Structures", AcademicYear: "2024-2025"},
		Questions: questions,
		Students: []Student{
			Derive(questions, marks.Record{RollNumber: 100, Name: "Asha", Submitted: true, QuestionMarks: map[string]float64{"1": 2, "11": 7.5}}),
			Derive(questions, marks.Record{RollNumber: 101, Name: "Ravi"}),
		},
	}
	s := Build(e)

	assert.Equal(t, [][]interface{}{
		{"Academic Year:", "2024-2025"},
		{"Batch:", "2022"},
		{"Subject Code:", "CS101"},
		{"Subject Name:", "Data Structures"},
		{"Serial Test:", 2},
		{"Section:", "A"},
	}, s.Metadata)
	assert.Equal(t, []string{
		"Register Number", "Name", "Submitted", "Q1", "Q11", "Total Marks", "",
		"CO1 Total", "CO2 Total", "CO3 Total", "CO4 Total", "CO5 Total",
	}, s.Header)
	assert.Equal(t, []string{"", "", "", "CO1", "CO2", "", "", "", "", "", "", ""}, s.OutcomeHeader)
	assert.Equal(t, [][]interface{}{
		{int64(100), "Asha", "Yes", 2.0, 7.5, 9.5, "", 2.0, 7.5, 0.0, 0.0, 0.0},
		{int64(101), "Ravi", "No", 0.0, 0.0, 0.0, "", 0.0, 0.0, 0.0, 0.0, 0.0},
	}, s.Rows)

	table := s.Table()
	assert.Len(t, table, 6+1+2+2)
	assert.Equal(t, []interface{}{""}, table[6])
	assert.Equal(t, "Register Number", table[7][0])
	assert.Equal(t, []string{"100", "Asha", "Yes", "2", "7.5", "9.5", "", "2", "7.5", "0", "0", "0"}, Strings(table[9]))

	assert.Equal(t, "CS101_ST2_2022_A_marks.xlsx", FileName(e))
}

func TestBuild_noStudents(t *testing.T) {
	s := Build(Export{Questions: questions})
	assert.Empty(t, s.Rows)
	assert.Len(t, s.Table(), 9)
}
