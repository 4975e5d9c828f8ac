package marks

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/serialtest"
)

// State of a Record in the submission workflow.
type State string

const (
	StatePending   State = "PENDING"
	StateSubmitted State = "SUBMITTED"
)

// Totals holds one total per outcome code; index 0 is CO1.
type Totals [core.OutcomeCount]float64

func (t Totals) Sum() float64 {
	var sum float64
	for _, v := range t {
		sum += v
	}
	return sum
}

// Record is a student's mark record for one Test.
// Once Submitted, QuestionMarks and OutcomeTotals only change through a faculty reset.
type Record struct {
	TestID        int64              `json:"testId"`
	RollNumber    int64              `json:"rollNumber"`
	Name          string             `json:"name"`
	Submitted     bool               `json:"submitted"`
	QuestionMarks map[string]float64 `json:"questionMarks"`
	OutcomeTotals Totals             `json:"coMarks"`
	UpdatedAt     time.Time          `json:"updatedAt"` // UTC
}

func (r Record) State() State {
	if r.Submitted {
		return StateSubmitted
	}
	return StatePending
}

// ComputeTotals sums, for each outcome code, the marks of the questions tagged with it.
// Marks for numbers that are not in qs are ignored; missing marks count as 0.
func ComputeTotals(qs []serialtest.Question, questionMarks map[string]float64) Totals {
	var totals Totals
	for _, q := range qs {
		if q.Outcome < 1 || q.Outcome > core.OutcomeCount {
			continue
		}
		totals[q.Outcome-1] += questionMarks[q.QuestionNumber]
	}
	return totals
}

// RosterRow is one line of a roll list.
type RosterRow struct {
	RollNumber json.Number `json:"rollNumber" validate:"required,rollno"`
	Name       string      `json:"name" validate:"required,max=255"`
}

func (rr *RosterRow) Validate(validate *validator.Validate) error {
	rr.RollNumber = json.Number(core.CleanString(rr.RollNumber.String()))
	rr.Name = core.CleanString(rr.Name)
	return validate.Struct(rr)
}

// Roll returns the parsed roll number; only meaningful after a successful Validate.
func (rr RosterRow) Roll() int64 {
	n, _ := strconv.ParseInt(rr.RollNumber.String(), 10, 64)
	return n
}

// Submission is a student's set of marks for a Test.
type Submission struct {
	TestID        int64              `json:"testId"`
	RollNumber    int64              `json:"rollNumber"`
	QuestionMarks map[string]float64 `json:"questionMarks"`
}

// EntryQuery locates a student's record from the student portal.
type EntryQuery struct {
	SubjectID        string `query:"subjectId" json:"subjectId" validate:"required"`
	SerialTestNumber int    `query:"serialTestNumber" json:"serialTestNumber" validate:"required,oneof=1 2"`
	Batch            string `query:"batch" json:"batch" validate:"required"`
	Section          string `query:"section" json:"section" validate:"required"`
	RollNumber       int64  `query:"rollNumber" json:"rollNumber" validate:"required,gt=0"`
}

func (eq *EntryQuery) Validate(validate *validator.Validate) error {
	eq.SubjectID = core.CleanString(eq.SubjectID)
	eq.Batch = core.CleanString(eq.Batch)
	eq.Section = core.CleanString(eq.Section)
	return validate.Struct(eq)
}

// Entry is the assembled view a student fills marks in.
type Entry struct {
	Test          EntryTest          `json:"test"`
	Questions     EntryQuestions     `json:"questions"`
	RollNumber    int64              `json:"rollNumber"`
	StudentName   string             `json:"studentName"`
	Submitted     bool               `json:"submitted"`
	QuestionMarks map[string]float64 `json:"questionMarks"`
	CoMarks       Totals             `json:"coMarks"`
}

type EntryTest struct {
	ID               int64  `json:"id"`
	SubjectCode      string `json:"subjectCode"`
	SubjectName      string `json:"subjectName"`
	SerialTestNumber int    `json:"serialTestNumber"`
	Batch            string `json:"batch"`
	Section          string `json:"section"`
}

type EntryQuestions struct {
	PartA []serialtest.Question `json:"partA"`
	PartB []serialtest.Question `json:"partB"`
}
