package serialtest

import (
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/adrap/core"
)

// Question parts
const (
	PartA = "A"
	PartB = "B"
)

type Test struct {
	ID               int64     `json:"id"`
	SubjectID        string    `json:"subjectId"`
	SerialTestNumber int       `json:"serialTestNumber"`
	Batch            string    `json:"batch"`
	Section          string    `json:"section"`
	CreatedAt        time.Time `json:"createdAt"` // UTC
}

type Question struct {
	ID             int64   `json:"id"`
	TestID         int64   `json:"testId"`
	QuestionNumber string  `json:"questionNumber"`
	Part           string  `json:"part"`
	Outcome        int     `json:"co"`
	MaxScore       float64 `json:"maxMarks"`
}

// NewTest contains information needed to create a Test.
type NewTest struct {
	SubjectID        string `json:"subjectId" validate:"required"`
	SerialTestNumber int    `json:"serialTestNumber" validate:"required,oneof=1 2"`
	Batch            string `json:"batch" validate:"required,max=50"`
	Section          string `json:"section" validate:"required,max=10"`
}

func (nt *NewTest) Validate(validate *validator.Validate) error {
	nt.SubjectID = core.CleanString(nt.SubjectID)
	nt.Batch = core.CleanString(nt.Batch)
	nt.Section = core.CleanString(nt.Section)
	return validate.Struct(nt)
}

// NewQuestion contains information needed to attach a Question to a Test.
type NewQuestion struct {
	QuestionNumber string   `json:"questionNumber" validate:"required,max=50"`
	Part           string   `json:"part" validate:"required,oneof=A B"`
	Outcome        int      `json:"co" validate:"outcome"`
	MaxScore       *float64 `json:"maxMarks" validate:"required,gt=0"`
}

func (nq *NewQuestion) Validate(validate *validator.Validate) error {
	nq.QuestionNumber = core.CleanString(nq.QuestionNumber)
	nq.Part = core.CleanString(nq.Part)
	return validate.Struct(nq)
}

type QueryFilter struct {
	SubjectID        string `query:"subjectId"`
	SerialTestNumber int    `query:"serialTestNumber"`
	Batch            string `query:"batch"`
	Section          string `query:"section"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.SubjectID == "" && qf.SerialTestNumber == 0 && qf.Batch == "" && qf.Section == ""
}

func (qf *QueryFilter) Clean() {
	qf.SubjectID = core.CleanString(qf.SubjectID)
	qf.Batch = core.CleanString(qf.Batch)
	qf.Section = core.CleanString(qf.Section)
}

// DefaultPartA returns the fixed Part A template: questions 1-10, CO1, 2 marks each.
func DefaultPartA() []NewQuestion {
	qs := make([]NewQuestion, 0, 10)
	for i := 1; i <= 10; i++ {
		maxScore := 2.0
		qs = append(qs, NewQuestion{
			QuestionNumber: strconv.Itoa(i),
			Part:           PartA,
			Outcome:        1,
			MaxScore:       &maxScore,
		})
	}
	return qs
}
