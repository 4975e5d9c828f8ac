package marks

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/subject"
)

var (
	// errors
	ErrNotFound         = core.NewNotFoundError("student")
	ErrAlreadySubmitted = core.NewStateError("marks have already been submitted")
	ErrRosterExists     = core.NewConflictError("a roster has already been uploaded for this test")
	errEmptyRoster      = errors.New("no student marks provided")

	errDuplicateRoll   = "roll number is repeated"
	errUnknownQuestion = "no such question in this test"
	errNegativeMark    = "mark cannot be negative"
	errMarkTooHigh     = "mark exceeds the maximum of %s"
)

type (
	Repository interface {
		// CreateRecords inserts every record or none.
		// It returns ErrRosterExists when the test already has mark records.
		CreateRecords(ctx context.Context, testID int64, recs []Record) ([]Record, error)
		GetRecord(ctx context.Context, testID, rollNumber int64) (Record, error)
		// QueryRecords returns the records of a test ordered by roll number.
		QueryRecords(ctx context.Context, testID int64) ([]Record, error)
		// SubmitRecord saves marks and totals and marks the record submitted, in one step,
		// only if it is still pending. It returns ErrNotFound or ErrAlreadySubmitted otherwise.
		SubmitRecord(ctx context.Context, rec Record) (Record, error)
		// ResetRecord clears marks and totals and marks the record pending, whatever its state.
		ResetRecord(ctx context.Context, testID, rollNumber int64, at time.Time) (Record, error)
	}

	Service struct {
		repo       Repository
		testSvc    *serialtest.Service
		subjSvc    *subject.Service
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(
	repo Repository,
	testSvc *serialtest.Service,
	subjSvc *subject.Service,
	validate *validator.Validate,
	translator ut.Translator,
) *Service {
	return &Service{
		repo:       repo,
		testSvc:    testSvc,
		subjSvc:    subjSvc,
		validate:   validate,
		translator: translator,
	}
}

// IngestRoster creates one pending Record per roster row. A Test takes a single roster.
func (svc *Service) IngestRoster(ctx context.Context, testID int64, rows []RosterRow) ([]Record, error) {
	if len(rows) == 0 {
		return nil, core.NewValidationError(errEmptyRoster, core.FieldError{Field: "studentMarks", Error: errEmptyRoster.Error()})
	}
	if _, err := svc.testSvc.GetByID(ctx, testID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	seen := make(map[int64]bool, len(rows))
	recs := make([]Record, 0, len(rows))
	var fldErrs []core.FieldError
	for i := range rows {
		row := &rows[i]
		prefix := fmt.Sprintf("studentMarks[%d].", i)
		if err := row.Validate(svc.validate); err != nil {
			err = core.TranslateFieldErrors(err, svc.translator, func(name string) string { return prefix + name })
			if vErr, ok := err.(*core.ValidationError); ok {
				fldErrs = append(fldErrs, vErr.Fields...)
				continue
			}
			return nil, err
		}
		roll := row.Roll()
		if seen[roll] {
			fldErrs = append(fldErrs, core.FieldError{Field: prefix + "rollNumber", Error: errDuplicateRoll})
			continue
		}
		seen[roll] = true
		recs = append(recs, Record{
			TestID:        testID,
			RollNumber:    roll,
			Name:          row.Name,
			QuestionMarks: map[string]float64{},
			UpdatedAt:     now,
		})
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(nil, fldErrs...)
	}

	recs, err := svc.repo.CreateRecords(ctx, testID, recs)
	if err != nil {
		if err == ErrRosterExists {
			return nil, err
		}
		return nil, errors.Wrap(err, "creating mark records")
	}
	return recs, nil
}

// Records returns every Record of a Test ordered by roll number.
func (svc *Service) Records(ctx context.Context, testID int64) ([]Record, error) {
	if _, err := svc.testSvc.GetByID(ctx, testID); err != nil {
		return nil, err
	}
	return svc.repo.QueryRecords(ctx, testID)
}

// LoadForEntry returns a pending Record for editing.
// A submitted Record is refused with ErrAlreadySubmitted and no data.
func (svc *Service) LoadForEntry(ctx context.Context, testID, rollNumber int64) (Record, error) {
	rec, err := svc.repo.GetRecord(ctx, testID, rollNumber)
	if err != nil {
		return Record{}, err
	}
	if rec.Submitted {
		return Record{}, ErrAlreadySubmitted
	}
	return rec, nil
}

// Entry assembles the student portal view: test and subject summary, questions split by part,
// and the student's pending record.
func (svc *Service) Entry(ctx context.Context, eq EntryQuery) (Entry, error) {
	if err := eq.Validate(svc.validate); err != nil {
		return Entry{}, core.TranslateFieldErrors(err, svc.translator, func(name string) string { return name })
	}
	t, err := svc.testSvc.Find(ctx, eq.SubjectID, eq.SerialTestNumber, eq.Batch, eq.Section)
	if err != nil {
		return Entry{}, err
	}
	subj, err := svc.subjSvc.GetByID(ctx, t.SubjectID)
	if err != nil {
		return Entry{}, err
	}
	rec, err := svc.LoadForEntry(ctx, t.ID, eq.RollNumber)
	if err != nil {
		return Entry{}, err
	}
	qs, err := svc.testSvc.Questions(ctx, t.ID)
	if err != nil {
		return Entry{}, err
	}
	partA, partB := serialtest.SplitParts(qs)

	return Entry{
		Test: EntryTest{
			ID:               t.ID,
			SubjectCode:      subj.Code,
			SubjectName:      subj.Name,
			SerialTestNumber: t.SerialTestNumber,
			Batch:            t.Batch,
			Section:          t.Section,
		},
		Questions:     EntryQuestions{PartA: partA, PartB: partB},
		RollNumber:    rec.RollNumber,
		StudentName:   rec.Name,
		Submitted:     rec.Submitted,
		QuestionMarks: rec.QuestionMarks,
		CoMarks:       rec.OutcomeTotals,
	}, nil
}

// RecordMarks validates every mark against its question and submits the Record.
// Any invalid mark rejects the whole submission and leaves the Record pending and unchanged.
func (svc *Service) RecordMarks(ctx context.Context, testID, rollNumber int64, questionMarks map[string]float64) (Record, error) {
	rec, err := svc.LoadForEntry(ctx, testID, rollNumber)
	if err != nil {
		return Record{}, err
	}
	qs, err := svc.testSvc.Questions(ctx, testID)
	if err != nil {
		return Record{}, err
	}
	if err = checkMarks(qs, questionMarks); err != nil {
		return Record{}, err
	}

	cleaned := make(map[string]float64, len(questionMarks))
	for num, mark := range questionMarks {
		cleaned[num] = mark
	}
	rec.QuestionMarks = cleaned
	rec.OutcomeTotals = ComputeTotals(qs, cleaned)
	rec.Submitted = true
	rec.UpdatedAt = time.Now().UTC()

	rec, err = svc.repo.SubmitRecord(ctx, rec)
	if err != nil {
		if err == ErrAlreadySubmitted || err == ErrNotFound {
			return Record{}, err
		}
		return Record{}, errors.Wrap(err, "submitting marks")
	}
	return rec, nil
}

// ResetMarks puts a Record back to pending with no marks. Resetting a pending Record is a no-op.
func (svc *Service) ResetMarks(ctx context.Context, testID, rollNumber int64) (Record, error) {
	rec, err := svc.repo.ResetRecord(ctx, testID, rollNumber, time.Now().UTC())
	if err != nil {
		if err == ErrNotFound {
			return Record{}, err
		}
		return Record{}, errors.Wrap(err, "resetting marks")
	}
	return rec, nil
}

// checkMarks reports, per question number, marks that are unknown, negative or above the maximum.
func checkMarks(qs []serialtest.Question, questionMarks map[string]float64) error {
	byNumber := make(map[string]serialtest.Question, len(qs))
	for _, q := range qs {
		byNumber[q.QuestionNumber] = q
	}

	nums := make([]string, 0, len(questionMarks))
	for num := range questionMarks {
		nums = append(nums, num)
	}
	sort.Slice(nums, func(i, j int) bool { return serialtest.CompareNumbers(nums[i], nums[j]) < 0 })

	var fldErrs []core.FieldError
	for _, num := range nums {
		mark := questionMarks[num]
		field := "questionMarks." + num
		q, ok := byNumber[num]
		switch {
		case !ok:
			fldErrs = append(fldErrs, core.FieldError{Field: field, Error: errUnknownQuestion})
		case mark < 0:
			fldErrs = append(fldErrs, core.FieldError{Field: field, Error: errNegativeMark})
		case mark > q.MaxScore:
			max := strconv.FormatFloat(q.MaxScore, 'f', -1, 64)
			fldErrs = append(fldErrs, core.FieldError{Field: field, Error: fmt.Sprintf(errMarkTooHigh, max)})
		}
	}
	if len(fldErrs) > 0 {
		return core.NewValidationError(nil, fldErrs...)
	}
	return nil
}
