package serialtest

import (
	"context"
	"fmt"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/subject"
)

var (
	// errors
	ErrNotFound          = core.NewNotFoundError("test")
	ErrTestExists        = core.NewConflictError("a test for this subject, serial test, batch and section already exists")
	ErrQuestionExists    = core.NewConflictError("a question with this number is already attached to the test")
	errNoQuestions       = errors.New("no questions provided")
	errDuplicateQuestion = "question number is repeated"
)

type (
	Repository interface {
		// CreateTest inserts t, or returns ErrTestExists if the (subject, serial test, batch, section) tuple is taken.
		CreateTest(ctx context.Context, t Test) (Test, error)
		QueryTests(ctx context.Context, filter *QueryFilter) ([]Test, error)
		GetTest(ctx context.Context, id int64) (Test, error)
		// DeleteTest removes the test with its questions and mark records.
		DeleteTest(ctx context.Context, id int64) error
		// AddQuestions inserts all of qs or none of them.
		AddQuestions(ctx context.Context, testID int64, qs []Question) ([]Question, error)
		QueryQuestions(ctx context.Context, testID int64) ([]Question, error)
	}

	Service struct {
		repo       Repository
		subjSvc    *subject.Service
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, subjSvc *subject.Service, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{repo: repo, subjSvc: subjSvc, validate: validate, translator: translator}
}

// Create creates a Test. The uniqueness of the tuple is enforced by the store in the same statement.
func (svc *Service) Create(ctx context.Context, nt NewTest) (Test, error) {
	if err := nt.Validate(svc.validate); err != nil {
		return Test{}, err
	}
	if _, err := svc.subjSvc.GetByID(ctx, nt.SubjectID); err != nil {
		return Test{}, err
	}

	t, err := svc.repo.CreateTest(ctx, Test{
		SubjectID:        nt.SubjectID,
		SerialTestNumber: nt.SerialTestNumber,
		Batch:            nt.Batch,
		Section:          nt.Section,
		CreatedAt:        time.Now().UTC(),
	})
	if err != nil {
		if err == ErrTestExists {
			return Test{}, err
		}
		return Test{}, errors.Wrap(err, "creating test")
	}
	return t, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter) ([]Test, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QueryTests(ctx, filter)
}

func (svc *Service) GetByID(ctx context.Context, id int64) (Test, error) {
	return svc.repo.GetTest(ctx, id)
}

// Find returns the Test identified by its (subject, serial test, batch, section) tuple.
func (svc *Service) Find(ctx context.Context, subjectID string, serialTestNumber int, batch, section string) (Test, error) {
	filter := &QueryFilter{SubjectID: subjectID, SerialTestNumber: serialTestNumber, Batch: batch, Section: section}
	filter.Clean()
	if filter.SubjectID == "" || filter.SerialTestNumber == 0 || filter.Batch == "" || filter.Section == "" {
		return Test{}, ErrNotFound
	}
	tests, err := svc.repo.QueryTests(ctx, filter)
	if err != nil {
		return Test{}, errors.Wrap(err, "querying tests")
	}
	if len(tests) == 0 {
		return Test{}, ErrNotFound
	}
	return tests[0], nil
}

func (svc *Service) Delete(ctx context.Context, id int64) error {
	return svc.repo.DeleteTest(ctx, id)
}

// AttachQuestions validates every question, then persists all of them atomically.
// Nothing is saved if any question is invalid.
func (svc *Service) AttachQuestions(ctx context.Context, testID int64, nqs []NewQuestion) ([]Question, error) {
	if len(nqs) == 0 {
		return nil, core.NewValidationError(errNoQuestions, core.FieldError{Field: "questions", Error: errNoQuestions.Error()})
	}
	if _, err := svc.repo.GetTest(ctx, testID); err != nil {
		return nil, err
	}
	existing, err := svc.repo.QueryQuestions(ctx, testID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}

	seen := make(map[string]bool, len(existing)+len(nqs))
	for _, q := range existing {
		seen[q.QuestionNumber] = true
	}

	var fldErrs []core.FieldError
	qs := make([]Question, 0, len(nqs))
	for i := range nqs {
		nq := &nqs[i]
		prefix := fmt.Sprintf("questions[%d].", i)
		if err := nq.Validate(svc.validate); err != nil {
			err = core.TranslateFieldErrors(err, svc.translator, func(name string) string { return prefix + name })
			if vErr, ok := err.(*core.ValidationError); ok {
				fldErrs = append(fldErrs, vErr.Fields...)
				continue
			}
			return nil, err
		}
		if seen[nq.QuestionNumber] {
			fldErrs = append(fldErrs, core.FieldError{Field: prefix + "questionNumber", Error: errDuplicateQuestion})
			continue
		}
		seen[nq.QuestionNumber] = true
		qs = append(qs, Question{
			TestID:         testID,
			QuestionNumber: nq.QuestionNumber,
			Part:           nq.Part,
			Outcome:        nq.Outcome,
			MaxScore:       *nq.MaxScore,
		})
	}
	if len(fldErrs) > 0 {
		return nil, core.NewValidationError(nil, fldErrs...)
	}

	qs, err = svc.repo.AddQuestions(ctx, testID, qs)
	if err != nil {
		if err == ErrQuestionExists {
			return nil, err
		}
		return nil, errors.Wrap(err, "adding questions")
	}
	SortQuestions(qs)
	return qs, nil
}

// Questions returns the questions of a Test in sheet order.
func (svc *Service) Questions(ctx context.Context, testID int64) ([]Question, error) {
	if _, err := svc.repo.GetTest(ctx, testID); err != nil {
		return nil, err
	}
	qs, err := svc.repo.QueryQuestions(ctx, testID)
	if err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	SortQuestions(qs)
	return qs, nil
}
