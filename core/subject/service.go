package subject

import (
	"context"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
)

var (
	// errors
	ErrNotFound      = core.NewNotFoundError("subject")
	ErrSubjectExists = core.NewConflictError("a subject with this code and name already exists")
	ErrIDExists      = core.NewConflictError("a subject with this id already exists")
)

type (
	Repository interface {
		// CreateSubject inserts subj and its credentials atomically.
		// It returns ErrIDExists when the id is taken and ErrSubjectExists when (code, name) is.
		CreateSubject(ctx context.Context, subj Subject, creds []credential.Credential) (Subject, error)
		QuerySubjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		// DeleteSubject removes the subject with its tests, questions, mark records and credentials.
		DeleteSubject(ctx context.Context, id string) error
		// ResetSubjects removes every subject and dependent row, and unpublishes subjects.
		ResetSubjects(ctx context.Context) error
		SetPublished(ctx context.Context, published bool) error
		IsPublished(ctx context.Context) (bool, error)
	}

	Service struct {
		repo       Repository
		credSvc    *credential.Service
		validate   *validator.Validate
		translator ut.Translator
	}
)

func NewService(repo Repository, credSvc *credential.Service, validate *validator.Validate, translator ut.Translator) *Service {
	return &Service{repo: repo, credSvc: credSvc, validate: validate, translator: translator}
}

func (svc *Service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	if err := ns.Validate(svc.validate); err != nil {
		return Subject{}, err
	}

	facultyCred, err := svc.credSvc.Issue(ns.facultyCredential())
	if err != nil {
		return Subject{}, svc.prefixFields(err, "faculty")
	}
	studentCred, err := svc.credSvc.Issue(ns.studentCredential())
	if err != nil {
		return Subject{}, svc.prefixFields(err, "student")
	}

	subj := Subject{
		ID:              ns.ID,
		Code:            ns.Code,
		Name:            ns.Name,
		Semester:        ns.Semester,
		Batch:           ns.Batch,
		Section:         ns.Section,
		AcademicYear:    ns.AcademicYear,
		StaffName:       ns.StaffName,
		FacultyUsername: ns.FacultyUsername,
		StudentUsername: ns.StudentUsername,
		CreatedAt:       time.Now().UTC(),
	}
	if subj.ID == "" {
		subj.ID = uuid.New().String()
	}

	subj, err = svc.repo.CreateSubject(ctx, subj, []credential.Credential{facultyCred, studentCred})
	if err != nil {
		if err == ErrSubjectExists {
			return Subject{}, err
		}
		return Subject{}, errors.Wrap(err, "creating subject")
	}
	return subj, nil
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Subject, error) {
	if filter != nil {
		filter.Clean()
	}
	return svc.repo.QuerySubjects(ctx, filter, ordering)
}

func (svc *Service) GetByID(ctx context.Context, id string) (Subject, error) {
	return svc.repo.GetSubject(ctx, core.CleanString(id))
}

func (svc *Service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteSubject(ctx, core.CleanString(id))
}

func (svc *Service) Reset(ctx context.Context) error {
	return errors.Wrap(svc.repo.ResetSubjects(ctx), "resetting subjects")
}

func (svc *Service) Publish(ctx context.Context) error {
	return errors.Wrap(svc.repo.SetPublished(ctx, true), "publishing subjects")
}

func (svc *Service) IsPublished(ctx context.Context) (bool, error) {
	return svc.repo.IsPublished(ctx)
}

// prefixFields maps credential field errors onto the NewSubject json fields (eg. password -> facultyPassword).
func (svc *Service) prefixFields(err error, prefix string) error {
	return core.TranslateFieldErrors(err, svc.translator, func(name string) string {
		return prefix + strings.ToUpper(name[:1]) + name[1:]
	})
}
