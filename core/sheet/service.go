package sheet

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/subject"
)

type Service struct {
	testSvc  *serialtest.Service
	subjSvc  *subject.Service
	marksSvc *marks.Service
}

func NewService(testSvc *serialtest.Service, subjSvc *subject.Service, marksSvc *marks.Service) *Service {
	return &Service{testSvc: testSvc, subjSvc: subjSvc, marksSvc: marksSvc}
}

// Export loads a Test, its sorted questions and every mark record, and derives the totals.
func (svc *Service) Export(ctx context.Context, testID int64) (Export, error) {
	t, err := svc.testSvc.GetByID(ctx, testID)
	if err != nil {
		return Export{}, err
	}
	subj, err := svc.subjSvc.GetByID(ctx, t.SubjectID)
	if err != nil {
		return Export{}, err
	}
	qs, err := svc.testSvc.Questions(ctx, testID)
	if err != nil {
		return Export{}, err
	}
	recs, err := svc.marksSvc.Records(ctx, testID)
	if err != nil {
		return Export{}, errors.Wrap(err, "loading mark records")
	}

	students := make([]Student, 0, len(recs))
	for _, rec := range recs {
		students = append(students, Derive(qs, rec))
	}
	return Export{Test: t, Subject: subj, Questions: qs, Students: students}, nil
}
