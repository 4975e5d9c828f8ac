package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
)

type marksRepository struct {
	db *DB
}

var _ marks.Repository = (*marksRepository)(nil) // interface compliance check

func NewMarksRepository(db *DB) *marksRepository {
	return &marksRepository{db: db}
}

func (repo marksRepository) CreateRecords(_ context.Context, testID int64, recs []marks.Record) ([]marks.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.tests[testID]; !ok {
		return nil, serialtest.ErrNotFound
	}
	for k := range repo.db.records {
		if k.testID == testID {
			return nil, marks.ErrRosterExists
		}
	}

	created := make([]marks.Record, 0, len(recs))
	for _, rec := range recs {
		rec = cloneRecord(rec)
		rec.TestID = testID
		rec.Submitted = false
		rec.OutcomeTotals = marks.Totals{}
		repo.db.records[recordKey{testID, rec.RollNumber}] = rec
		created = append(created, cloneRecord(rec))
	}
	return created, nil
}

func (repo marksRepository) GetRecord(_ context.Context, testID, rollNumber int64) (marks.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	rec, ok := repo.db.records[recordKey{testID, rollNumber}]
	if !ok {
		return marks.Record{}, marks.ErrNotFound
	}
	return cloneRecord(rec), nil
}

func (repo marksRepository) QueryRecords(_ context.Context, testID int64) ([]marks.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	recs := make([]marks.Record, 0)
	for k, rec := range repo.db.records {
		if k.testID == testID {
			recs = append(recs, cloneRecord(rec))
		}
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].RollNumber < recs[j].RollNumber })
	return recs, nil
}

func (repo marksRepository) SubmitRecord(_ context.Context, rec marks.Record) (marks.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := recordKey{rec.TestID, rec.RollNumber}
	stored, ok := repo.db.records[key]
	if !ok {
		return marks.Record{}, marks.ErrNotFound
	}
	if stored.Submitted {
		return marks.Record{}, marks.ErrAlreadySubmitted
	}
	stored.Submitted = true
	stored.QuestionMarks = rec.QuestionMarks
	stored.OutcomeTotals = rec.OutcomeTotals
	stored.UpdatedAt = rec.UpdatedAt
	stored = cloneRecord(stored)
	repo.db.records[key] = stored
	return cloneRecord(stored), nil
}

func (repo marksRepository) ResetRecord(_ context.Context, testID, rollNumber int64, at time.Time) (marks.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	key := recordKey{testID, rollNumber}
	rec, ok := repo.db.records[key]
	if !ok {
		return marks.Record{}, marks.ErrNotFound
	}
	rec.Submitted = false
	rec.QuestionMarks = map[string]float64{}
	rec.OutcomeTotals = marks.Totals{}
	rec.UpdatedAt = at
	repo.db.records[key] = rec
	return cloneRecord(rec), nil
}
