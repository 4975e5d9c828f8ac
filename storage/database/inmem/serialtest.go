package inmemdb

import (
	"context"

	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/subject"
)

type serialTestRepository struct {
	db *DB
}

var _ serialtest.Repository = (*serialTestRepository)(nil) // interface compliance check

func NewSerialTestRepository(db *DB) *serialTestRepository {
	return &serialTestRepository{db: db}
}

func (repo serialTestRepository) CreateTest(_ context.Context, t serialtest.Test) (serialtest.Test, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.subjects[t.SubjectID]; !ok {
		return serialtest.Test{}, subject.ErrNotFound
	}
	for _, other := range repo.db.tests {
		if other.SubjectID == t.SubjectID && other.SerialTestNumber == t.SerialTestNumber &&
			other.Batch == t.Batch && other.Section == t.Section {
			return serialtest.Test{}, serialtest.ErrTestExists
		}
	}
	repo.db.testSeq++
	t.ID = repo.db.testSeq
	repo.db.tests[t.ID] = t
	return t, nil
}

func (repo serialTestRepository) QueryTests(_ context.Context, filter *serialtest.QueryFilter) ([]serialtest.Test, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	tests := make([]serialtest.Test, 0)
	for _, id := range sortedKeys(repo.db.tests) {
		t := repo.db.tests[id]
		if filter != nil && !matchTest(t, filter) {
			continue
		}
		tests = append(tests, t)
	}
	return tests, nil
}

func matchTest(t serialtest.Test, f *serialtest.QueryFilter) bool {
	return (f.SubjectID == "" || t.SubjectID == f.SubjectID) &&
		(f.SerialTestNumber == 0 || t.SerialTestNumber == f.SerialTestNumber) &&
		(f.Batch == "" || t.Batch == f.Batch) &&
		(f.Section == "" || t.Section == f.Section)
}

func (repo serialTestRepository) GetTest(_ context.Context, id int64) (serialtest.Test, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if t, ok := repo.db.tests[id]; ok {
		return t, nil
	}
	return serialtest.Test{}, serialtest.ErrNotFound
}

func (repo serialTestRepository) DeleteTest(_ context.Context, id int64) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.tests[id]; !ok {
		return serialtest.ErrNotFound
	}
	repo.db.deleteTest(id)
	return nil
}

func (repo serialTestRepository) AddQuestions(_ context.Context, testID int64, qs []serialtest.Question) ([]serialtest.Question, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.tests[testID]; !ok {
		return nil, serialtest.ErrNotFound
	}
	taken := make(map[string]bool)
	for _, q := range repo.db.questions[testID] {
		taken[q.QuestionNumber] = true
	}
	for _, q := range qs {
		if taken[q.QuestionNumber] {
			return nil, serialtest.ErrQuestionExists
		}
		taken[q.QuestionNumber] = true
	}

	added := make([]serialtest.Question, 0, len(qs))
	for _, q := range qs {
		repo.db.questionSeq++
		q.ID = repo.db.questionSeq
		q.TestID = testID
		added = append(added, q)
	}
	repo.db.questions[testID] = append(repo.db.questions[testID], added...)
	return append([]serialtest.Question(nil), added...), nil
}

func (repo serialTestRepository) QueryQuestions(_ context.Context, testID int64) ([]serialtest.Question, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return append([]serialtest.Question{}, repo.db.questions[testID]...), nil
}
