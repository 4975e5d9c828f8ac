package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core/serialtest"
	"github.com/trezcool/adrap/core/subject"
	"github.com/trezcool/adrap/storage/database"
)

type testRow struct {
	ID               int64     `db:"id"`
	SubjectID        string    `db:"subject_id"`
	SerialTestNumber int       `db:"serial_test_number"`
	Batch            string    `db:"batch"`
	Section          string    `db:"section"`
	CreatedAt        time.Time `db:"created_at"`
}

func (r testRow) test() serialtest.Test {
	return serialtest.Test{
		ID:               r.ID,
		SubjectID:        r.SubjectID,
		SerialTestNumber: r.SerialTestNumber,
		Batch:            r.Batch,
		Section:          r.Section,
		CreatedAt:        r.CreatedAt.UTC(),
	}
}

type questionRow struct {
	ID             int64   `db:"id"`
	TestID         int64   `db:"test_id"`
	QuestionNumber string  `db:"question_number"`
	Part           string  `db:"part"`
	Outcome        int     `db:"co"`
	MaxScore       float64 `db:"max_marks"`
}

func (r questionRow) question() serialtest.Question {
	return serialtest.Question{
		ID:             r.ID,
		TestID:         r.TestID,
		QuestionNumber: r.QuestionNumber,
		Part:           r.Part,
		Outcome:        r.Outcome,
		MaxScore:       r.MaxScore,
	}
}

var (
	testColumns     = []string{"id", "subject_id", "serial_test_number", "batch", "section", "created_at"}
	questionColumns = []string{"id", "test_id", "question_number", "part", "co", "max_marks"}
)

type serialTestRepository struct {
	db *sqlx.DB
}

var _ serialtest.Repository = (*serialTestRepository)(nil) // interface compliance check

func NewSerialTestRepository(db *sqlx.DB) *serialTestRepository {
	return &serialTestRepository{db: db}
}

// CreateTest relies on serial_tests_tuple_key: concurrent duplicates fail in the INSERT itself.
func (repo serialTestRepository) CreateTest(ctx context.Context, t serialtest.Test) (serialtest.Test, error) {
	const q = `
		INSERT INTO serial_tests (subject_id, serial_test_number, batch, section, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := repo.db.GetContext(ctx, &t.ID, q, t.SubjectID, t.SerialTestNumber, t.Batch, t.Section, t.CreatedAt.UTC())
	switch {
	case err == nil:
		return t, nil
	case database.IsUniqueViolation(err):
		return serialtest.Test{}, serialtest.ErrTestExists
	case database.IsForeignKeyViolation(err):
		return serialtest.Test{}, subject.ErrNotFound
	}
	return serialtest.Test{}, errors.Wrap(err, "inserting test")
}

func (repo serialTestRepository) QueryTests(ctx context.Context, filter *serialtest.QueryFilter) ([]serialtest.Test, error) {
	b := psql.Select(testColumns...).From("serial_tests").OrderBy("id")
	if filter != nil {
		if filter.SubjectID != "" {
			b = b.Where(sq.Eq{"subject_id": filter.SubjectID})
		}
		if filter.SerialTestNumber != 0 {
			b = b.Where(sq.Eq{"serial_test_number": filter.SerialTestNumber})
		}
		if filter.Batch != "" {
			b = b.Where(sq.Eq{"batch": filter.Batch})
		}
		if filter.Section != "" {
			b = b.Where(sq.Eq{"section": filter.Section})
		}
	}

	var rows []testRow
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying tests")
	}
	tests := make([]serialtest.Test, 0, len(rows))
	for _, r := range rows {
		tests = append(tests, r.test())
	}
	return tests, nil
}

func (repo serialTestRepository) GetTest(ctx context.Context, id int64) (serialtest.Test, error) {
	query, args, err := psql.Select(testColumns...).From("serial_tests").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return serialtest.Test{}, errors.Wrap(err, "building query")
	}
	var r testRow
	if err = repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return serialtest.Test{}, trapNoRowsErr(err, serialtest.ErrNotFound, "getting test")
	}
	return r.test(), nil
}

func (repo serialTestRepository) DeleteTest(ctx context.Context, id int64) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM serial_tests WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting test")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return serialtest.ErrNotFound
	}
	return nil
}

func (repo serialTestRepository) AddQuestions(ctx context.Context, testID int64, qs []serialtest.Question) ([]serialtest.Question, error) {
	b := psql.Insert("questions").
		Columns("test_id", "question_number", "part", "co", "max_marks").
		Suffix("RETURNING " + joinColumns(questionColumns))
	for _, q := range qs {
		b = b.Values(testID, q.QuestionNumber, q.Part, q.Outcome, q.MaxScore)
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	// a single multi-row INSERT is atomic
	var rows []questionRow
	err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...)
	switch {
	case err == nil:
	case database.IsUniqueViolation(err):
		return nil, serialtest.ErrQuestionExists
	case database.IsForeignKeyViolation(err):
		return nil, serialtest.ErrNotFound
	default:
		return nil, errors.Wrap(err, "inserting questions")
	}

	added := make([]serialtest.Question, 0, len(rows))
	for _, r := range rows {
		added = append(added, r.question())
	}
	return added, nil
}

func (repo serialTestRepository) QueryQuestions(ctx context.Context, testID int64) ([]serialtest.Question, error) {
	var rows []questionRow
	b := psql.Select(questionColumns...).From("questions").Where(sq.Eq{"test_id": testID}).OrderBy("id")
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying questions")
	}
	qs := make([]serialtest.Question, 0, len(rows))
	for _, r := range rows {
		qs = append(qs, r.question())
	}
	return qs, nil
}
