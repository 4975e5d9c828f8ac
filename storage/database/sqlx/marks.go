package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core/marks"
	"github.com/trezcool/adrap/core/serialtest"
)

type recordRow struct {
	TestID        int64           `db:"test_id"`
	RollNumber    int64           `db:"roll_number"`
	Name          string          `db:"name"`
	Submitted     bool            `db:"submitted"`
	QuestionMarks []byte          `db:"question_marks"`
	CoMarks       pq.Float64Array `db:"co_marks"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r recordRow) record() (marks.Record, error) {
	rec := marks.Record{
		TestID:        r.TestID,
		RollNumber:    r.RollNumber,
		Name:          r.Name,
		Submitted:     r.Submitted,
		QuestionMarks: map[string]float64{},
		UpdatedAt:     r.UpdatedAt.UTC(),
	}
	if len(r.QuestionMarks) > 0 {
		if err := json.Unmarshal(r.QuestionMarks, &rec.QuestionMarks); err != nil {
			return marks.Record{}, errors.Wrap(err, "decoding question marks")
		}
	}
	copy(rec.OutcomeTotals[:], r.CoMarks)
	return rec, nil
}

func recordsFrom(rows []recordRow) ([]marks.Record, error) {
	recs := make([]marks.Record, 0, len(rows))
	for _, r := range rows {
		rec, err := r.record()
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// encodeMarks returns the question marks as JSON text (lib/pq sends []byte as bytea) and the totals array.
func encodeMarks(rec marks.Record) (string, pq.Float64Array, error) {
	qm := rec.QuestionMarks
	if qm == nil {
		qm = map[string]float64{}
	}
	b, err := json.Marshal(qm)
	if err != nil {
		return "", nil, errors.Wrap(err, "encoding question marks")
	}
	return string(b), pq.Float64Array(rec.OutcomeTotals[:]), nil
}

var recordColumns = []string{"test_id", "roll_number", "name", "submitted", "question_marks", "co_marks", "updated_at"}

type marksRepository struct {
	db *sqlx.DB
}

var _ marks.Repository = (*marksRepository)(nil) // interface compliance check

func NewMarksRepository(db *sqlx.DB) *marksRepository {
	return &marksRepository{db: db}
}

// CreateRecords locks the test row so two concurrent roster uploads cannot both pass the emptiness check.
func (repo marksRepository) CreateRecords(ctx context.Context, testID int64, recs []marks.Record) ([]marks.Record, error) {
	var created []marks.Record
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var id int64
		if err := tx.GetContext(ctx, &id, "SELECT id FROM serial_tests WHERE id = $1 FOR UPDATE", testID); err != nil {
			return trapNoRowsErr(err, serialtest.ErrNotFound, "locking test")
		}
		var hasRecords bool
		if err := tx.GetContext(ctx, &hasRecords, "SELECT EXISTS (SELECT 1 FROM student_marks WHERE test_id = $1)", testID); err != nil {
			return errors.Wrap(err, "checking mark records")
		}
		if hasRecords {
			return marks.ErrRosterExists
		}

		b := psql.Insert("student_marks").Columns(recordColumns...).Suffix("RETURNING " + joinColumns(recordColumns))
		for _, rec := range recs {
			qm, co, err := encodeMarks(rec)
			if err != nil {
				return err
			}
			b = b.Values(testID, rec.RollNumber, rec.Name, false, qm, co, rec.UpdatedAt.UTC())
		}
		query, args, err := b.ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		var rows []recordRow
		if err = sqlx.SelectContext(ctx, tx, &rows, query, args...); err != nil {
			return errors.Wrap(err, "inserting mark records")
		}
		created, err = recordsFrom(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (repo marksRepository) GetRecord(ctx context.Context, testID, rollNumber int64) (marks.Record, error) {
	query, args, err := psql.Select(recordColumns...).
		From("student_marks").
		Where(sq.Eq{"test_id": testID, "roll_number": rollNumber}).
		ToSql()
	if err != nil {
		return marks.Record{}, errors.Wrap(err, "building query")
	}
	var r recordRow
	if err = repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return marks.Record{}, trapNoRowsErr(err, marks.ErrNotFound, "getting mark record")
	}
	return r.record()
}

func (repo marksRepository) QueryRecords(ctx context.Context, testID int64) ([]marks.Record, error) {
	var rows []recordRow
	b := psql.Select(recordColumns...).From("student_marks").Where(sq.Eq{"test_id": testID}).OrderBy("roll_number")
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying mark records")
	}
	return recordsFrom(rows)
}

// SubmitRecord only updates a pending row: of two racing submissions exactly one wins.
func (repo marksRepository) SubmitRecord(ctx context.Context, rec marks.Record) (marks.Record, error) {
	qm, co, err := encodeMarks(rec)
	if err != nil {
		return marks.Record{}, err
	}
	query, args, err := psql.Update("student_marks").
		Set("submitted", true).
		Set("question_marks", qm).
		Set("co_marks", co).
		Set("updated_at", rec.UpdatedAt.UTC()).
		Where(sq.Eq{"test_id": rec.TestID, "roll_number": rec.RollNumber, "submitted": false}).
		Suffix("RETURNING " + joinColumns(recordColumns)).
		ToSql()
	if err != nil {
		return marks.Record{}, errors.Wrap(err, "building query")
	}

	var r recordRow
	err = repo.db.GetContext(ctx, &r, query, args...)
	if err == sql.ErrNoRows {
		if _, err = repo.GetRecord(ctx, rec.TestID, rec.RollNumber); err != nil {
			return marks.Record{}, err
		}
		return marks.Record{}, marks.ErrAlreadySubmitted
	}
	if err != nil {
		return marks.Record{}, errors.Wrap(err, "submitting mark record")
	}
	return r.record()
}

func (repo marksRepository) ResetRecord(ctx context.Context, testID, rollNumber int64, at time.Time) (marks.Record, error) {
	var zeros marks.Totals
	query, args, err := psql.Update("student_marks").
		Set("submitted", false).
		Set("question_marks", "{}").
		Set("co_marks", pq.Float64Array(zeros[:])).
		Set("updated_at", at.UTC()).
		Where(sq.Eq{"test_id": testID, "roll_number": rollNumber}).
		Suffix("RETURNING " + joinColumns(recordColumns)).
		ToSql()
	if err != nil {
		return marks.Record{}, errors.Wrap(err, "building query")
	}
	var r recordRow
	if err = repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return marks.Record{}, trapNoRowsErr(err, marks.ErrNotFound, "resetting mark record")
	}
	return r.record()
}
