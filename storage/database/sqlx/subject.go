package sqlxrepos

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core"
	"github.com/trezcool/adrap/core/credential"
	"github.com/trezcool/adrap/core/subject"
	"github.com/trezcool/adrap/storage/database"
)

const publishedSetting = "subjects_published"

type subjectRow struct {
	ID              string    `db:"id"`
	Code            string    `db:"code"`
	Name            string    `db:"name"`
	Semester        int       `db:"semester"`
	Batch           string    `db:"batch"`
	Section         string    `db:"section"`
	AcademicYear    string    `db:"academic_year"`
	StaffName       string    `db:"staff_name"`
	FacultyUsername string    `db:"faculty_username"`
	StudentUsername string    `db:"student_username"`
	CreatedAt       time.Time `db:"created_at"`
}

func (r subjectRow) subject() subject.Subject {
	return subject.Subject{
		ID:              r.ID,
		Code:            r.Code,
		Name:            r.Name,
		Semester:        r.Semester,
		Batch:           r.Batch,
		Section:         r.Section,
		AcademicYear:    r.AcademicYear,
		StaffName:       r.StaffName,
		FacultyUsername: r.FacultyUsername,
		StudentUsername: r.StudentUsername,
		CreatedAt:       r.CreatedAt.UTC(),
	}
}

var subjectColumns = []string{
	"id", "code", "name", "semester", "batch", "section",
	"academic_year", "staff_name", "faculty_username", "student_username", "created_at",
}

// subjects constraints
const (
	subjectPKey        = "subjects_pkey"
	subjectCodeNameKey = "subjects_code_name_key"
)

type subjectRepository struct {
	db *sqlx.DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *sqlx.DB) *subjectRepository {
	return &subjectRepository{db: db}
}

func (repo subjectRepository) CreateSubject(ctx context.Context, subj subject.Subject, creds []credential.Credential) (subject.Subject, error) {
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		query, args, err := psql.Insert("subjects").
			Columns(subjectColumns...).
			Values(subj.ID, subj.Code, subj.Name, subj.Semester, subj.Batch, subj.Section,
				subj.AcademicYear, subj.StaffName, subj.FacultyUsername, subj.StudentUsername, subj.CreatedAt.UTC()).
			ToSql()
		if err != nil {
			return errors.Wrap(err, "building query")
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			switch {
			case database.IsUniqueViolation(err, subjectCodeNameKey):
				return subject.ErrSubjectExists
			case database.IsUniqueViolation(err, subjectPKey):
				return subject.ErrIDExists
			}
			return errors.Wrap(err, "inserting subject")
		}
		return insertCredentials(ctx, tx, subj.ID, creds)
	})
	if err != nil {
		return subject.Subject{}, err
	}
	return subj, nil
}

func (repo subjectRepository) QuerySubjects(ctx context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering) ([]subject.Subject, error) {
	b := psql.Select(subjectColumns...).From("subjects")
	if filter != nil {
		if filter.Semester != 0 {
			b = b.Where(sq.Eq{"semester": filter.Semester})
		}
		if filter.Batch != "" {
			b = b.Where(sq.Eq{"batch": filter.Batch})
		}
		if filter.Section != "" {
			b = b.Where(sq.Eq{"section": filter.Section})
		}
		if filter.FacultyUsername != "" {
			b = b.Where(sq.Eq{"faculty_username": filter.FacultyUsername})
		}
		if filter.StudentUsername != "" {
			b = b.Where(sq.Eq{"student_username": filter.StudentUsername})
		}
	}
	b = orderBy(b, ordering, "created_at")

	var rows []subjectRow
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subjects := make([]subject.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.subject())
	}
	return subjects, nil
}

func (repo subjectRepository) GetSubject(ctx context.Context, id string) (subject.Subject, error) {
	query, args, err := psql.Select(subjectColumns...).From("subjects").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return subject.Subject{}, errors.Wrap(err, "building query")
	}
	var r subjectRow
	if err = repo.db.GetContext(ctx, &r, query, args...); err != nil {
		return subject.Subject{}, trapNoRowsErr(err, subject.ErrNotFound, "getting subject")
	}
	return r.subject(), nil
}

func (repo subjectRepository) DeleteSubject(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, "DELETE FROM subjects WHERE id = $1", id)
	if err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return subject.ErrNotFound
	}
	return nil
}

func (repo subjectRepository) ResetSubjects(ctx context.Context) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		// tests, questions, mark records and subject credentials cascade
		if _, err := tx.ExecContext(ctx, "DELETE FROM subjects"); err != nil {
			return errors.Wrap(err, "deleting subjects")
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM credentials WHERE role <> $1", credential.RoleAdmin); err != nil {
			return errors.Wrap(err, "deleting credentials")
		}
		return setSetting(ctx, tx, publishedSetting, strconv.FormatBool(false))
	})
}

func (repo subjectRepository) SetPublished(ctx context.Context, published bool) error {
	return setSetting(ctx, repo.db, publishedSetting, strconv.FormatBool(published))
}

func (repo subjectRepository) IsPublished(ctx context.Context) (bool, error) {
	var value string
	err := repo.db.GetContext(ctx, &value, "SELECT value FROM app_settings WHERE name = $1", publishedSetting)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "reading settings")
	}
	published, _ := strconv.ParseBool(value)
	return published, nil
}

func setSetting(ctx context.Context, exec sqlx.ExecerContext, name, value string) error {
	const q = `
		INSERT INTO app_settings (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value`
	_, err := exec.ExecContext(ctx, q, name, value)
	return errors.Wrap(err, "saving setting")
}
