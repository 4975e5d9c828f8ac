package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core/credential"
)

type credentialRow struct {
	ID           int64          `db:"id"`
	SubjectID    sql.NullString `db:"subject_id"`
	Role         string         `db:"role"`
	Username     string         `db:"username"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
}

func (r credentialRow) credential() credential.Credential {
	return credential.Credential{
		ID:           r.ID,
		SubjectID:    r.SubjectID.String,
		Role:         r.Role,
		Username:     r.Username,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

var credentialColumns = []string{"id", "subject_id", "role", "username", "password_hash", "created_at"}

type credentialRepository struct {
	db *sqlx.DB
}

var _ credential.Repository = (*credentialRepository)(nil) // interface compliance check

func NewCredentialRepository(db *sqlx.DB) *credentialRepository {
	return &credentialRepository{db: db}
}

func (repo credentialRepository) FindCredentials(ctx context.Context, role, username string) ([]credential.Credential, error) {
	var rows []credentialRow
	b := psql.Select(credentialColumns...).
		From("credentials").
		Where(sq.Eq{"role": role, "username": username}).
		OrderBy("id")
	if err := selectAll(ctx, repo.db, &rows, b); err != nil {
		return nil, errors.Wrap(err, "finding credentials")
	}
	creds := make([]credential.Credential, 0, len(rows))
	for _, r := range rows {
		creds = append(creds, r.credential())
	}
	return creds, nil
}

func (repo credentialRepository) UpsertAdmin(ctx context.Context, cred credential.Credential) (credential.Credential, error) {
	const q = `
		INSERT INTO credentials (role, username, password_hash, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (username) WHERE role = 'admin'
		DO UPDATE SET password_hash = EXCLUDED.password_hash
		RETURNING id, subject_id, role, username, password_hash, created_at`

	var r credentialRow
	err := repo.db.GetContext(ctx, &r, q, credential.RoleAdmin, cred.Username, cred.PasswordHash, cred.CreatedAt.UTC())
	if err != nil {
		return credential.Credential{}, errors.Wrap(err, "upserting admin credential")
	}
	return r.credential(), nil
}

// insertCredentials inserts the credentials of a subject within tx.
func insertCredentials(ctx context.Context, tx *sqlx.Tx, subjectID string, creds []credential.Credential) error {
	if len(creds) == 0 {
		return nil
	}
	b := psql.Insert("credentials").Columns("subject_id", "role", "username", "password_hash", "created_at")
	for _, c := range creds {
		b = b.Values(subjectID, c.Role, c.Username, c.PasswordHash, c.CreatedAt.UTC())
	}
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	_, err = tx.ExecContext(ctx, query, args...)
	return errors.Wrap(err, "inserting credentials")
}
