package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/adrap/core"
)

// psql builds postgres ($n) placeholders.
var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// trapNoRowsErr maps "no rows" to notFound.
func trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// withTx runs fn in a transaction, committed when fn returns nil and rolled back otherwise.
// Errors returned by fn are passed through untouched so callers can compare sentinels.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

func orderBy(b sq.SelectBuilder, ordering []core.DBOrdering, fallback string) sq.SelectBuilder {
	if len(ordering) == 0 {
		return b.OrderBy(fallback)
	}
	for _, ord := range ordering {
		b = b.OrderBy(ord.String())
	}
	return b
}

func selectAll(ctx context.Context, q sqlx.QueryerContext, dest interface{}, b sq.SelectBuilder) error {
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}
	return sqlx.SelectContext(ctx, q, dest, query, args...)
}

func joinColumns(cols []string) string {
	return strings.Join(cols, ", ")
}
