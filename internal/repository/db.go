// Package repository is the sole writer to the users/tasks tables. It
// translates domain operations into SQL, enforcing the version-token
// concurrency protocol on every Task write (spec §4.1).
package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool (and pgxmock.PgxPoolIface, for tests)
// that the repositories need. Depending on this interface rather than the
// concrete pool lets repository unit tests run against pgxmock without a
// live database.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}
