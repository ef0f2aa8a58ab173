// Package postgres provides PostgreSQL database adapters.
//
// It implements the repository ports with pgx. The submission recorder
// couples the record insert and the student counter increment in one
// transaction; counter updates are expressed as relative deltas in SQL so
// concurrent submissions by one student never lose updates.
package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is a minimal subset of pgxpool used by the repos for easy testing.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// Tx is the minimal transaction surface the submission recorder needs.
type Tx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Beginner starts transactions. *pgxpool.Pool is adapted to this in cmd.
type Beginner interface {
	Begin(ctx context.Context) (Tx, error)
}
