// Package postgresql is the durable store.Database implementation backed
// by Postgres, grounded on the teacher's internal/catalogsrv/db/postgresql
// package: raw SQL via database/sql, pgconn.PgError constraint-code
// mapping, RETURNING clauses instead of separate SELECTs, and a single
// ScopedConn obtained from internal/store/dbmanager per request.
package postgresql

import (
	"context"
	"database/sql"

	"github.com/tansive/learncore/internal/apperrors"
	"github.com/tansive/learncore/internal/store"
	"github.com/tansive/learncore/internal/store/dberror"
	"github.com/tansive/learncore/internal/store/dbmanager"
)

// Store implements store.Database against a single scoped connection,
// mirroring the teacher's metadataManager/objectManager split collapsed
// into one receiver since this engine's surface is one cohesive domain
// rather than the teacher's metadata-vs-object-store split.
type Store struct {
	c dbmanager.ScopedConn
}

// New wraps a checked-out connection as a store.Database.
func New(c dbmanager.ScopedConn) *Store {
	return &Store{c: c}
}

var _ store.Database = (*Store)(nil)

type txKey struct{}

// querier is satisfied by both *sql.Conn and *sql.Tx, letting every query
// method below run unchanged whether or not a transaction is active on ctx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.c.Conn()
}

// WithTx runs fn inside a single Postgres transaction, committing on
// success and rolling back on error or panic (spec §5). Every store method
// called with the returned ctx (or any ctx derived from it) participates in
// the same transaction.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context) apperrors.Error) (err apperrors.Error) {
	tx, errdb := s.c.Conn().BeginTx(ctx, nil)
	if errdb != nil {
		return dberror.ErrStore.Err(errdb)
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	txCtx := context.WithValue(ctx, txKey{}, tx)
	if err = fn(txCtx); err != nil {
		tx.Rollback()
		return err
	}
	if errdb := tx.Commit(); errdb != nil {
		return dberror.ErrStore.Err(errdb)
	}
	return nil
}

// withAtomic joins an already-open transaction on ctx, or opens its own if
// none is active, so a multi-statement store method (e.g. CreateEntity
// seeding its draft/published rows) is always atomic regardless of whether
// its caller already opened a transaction.
func (s *Store) withAtomic(ctx context.Context, fn func(ctx context.Context) apperrors.Error) apperrors.Error {
	if _, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return fn(ctx)
	}
	return s.WithTx(ctx, fn)
}

func (s *Store) AddPackageScope(ctx context.Context, packageID int64) error {
	return s.c.AddPackageScope(ctx, packageID)
}

func (s *Store) DropPackageScope(ctx context.Context) error {
	return s.c.DropPackageScope(ctx)
}

func (s *Store) Close(ctx context.Context) {
	s.c.Close(ctx)
}
