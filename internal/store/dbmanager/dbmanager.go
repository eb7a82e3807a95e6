// Package dbmanager manages the PostgreSQL connection pool and
// package-scoped session state backing internal/store/postgresql,
// adapted from the teacher's internal/catalogsrv/db/dbmanager package: the
// same postgresPool/postgresConn split, session-parameter setup on
// checkout, and SET/RESET-based scoping — but scoping on a single
// "learncore.curr_package_id" session variable instead of an arbitrary set
// of tenant/project scopes, since this engine scopes state to one package
// at a time (spec §7 "every store operation is implicitly scoped to a
// learning package").
package dbmanager

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"github.com/lib/pq"

	"github.com/rs/zerolog/log"
)

// PackageScopeVar is the session variable RLS policies (if any) would read
// to scope rows to the current package.
const PackageScopeVar = "learncore.curr_package_id"

// ScopedConn is a single checked-out connection with package-scope state.
type ScopedConn interface {
	Conn() *sql.Conn
	AddPackageScope(ctx context.Context, packageID int64) error
	DropPackageScope(ctx context.Context) error
	Close(ctx context.Context)
}

// ScopedDb is a connection pool that hands out ScopedConn values.
type ScopedDb interface {
	Conn(ctx context.Context) (ScopedConn, error)
	Stats() (requests, returns uint64)
	OpenConns() int
}

type postgresPool struct {
	connRequests uint64
	connReturns  uint64
	db           *sql.DB
}

type postgresConn struct {
	conn    *sql.Conn
	cancel  context.CancelFunc
	scoped  bool
	pool    *postgresPool
}

// New opens a connection pool against dsn, following the teacher's
// pool-tuning constants (50 max open, 10 idle, 30m lifetime).
func New(dsn string) (ScopedDb, error) {
	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Error().Err(err).Msg("failed to open db")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		log.Error().Err(err).Msg("failed to ping db")
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &postgresPool{db: sqlDB}, nil
}

func (p *postgresPool) Conn(ctx context.Context) (ScopedConn, error) {
	ctx, cancel := context.WithCancel(ctx)

	conn, err := p.db.Conn(ctx)
	if err != nil {
		cancel()
		log.Error().Err(err).Msg("failed to obtain connection")
		return nil, fmt.Errorf("failed to obtain database connection: %w", err)
	}

	sessionParams := map[string]string{
		"lock_timeout":                        "5s",
		"statement_timeout":                   "5s",
		"idle_in_transaction_session_timeout": "5s",
	}
	for param, value := range sessionParams {
		query := fmt.Sprintf("SET %s = %s", pq.QuoteIdentifier(param), pq.QuoteLiteral(value))
		if _, err := conn.ExecContext(ctx, query); err != nil {
			cancel()
			conn.Close()
			return nil, fmt.Errorf("failed to set %s: %w", param, err)
		}
	}

	atomic.AddUint64(&p.connRequests, 1)
	return &postgresConn{conn: conn, cancel: cancel, pool: p}, nil
}

func (p *postgresPool) Stats() (requests, returns uint64) {
	return atomic.LoadUint64(&p.connRequests), atomic.LoadUint64(&p.connReturns)
}

func (p *postgresPool) OpenConns() int { return p.db.Stats().OpenConnections }

func (c *postgresConn) Conn() *sql.Conn { return c.conn }

// AddPackageScope sets learncore.curr_package_id for the lifetime of this
// connection (spec §7). Subsequent rows inserted/queried by this
// connection can rely on it for RLS-style defense in depth, even though
// the Go-level callers already scope every query by package id explicitly.
func (c *postgresConn) AddPackageScope(ctx context.Context, packageID int64) error {
	if c.conn == nil {
		return fmt.Errorf("no active connection")
	}
	query := fmt.Sprintf("SET %s = %s", pq.QuoteIdentifier(PackageScopeVar), pq.QuoteLiteral(strconv.FormatInt(packageID, 10)))
	if _, err := c.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to set package scope: %w", err)
	}
	c.scoped = true
	return nil
}

func (c *postgresConn) DropPackageScope(ctx context.Context) error {
	if c.conn == nil || !c.scoped {
		return nil
	}
	query := fmt.Sprintf("RESET %s", pq.QuoteIdentifier(PackageScopeVar))
	if _, err := c.conn.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to reset package scope: %w", err)
	}
	c.scoped = false
	return nil
}

func (c *postgresConn) Close(ctx context.Context) {
	if c.conn == nil {
		return
	}
	if err := c.DropPackageScope(ctx); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to drop package scope during connection close")
	}
	c.conn.Close()
	if c.cancel != nil {
		c.cancel()
	}
	atomic.AddUint64(&c.pool.connReturns, 1)
}
