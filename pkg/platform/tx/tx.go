// Package tx carries SQL transactions through context and runs units of work.
//
// Stores call Executor(ctx, db) so the same method works inside and outside a
// transaction; services call Runner.RunInTx for multi-record writes.
package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "casevault/pkg/domain-errors"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Execer is the subset of *sql.DB and *sql.Tx that stores use.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Executor returns the transaction in ctx, or db when none is active.
func Executor(ctx context.Context, db *sql.DB) Execer {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Runner executes fn as a single unit of work. Every store write made with the
// ctx passed to fn commits or rolls back together.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

const defaultTxTimeout = 5 * time.Second

// PostgresRunner runs units of work in a database transaction.
type PostgresRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewPostgresRunner(db *sql.DB) *PostgresRunner {
	return &PostgresRunner{db: db, timeout: defaultTxTimeout}
}

func (r *PostgresRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	u := &unit{}
	if err := fn(context.WithValue(WithTx(ctx, sqlTx), unitKey{}, u)); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		return err
	}
	u.committed()
	return nil
}

// LockRunner serializes units of work against in-memory stores. Stores
// register an undo step for every write made inside a unit of work through
// OnRollback; a failing fn replays those steps newest first. Writes made
// outside the unit of work are never touched.
type LockRunner struct {
	mu sync.Mutex
}

func NewLockRunner() *LockRunner {
	return &LockRunner{}
}

type lockHeldKey struct{}

type unitKey struct{}

// unit collects the undo steps and commit hooks of one unit of work.
type unit struct {
	mu       sync.Mutex
	undo     []func()
	onCommit []func()
}

func unitFrom(ctx context.Context) (*unit, bool) {
	u, ok := ctx.Value(unitKey{}).(*unit)
	return u, ok
}

// OnRollback records undo against the LockRunner unit of work carried by ctx.
// Outside one it does nothing.
func OnRollback(ctx context.Context, undo func()) {
	u, ok := unitFrom(ctx)
	if !ok {
		return
	}
	u.mu.Lock()
	u.undo = append(u.undo, undo)
	u.mu.Unlock()
}

// AfterCommit defers fn until the unit of work carried by ctx commits and
// drops it if the unit fails. Outside a unit of work fn runs immediately.
func AfterCommit(ctx context.Context, fn func()) {
	u, ok := unitFrom(ctx)
	if !ok {
		fn()
		return
	}
	u.mu.Lock()
	u.onCommit = append(u.onCommit, fn)
	u.mu.Unlock()
}

func (u *unit) rollback() {
	u.mu.Lock()
	steps := u.undo
	u.undo, u.onCommit = nil, nil
	u.mu.Unlock()
	for i := len(steps) - 1; i >= 0; i-- {
		steps[i]()
	}
}

func (u *unit) committed() {
	u.mu.Lock()
	hooks := u.onCommit
	u.undo, u.onCommit = nil, nil
	u.mu.Unlock()
	for _, fn := range hooks {
		fn()
	}
}

func (r *LockRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if held, _ := ctx.Value(lockHeldKey{}).(*LockRunner); held == r {
		return fn(ctx)
	}

	u := &unit{}
	ctx = context.WithValue(ctx, lockHeldKey{}, r)
	ctx = context.WithValue(ctx, unitKey{}, u)

	if err := r.locked(ctx, u, fn); err != nil {
		return err
	}
	u.committed()
	return nil
}

func (r *LockRunner) locked(ctx context.Context, u *unit, fn func(ctx context.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := fn(ctx); err != nil {
		u.rollback()
		return err
	}
	return nil
}
