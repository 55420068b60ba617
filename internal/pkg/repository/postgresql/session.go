package postgresql

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"

	"indengsvc/backend/internal/pkg/errs"
)

// acquireAttempts bounds how many pooled connections are tried when the
// liveness check finds a stale one.
const acquireAttempts = 2

// WithSession runs fn inside one transaction on one pooled connection.
// fn returning nil commits; an error rolls back and is returned unchanged;
// a panic rolls back and re-panics. The connection is always released.
func (d *Database) WithSession(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	conn, err := d.acquire(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil && d.log != nil {
			d.log.Println("releasing connection:", cerr)
		}
	}()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return &errs.StorageError{Op: "beginning transaction", Err: err}
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if rerr := tx.Rollback(); rerr != nil && !errors.Is(rerr, sql.ErrTxDone) && d.log != nil {
			d.log.Println("rolling back transaction:", rerr)
		}
	}()

	if err = fn(ctx, tx); err != nil {
		return err
	}

	committed = true
	if err = tx.Commit(); err != nil {
		return &errs.StorageError{Op: "committing transaction", Err: err}
	}

	return nil
}

// acquire borrows a connection and pings it before use. A connection that
// fails the ping is closed, which drops it from the pool, and another is tried.
func (d *Database) acquire(ctx context.Context) (bun.Conn, error) {
	var lastErr error
	for i := 0; i < acquireAttempts; i++ {
		conn, err := d.Conn(ctx)
		if err != nil {
			return bun.Conn{}, &errs.StorageError{Op: "acquiring connection", Err: err}
		}

		if err = conn.PingContext(ctx); err == nil {
			return conn, nil
		}

		lastErr = err
		_ = conn.Close()
		if ctx.Err() != nil {
			break
		}
	}

	return bun.Conn{}, &errs.StorageError{Op: "checking connection", Err: lastErr}
}
