// CLAUDE:SUMMARY Busy-retry helpers for SQLite writes — bounded backoff around transactions and single statements.
package dbopen

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	busyAttempts = 3
	busyBackoff  = 100 * time.Millisecond
)

// IsBusy reports whether err is an SQLite BUSY/locked condition. The
// modernc driver surfaces these as message text, not typed errors.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}

// RunTx executes fn inside a transaction, retrying the whole transaction
// when SQLite reports BUSY. fn returning an error rolls the transaction
// back and, unless the error is a BUSY condition, propagates it as is.
func RunTx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	return retryBusy(ctx, "tx", func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin tx: %w", err)
		}
		if err := fn(tx); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
		return nil
	})
}

// Exec runs one write statement with the same busy retry as RunTx.
func Exec(ctx context.Context, db *sql.DB, query string, args ...any) (sql.Result, error) {
	var res sql.Result
	err := retryBusy(ctx, "exec", func() error {
		var err error
		res, err = db.ExecContext(ctx, query, args...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// retryBusy runs op up to busyAttempts times, sleeping attempt*busyBackoff
// between tries. Only BUSY errors are retried; anything else returns
// immediately.
func retryBusy(ctx context.Context, label string, op func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil || !IsBusy(err) {
			return err
		}
		if attempt == busyAttempts {
			return fmt.Errorf("dbopen: %s: still busy after %d attempts: %w", label, busyAttempts, err)
		}

		wait := time.Duration(attempt) * busyBackoff
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("dbopen: %s interrupted during retry: %w", label, ctx.Err())
		case <-timer.C:
		}
	}
}
