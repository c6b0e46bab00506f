package main

import (
	"context"
	"database/sql"
	"time"

	dErrors "workcheck/pkg/domain-errors"
	txcontext "workcheck/pkg/platform/tx"
)

const defaultReportTxTimeout = 5 * time.Second

// reportPostgresTx runs a submission's writes inside one transaction. The
// transaction rides the context, where every store's execer picks it up, so
// the employee resolution and the ledger append commit or roll back as one.
type reportPostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

func newReportPostgresTx(db *sql.DB) *reportPostgresTx {
	return &reportPostgresTx{db: db}
}

func (t *reportPostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultReportTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(txcontext.WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit()
}
