package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"time"

	"gorm.io/gorm"
)

type txKey struct{}

// TxOptions configures Transactor behaviour.
type TxOptions struct {
	Isolation  sql.IsolationLevel
	MaxRetries int
}

// DefaultTxOptions runs read-committed transactions with three retries.
func DefaultTxOptions() TxOptions {
	return TxOptions{Isolation: sql.LevelReadCommitted, MaxRetries: 3}
}

// Transactor runs units of work inside a GORM transaction carried on the context.
type Transactor struct {
	db   *gorm.DB
	opts TxOptions
}

// NewTransactor builds a transactor bound to db.
func NewTransactor(db *gorm.DB, opts TxOptions) *Transactor {
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	return &Transactor{db: db, opts: opts}
}

// WithinTransaction executes fn in a transaction, replaying it on serialization
// failures, deadlocks and lock timeouts. Nested calls join the outer transaction.
func (t *Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}

	var lastErr error
	backoff := 50 * time.Millisecond
	for attempt := 0; attempt <= t.opts.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return fn(context.WithValue(ctx, txKey{}, tx))
		}, &sql.TxOptions{Isolation: t.opts.Isolation})
		if err == nil {
			return nil
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt == t.opts.MaxRetries {
			return fmt.Errorf("max retries (%d) exceeded: %w", t.opts.MaxRetries, err)
		}
		lastErr = err

		jitter := time.Duration(rand.Int63n(int64(backoff / 4)))
		select {
		case <-time.After(backoff + jitter):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return lastErr
}

// Conn returns the transaction bound to ctx, or db scoped to ctx when none is active.
func Conn(ctx context.Context, db *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return db.WithContext(ctx)
}
