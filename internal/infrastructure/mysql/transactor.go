package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"cozycup/internal/config"
	apperrors "cozycup/internal/errors"
)

const (
	errLockDeadlock    = 1213
	errLockWaitTimeout = 1205
	errDuplicateEntry  = 1062
)

// TxFunc runs inside a transaction. Returning an error rolls it back.
type TxFunc func(ctx context.Context, tx *sql.Tx) error

type Transactor struct {
	db          *sql.DB
	timeout     time.Duration
	maxAttempts int
	logger      *zap.Logger
	sleep       func(time.Duration)
}

func NewTransactor(db *sql.DB, cfg config.DatabaseConfig, logger *zap.Logger) *Transactor {
	attempts := cfg.MaxRetryAttempts
	if attempts < 1 {
		attempts = 1
	}
	return &Transactor{
		db:          db,
		timeout:     cfg.TxTimeout,
		maxAttempts: attempts,
		logger:      logger,
		sleep:       time.Sleep,
	}
}

// WithinTx runs fn in a REPEATABLE READ transaction bounded by the configured
// timeout. Deadlocks and lock wait timeouts restart fn from scratch with
// backoff; once the attempts are used up a DeadlockError is returned.
func (t *Transactor) WithinTx(ctx context.Context, fn TxFunc) error {
	return retryOnDeadlock(t.maxAttempts, t.logger, t.sleep, func() error {
		return t.runOnce(ctx, fn)
	})
}

func (t *Transactor) runOnce(ctx context.Context, fn TxFunc) error {
	txCtx := ctx
	if t.timeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	tx, err := t.db.BeginTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// no-op once committed
	defer tx.Rollback()

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

var backoffs = []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond}

func backoffFor(attempt int) time.Duration {
	base := backoffs[len(backoffs)-1]
	if attempt < len(backoffs) {
		base = backoffs[attempt]
	}
	// ±20% jitter
	jitter := time.Duration(float64(base) * (rand.Float64()*0.4 - 0.2))
	return base + jitter
}

func retryOnDeadlock(maxAttempts int, logger *zap.Logger, sleep func(time.Duration), run func() error) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := run()
		if err == nil {
			return nil
		}
		if !IsDeadlock(err) {
			return err
		}
		if attempt < maxAttempts {
			logger.Warn("deadlock detected, retrying", zap.Int("attempt", attempt), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			sleep(backoffFor(attempt))
		}
	}
	return apperrors.NewDeadlockError("max retries exceeded")
}

func IsDeadlock(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errLockDeadlock || mysqlErr.Number == errLockWaitTimeout
	}
	return false
}

func IsDuplicateEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errDuplicateEntry
	}
	return false
}
