package usecase

import (
	"errors"
	"math/rand"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	apperrors "kalpa/internal/errors"
)

// withDeadlockRetry re-runs fn after a storage deadlock, with a jittered
// linear backoff. Only deadlocks (MySQL 1213) are retried here: lock wait
// timeouts already surface as Busy, and conflicts must go back to the caller
// with fresh state.
func withDeadlockRetry(logger *zap.Logger, maxAttempts int, fn func() error) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}

		if !isDeadlockError(err) {
			return err
		}

		if attempt < maxAttempts {
			logger.Warn("deadlock detected, retrying",
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", maxAttempts))
			backoff := time.Duration(attempt) * 100 * time.Millisecond
			jitter := time.Duration(rand.Float64() * 0.4 * float64(backoff))
			time.Sleep(backoff + jitter)
		}
	}

	return apperrors.NewBusyError("operation deadlocked, max retries exceeded")
}

func isDeadlockError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == 1213
	}
	return false
}
