package sqlite

import (
	"errors"
	"math/rand"
	"strings"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type retryConfig struct {
	maxRetries int
	baseDelay  time.Duration
	maxDelay   time.Duration
}

var defaultRetryConfig = retryConfig{
	maxRetries: 3,
	baseDelay:  50 * time.Millisecond,
	maxDelay:   500 * time.Millisecond,
}

// isTransientSQLiteErr reports lock contention that busy_timeout did not
// absorb. Driver errors are matched on their result code; the message check
// only covers errors whose type was lost on the way up.
func isTransientSQLiteErr(err error) bool {
	if err == nil {
		return false
	}
	var serr *moderncsqlite.Error
	if errors.As(err, &serr) {
		code := serr.Code()
		switch {
		case code == sqlite3.SQLITE_IOERR_SHORT_READ:
			return true
		case code&0xff == sqlite3.SQLITE_BUSY, code&0xff == sqlite3.SQLITE_LOCKED:
			return true
		}
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "database table is locked")
}

// retryOp calls fn again after a backoff while it keeps failing with
// contention, up to cfg.maxRetries extra attempts.
func retryOp(cfg retryConfig, fn func() error) error {
	err := fn()
	for attempt := 0; attempt < cfg.maxRetries && isTransientSQLiteErr(err); attempt++ {
		time.Sleep(backoffDelay(cfg, attempt))
		err = fn()
	}
	return err
}

// backoffDelay doubles from baseDelay up to maxDelay and adds jitter below
// baseDelay.
func backoffDelay(cfg retryConfig, attempt int) time.Duration {
	delay := cfg.baseDelay << uint(attempt)
	if delay > cfg.maxDelay {
		delay = cfg.maxDelay
	}
	return delay + time.Duration(rand.Int63n(int64(cfg.baseDelay)))
}
