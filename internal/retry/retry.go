package retry

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// Decision tells the retry loop what to do after a failed attempt.
type Decision struct {
	Retry bool
	Delay time.Duration
}

// Stop ends the loop and returns the error to the caller.
func Stop() Decision {
	return Decision{}
}

// After schedules one more attempt once delay has passed.
func After(delay time.Duration) Decision {
	return Decision{Retry: true, Delay: delay}
}

// Config bounds a retry loop. Policy classifies every failure; a nil Policy
// retries any error using Delays.
type Config struct {
	Attempts int
	Delays   []time.Duration
	Policy   func(attempt int, err error) Decision
}

var dbDelays = []time.Duration{time.Second, 3 * time.Second, 5 * time.Second}

// DBRetryConfig retries only the errors a PostgreSQL client can safely repeat.
var DBRetryConfig = Config{
	Attempts: len(dbDelays) + 1,
	Delays:   dbDelays,
	Policy:   transientOnly,
}

func transientOnly(attempt int, err error) Decision {
	if !IsTransientPGError(err) {
		return Stop()
	}
	return After(delayAt(dbDelays, attempt))
}

func delayAt(delays []time.Duration, attempt int) time.Duration {
	if len(delays) == 0 {
		return 0
	}
	if attempt >= len(delays) {
		return delays[len(delays)-1]
	}
	return delays[attempt]
}

func (config Config) decide(attempt int, err error) Decision {
	if config.Policy != nil {
		return config.Policy(attempt, err)
	}
	return After(delayAt(config.Delays, attempt))
}

// IsTransientPGError reports connection level failures that are worth repeating.
func IsTransientPGError(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgerrcode.IsConnectionException(pgErr.Code)
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	return pgconn.SafeToRetry(err)
}

func DoRetry(ctx context.Context, fn func() error, configs ...Config) error {
	_, err := DoRetryWithResult(ctx, func() (struct{}, error) {
		return struct{}{}, fn()
	}, configs...)
	return err
}

// DoRetryWithResult runs fn until it succeeds, the policy says stop, the
// attempts run out or ctx is done. On failure the zero value and the last
// error are returned.
func DoRetryWithResult[T any](ctx context.Context, fn func() (T, error), configs ...Config) (T, error) {
	config := DBRetryConfig
	if len(configs) > 0 {
		config = configs[0]
	}
	attempts := config.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts-1 {
			break
		}
		decision := config.decide(attempt, err)
		if !decision.Retry {
			break
		}
		if decision.Delay > 0 {
			timer := time.NewTimer(decision.Delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return zero, errors.Join(lastErr, ctx.Err())
			case <-timer.C:
			}
		}
	}
	return zero, lastErr
}
