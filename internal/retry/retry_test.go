package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

var errSoft = errors.New("soft")
var errHard = errors.New("hard")

func fastConfig(attempts int) Config {
	return Config{
		Attempts: attempts,
		Policy: func(attempt int, err error) Decision {
			if errors.Is(err, errHard) {
				return Stop()
			}
			return After(time.Millisecond)
		},
	}
}

func TestDoRetryWithResult_SucceedsAfterSoftErrors(t *testing.T) {
	calls := 0
	result, err := DoRetryWithResult(context.Background(), func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errSoft
		}
		return 42, nil
	}, fastConfig(5))

	assert.NoError(t, err)
	assert.Equal(t, 42, result)
	assert.Equal(t, 3, calls)
}

func TestDoRetryWithResult_StopsOnPolicy(t *testing.T) {
	calls := 0
	result, err := DoRetryWithResult(context.Background(), func() (*int, error) {
		calls++
		return nil, errHard
	}, fastConfig(5))

	assert.ErrorIs(t, err, errHard)
	assert.Nil(t, result)
	assert.Equal(t, 1, calls)
}

func TestDoRetry_ReturnsLastErrorWhenExhausted(t *testing.T) {
	calls := 0
	err := DoRetry(context.Background(), func() error {
		calls++
		if calls == 4 {
			return errors.New("last")
		}
		return errSoft
	}, fastConfig(4))

	assert.EqualError(t, err, "last")
	assert.Equal(t, 4, calls)
}

func TestDoRetry_ContextCancelledDuringDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	err := DoRetry(ctx, func() error {
		calls++
		return errSoft
	}, Config{Attempts: 3, Delays: []time.Duration{time.Hour}})

	assert.ErrorIs(t, err, errSoft)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestDoRetry_DefaultConfigDoesNotRetryNoRows(t *testing.T) {
	calls := 0
	err := DoRetry(context.Background(), func() error {
		calls++
		return pgx.ErrNoRows
	})

	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.Equal(t, 1, calls)
}

func TestIsTransientPGError(t *testing.T) {
	testCases := []struct {
		name     string
		err      error
		expected bool
	}{
		{name: "nil", err: nil, expected: false},
		{name: "plain", err: errors.New("boom"), expected: false},
		{name: "connection failure", err: &pgconn.PgError{Code: pgerrcode.ConnectionFailure}, expected: true},
		{name: "unique violation", err: &pgconn.PgError{Code: pgerrcode.UniqueViolation}, expected: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, IsTransientPGError(tc.err))
		})
	}
}
