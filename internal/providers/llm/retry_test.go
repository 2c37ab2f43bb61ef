package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts:       attempts,
		BackoffBase:       time.Millisecond,
		BackoffMultiplier: 2.0,
		MaxBackoff:        5 * time.Millisecond,
	}
}

func TestWithRetryRetriesTransient(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return fmt.Errorf("%w: blip", ErrTransient)
		}
		return nil
	})
	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetryStopsOnDeterministicError(t *testing.T) {
	sentinel := errors.New("bad input")
	calls := 0
	err := WithRetry(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		return sentinel
	})
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, calls)
}

func TestWithRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), fastRetry(3), func(ctx context.Context) error {
		calls++
		return fmt.Errorf("%w: still down", ErrTransient)
	})
	assert.ErrorIs(t, err, ErrTransient)
	assert.Equal(t, 3, calls)
}

func TestWithRetryHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := WithRetry(ctx, fastRetry(5), func(ctx context.Context) error {
		return fmt.Errorf("%w: down", ErrTransient)
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTransientStatusClassification(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		assert.True(t, transientStatus(code), "status %d", code)
		assert.ErrorIs(t, statusErr("gemini", code, nil), ErrTransient)
	}
	for _, code := range []int{400, 401, 403, 404} {
		assert.False(t, transientStatus(code), "status %d", code)
		assert.NotErrorIs(t, statusErr("gemini", code, nil), ErrTransient)
	}
}
