package retrylimit

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (s statusErr) Error() string   { return "status" }
func (s statusErr) StatusCode() int { return int(s) }

func fastConfig(attempts int) RetryConfig {
	cfg := DefaultRetryConfig()
	cfg.MaxAttempts = attempts
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 2 * time.Millisecond
	cfg.RateLimitDelay = time.Millisecond
	cfg.Jitter = false
	return cfg
}

func TestWithRetrySucceedsAfterFailures(t *testing.T) {
	t.Parallel()

	calls := 0
	var retried []int
	cfg := fastConfig(5)
	cfg.OnRetry = func(attempt int, _ error) { retried = append(retried, attempt) }

	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("voice handshake timed out")
		}
		return nil
	}, nil, cfg)

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, retried)
}

func TestWithRetryStopsAtMaxAttempts(t *testing.T) {
	t.Parallel()

	cause := errors.New("unreachable")
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return cause
	}, nil, fastConfig(3))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 3, calls)
}

func TestWithRetryFatalStopsImmediately(t *testing.T) {
	t.Parallel()

	cause := errors.New("missing permissions")
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		return Fatal(cause)
	}, nil, fastConfig(5))

	assert.Equal(t, cause, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetryHonoursContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetryMax(ctx, func() error { return nil }, nil, 3)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAdaptiveLimiterAdjusts(t *testing.T) {
	t.Parallel()

	lim := NewAdaptiveLimiter(4, 1, 8, 1, 0.5)
	lim.RateLimited()
	assert.Equal(t, 2.0, lim.CurrentLimit())
	lim.RateLimited()
	lim.RateLimited()
	assert.Equal(t, 1.0, lim.CurrentLimit())

	// No increase right after an error.
	lim.Success()
	assert.Equal(t, 1.0, lim.CurrentLimit())

	lim.now = func() time.Time { return time.Now().Add(time.Minute) }
	lim.Success()
	assert.Equal(t, 2.0, lim.CurrentLimit())
}

func TestRateLimitErrorSlowsLimiter(t *testing.T) {
	t.Parallel()

	lim := NewAdaptiveLimiter(50, 1, 50, 1, 0.5)
	calls := 0
	err := WithRetryConfig(context.Background(), func() error {
		calls++
		if calls == 1 {
			return statusErr(429)
		}
		return nil
	}, lim, fastConfig(3))

	require.NoError(t, err)
	assert.Equal(t, 25.0, lim.CurrentLimit())
	assert.True(t, DefaultClassifier(statusErr(503)))
	assert.False(t, DefaultClassifier(statusErr(404)))
}
