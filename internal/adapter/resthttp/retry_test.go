package resthttp_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bkyoung/issuegraph/internal/adapter/resthttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := resthttp.DefaultRetryConfig()

	assert.Equal(t, 3, config.MaxRetries)
	assert.Equal(t, 2*time.Second, config.InitialBackoff)
	assert.Equal(t, 32*time.Second, config.MaxBackoff)
	assert.Equal(t, 2.0, config.Multiplier)
}

func TestExponentialBackoff(t *testing.T) {
	config := resthttp.RetryConfig{
		MaxRetries:     5,
		InitialBackoff: 2 * time.Second,
		MaxBackoff:     32 * time.Second,
		Multiplier:     2.0,
	}

	tests := []struct {
		name    string
		attempt int
		minWait time.Duration
		maxWait time.Duration
	}{
		{"attempt 0", 0, 1500 * time.Millisecond, 2500 * time.Millisecond}, // 2s ± 25%
		{"attempt 1", 1, 3 * time.Second, 5 * time.Second},                 // 4s ± 25%
		{"attempt 2", 2, 6 * time.Second, 10 * time.Second},                // 8s ± 25%
		{"attempt 4", 4, 24 * time.Second, 32 * time.Second},               // 32s (capped)
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Run multiple times to verify jitter stays in range
			for i := 0; i < 10; i++ {
				backoff := resthttp.ExponentialBackoff(tt.attempt, config)
				assert.GreaterOrEqual(t, backoff, tt.minWait, "backoff too short")
				assert.LessOrEqual(t, backoff, tt.maxWait, "backoff too long")
			}
		})
	}
}

func TestShouldRetry(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"rate limit retries", resthttp.NewRateLimitError("/e", "too many requests"), true},
		{"service unavailable retries", resthttp.NewServiceUnavailableError("/e", "overloaded"), true},
		{"timeout retries", resthttp.NewTimeoutError("/e", "timed out"), true},
		{"authentication does not retry", resthttp.NewAuthenticationError("/e", "bad credentials"), false},
		{"not found does not retry", resthttp.NewNotFoundError("/e", "missing"), false},
		{"generic error does not retry", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resthttp.ShouldRetry(tt.err))
		})
	}
}

func TestRetryWithBackoff_SucceedsFirstTry(t *testing.T) {
	calls := 0
	op := func(ctx context.Context) error {
		calls++
		return nil
	}

	err := resthttp.RetryWithBackoff(context.Background(), op, fastRetryConfig(2))

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	op := func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return resthttp.NewServiceUnavailableError("/e", "overloaded")
		}
		return nil
	}

	err := resthttp.RetryWithBackoff(context.Background(), op, fastRetryConfig(5))

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	op := func(ctx context.Context) error {
		calls++
		return resthttp.NewNotFoundError("/e", "missing")
	}

	err := resthttp.RetryWithBackoff(context.Background(), op, fastRetryConfig(5))

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryWithBackoff_ExhaustsRetries(t *testing.T) {
	calls := 0
	op := func(ctx context.Context) error {
		calls++
		return resthttp.NewRateLimitError("/e", "slow down")
	}

	err := resthttp.RetryWithBackoff(context.Background(), op, fastRetryConfig(2))

	require.Error(t, err)
	assert.Equal(t, 3, calls) // initial attempt + 2 retries
}

func TestRetryWithBackoff_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	op := func(ctx context.Context) error {
		return resthttp.NewRateLimitError("/e", "slow down")
	}

	err := resthttp.RetryWithBackoff(ctx, op, fastRetryConfig(5))

	assert.ErrorIs(t, err, context.Canceled)
}

func fastRetryConfig(maxRetries int) resthttp.RetryConfig {
	return resthttp.RetryConfig{
		MaxRetries:     maxRetries,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		Multiplier:     2.0,
	}
}
