package reembed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetryWithBackoff_FirstTrySuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return nil
	}, 3, 10*time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 1, attempts)
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	attempts := 0
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("temporary error")
		}
		return nil
	}, 5, 10*time.Millisecond)

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_AllAttemptsFail(t *testing.T) {
	attempts := 0
	expectedErr := errors.New("persistent error")
	err := RetryWithBackoff(context.Background(), func() error {
		attempts++
		return expectedErr
	}, 3, 10*time.Millisecond)

	assert.Equal(t, expectedErr, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	attempts := 0
	err := RetryWithBackoff(ctx, func() error {
		attempts++
		if attempts == 2 {
			cancel()
		}
		return errors.New("error")
	}, 10, 10*time.Millisecond)

	assert.ErrorIs(t, err, context.Canceled)
	assert.LessOrEqual(t, attempts, 2)
}

func TestRetryWithBackoff_InvalidMaxAttempts(t *testing.T) {
	attempts := 0
	operation := func() error {
		attempts++
		return errors.New("error")
	}

	assert.Equal(t, ErrInvalidMaxAttempts, RetryWithBackoff(context.Background(), operation, 0, time.Millisecond))
	assert.Equal(t, ErrInvalidMaxAttempts, RetryWithBackoff(context.Background(), operation, -1, time.Millisecond))
	assert.Equal(t, 0, attempts)
}
