package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	errs "hrportal/internal/errors"
)

func TestLoginLimiter_LockoutAfterMaxAttempts(t *testing.T) {
	ctx := context.Background()
	limiter := NewLoginLimiter(NewMemoryAttemptStore(), 5, 15*time.Minute)

	for i := 0; i < 5; i++ {
		assert.NoError(t, limiter.Check(ctx, "1.2.3.4"))
		limiter.RecordFailure(ctx, "1.2.3.4")
	}

	assert.ErrorIs(t, limiter.Check(ctx, "1.2.3.4"), errs.ErrTooManyAttempts)

	// Other clients are unaffected.
	assert.NoError(t, limiter.Check(ctx, "5.6.7.8"))
}

func TestLoginLimiter_WindowElapsesLazily(t *testing.T) {
	ctx := context.Background()
	limiter := NewLoginLimiter(NewMemoryAttemptStore(), 5, 15*time.Minute)

	now := time.Now()
	limiter.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		limiter.RecordFailure(ctx, "1.2.3.4")
	}
	assert.ErrorIs(t, limiter.Check(ctx, "1.2.3.4"), errs.ErrTooManyAttempts)

	// Still inside the window.
	now = now.Add(14 * time.Minute)
	assert.ErrorIs(t, limiter.Check(ctx, "1.2.3.4"), errs.ErrTooManyAttempts)

	// Past the window the counter resets, no sweep needed.
	now = now.Add(2 * time.Minute)
	assert.NoError(t, limiter.Check(ctx, "1.2.3.4"))

	// The reset is real: failures start counting from zero again.
	limiter.RecordFailure(ctx, "1.2.3.4")
	assert.NoError(t, limiter.Check(ctx, "1.2.3.4"))
}

func TestLoginLimiter_SuccessResetsCounter(t *testing.T) {
	ctx := context.Background()
	limiter := NewLoginLimiter(NewMemoryAttemptStore(), 5, 15*time.Minute)

	for i := 0; i < 4; i++ {
		limiter.RecordFailure(ctx, "1.2.3.4")
	}
	limiter.RecordSuccess(ctx, "1.2.3.4")

	for i := 0; i < 4; i++ {
		assert.NoError(t, limiter.Check(ctx, "1.2.3.4"))
		limiter.RecordFailure(ctx, "1.2.3.4")
	}
	assert.NoError(t, limiter.Check(ctx, "1.2.3.4"))
	limiter.RecordFailure(ctx, "1.2.3.4")
	assert.ErrorIs(t, limiter.Check(ctx, "1.2.3.4"), errs.ErrTooManyAttempts)
}

func TestLoginLimiter_Defaults(t *testing.T) {
	limiter := NewLoginLimiter(NewMemoryAttemptStore(), 0, 0)
	assert.Equal(t, DefaultMaxLoginAttempts, limiter.maxAttempts)
	assert.Equal(t, DefaultLockoutWindow, limiter.window)
}

func TestLoginLimiter_ConcurrentFailures(t *testing.T) {
	ctx := context.Background()
	limiter := NewLoginLimiter(NewMemoryAttemptStore(), 100, 15*time.Minute)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			for j := 0; j < 5; j++ {
				limiter.RecordFailure(ctx, "1.2.3.4")
			}
			done <- struct{}{}
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	// 50 failures recorded without lost updates.
	attempt, ok, err := limiter.store.Get(ctx, "1.2.3.4")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 50, attempt.Count)
}
