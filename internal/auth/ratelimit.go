package auth

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"hrportal/internal/cache"
	errs "hrportal/internal/errors"
)

const (
	// DefaultMaxLoginAttempts is the failed-login budget per client.
	DefaultMaxLoginAttempts = 5
	// DefaultLockoutWindow is how long the failed-login count is retained.
	DefaultLockoutWindow = 15 * time.Minute

	attemptKeyPrefix = "login_attempts:"
)

// Attempt tracks failed logins for one client identifier.
type Attempt struct {
	Count       int       `json:"count"`
	LastAttempt time.Time `json:"last_attempt"`
}

// AttemptStore persists login attempt counters. The in-process implementation
// is the default; the Redis-backed one makes the limiter shared across
// replicas without a rewrite.
type AttemptStore interface {
	Get(ctx context.Context, clientID string) (Attempt, bool, error)
	Put(ctx context.Context, clientID string, attempt Attempt) error
	Delete(ctx context.Context, clientID string) error
}

// MemoryAttemptStore keeps counters in a process-wide map.
type MemoryAttemptStore struct {
	mu       sync.Mutex
	attempts map[string]Attempt
}

// NewMemoryAttemptStore creates an empty in-process store.
func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{attempts: make(map[string]Attempt)}
}

func (s *MemoryAttemptStore) Get(_ context.Context, clientID string) (Attempt, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attempt, ok := s.attempts[clientID]
	return attempt, ok, nil
}

func (s *MemoryAttemptStore) Put(_ context.Context, clientID string, attempt Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[clientID] = attempt
	return nil
}

func (s *MemoryAttemptStore) Delete(_ context.Context, clientID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, clientID)
	return nil
}

// RedisAttemptStore keeps counters in Redis, keyed per client, expiring with
// the lockout window.
type RedisAttemptStore struct {
	cache *cache.Client
	ttl   time.Duration
}

// NewRedisAttemptStore creates a Redis-backed store. Entries expire after ttl
// so stale counters clean themselves up.
func NewRedisAttemptStore(cache *cache.Client, ttl time.Duration) *RedisAttemptStore {
	return &RedisAttemptStore{cache: cache, ttl: ttl}
}

func (s *RedisAttemptStore) Get(ctx context.Context, clientID string) (Attempt, bool, error) {
	data, err := s.cache.Get(ctx, attemptKeyPrefix+clientID)
	if err != nil || data == nil {
		return Attempt{}, false, err
	}
	var attempt Attempt
	if err := json.Unmarshal(data, &attempt); err != nil {
		return Attempt{}, false, nil
	}
	return attempt, true, nil
}

func (s *RedisAttemptStore) Put(ctx context.Context, clientID string, attempt Attempt) error {
	payload, err := json.Marshal(attempt)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, attemptKeyPrefix+clientID, payload, s.ttl)
}

func (s *RedisAttemptStore) Delete(ctx context.Context, clientID string) error {
	return s.cache.Delete(ctx, attemptKeyPrefix+clientID)
}

// LoginLimiter tracks failed login attempts per client identifier with a
// sliding lockout window. Expiry is lazy: counters reset on the next check
// after the window elapses, there is no background sweep.
type LoginLimiter struct {
	store       AttemptStore
	maxAttempts int
	window      time.Duration

	// mu linearizes read-modify-write sequences so two parallel failures
	// cannot both read count=4 and write count=5.
	mu sync.Mutex

	now func() time.Time
}

// NewLoginLimiter creates a limiter over the given store. Zero values fall
// back to the defaults.
func NewLoginLimiter(store AttemptStore, maxAttempts int, window time.Duration) *LoginLimiter {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxLoginAttempts
	}
	if window <= 0 {
		window = DefaultLockoutWindow
	}
	return &LoginLimiter{
		store:       store,
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
	}
}

// Check returns ErrTooManyAttempts when the client has exhausted its budget
// within the lockout window. A window that has elapsed resets the counter.
func (l *LoginLimiter) Check(ctx context.Context, clientID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	attempt, ok, err := l.store.Get(ctx, clientID)
	if err != nil || !ok {
		return nil
	}
	if l.now().Sub(attempt.LastAttempt) > l.window {
		_ = l.store.Put(ctx, clientID, Attempt{Count: 0, LastAttempt: l.now()})
		return nil
	}
	if attempt.Count >= l.maxAttempts {
		return errs.ErrTooManyAttempts
	}
	return nil
}

// RecordFailure increments the client's failed-login count, creating the
// entry if absent.
func (l *LoginLimiter) RecordFailure(ctx context.Context, clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	attempt, ok, err := l.store.Get(ctx, clientID)
	count := 1
	if err == nil && ok {
		count = attempt.Count + 1
	}
	_ = l.store.Put(ctx, clientID, Attempt{Count: count, LastAttempt: l.now()})
}

// RecordSuccess resets the client's failed-login count.
func (l *LoginLimiter) RecordSuccess(ctx context.Context, clientID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_ = l.store.Put(ctx, clientID, Attempt{Count: 0, LastAttempt: l.now()})
}
