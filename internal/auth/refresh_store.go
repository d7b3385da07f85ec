package auth

import (
	"context"
	"sync"
	"time"

	"hrportal/internal/cache"
)

const refreshTokenKeyPrefix = "refresh_token:"

// RefreshTokenStore tracks the ids of issued refresh tokens so that rotation
// revokes the previous token. A refresh token whose jti is no longer present
// is refused even if its signature and expiry still check out. Consume checks
// and removes in one step, so two refreshes presenting the same token cannot
// both pass the jti check.
type RefreshTokenStore interface {
	Store(ctx context.Context, tokenID, email string, ttl time.Duration) error
	Consume(ctx context.Context, tokenID, email string) bool
	Delete(ctx context.Context, tokenID string) error
}

// MemoryRefreshTokenStore keeps issued token ids in a process-wide map.
type MemoryRefreshTokenStore struct {
	mu     sync.Mutex
	tokens map[string]refreshRecord

	now func() time.Time
}

type refreshRecord struct {
	email     string
	expiresAt time.Time
}

// NewMemoryRefreshTokenStore creates an empty in-process store.
func NewMemoryRefreshTokenStore() *MemoryRefreshTokenStore {
	return &MemoryRefreshTokenStore{
		tokens: make(map[string]refreshRecord),
		now:    time.Now,
	}
}

func (s *MemoryRefreshTokenStore) Store(_ context.Context, tokenID, email string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[tokenID] = refreshRecord{email: email, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryRefreshTokenStore) Consume(_ context.Context, tokenID, email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.tokens[tokenID]
	if !ok {
		return false
	}
	delete(s.tokens, tokenID)
	if s.now().After(record.expiresAt) {
		return false
	}
	return record.email == email
}

func (s *MemoryRefreshTokenStore) Delete(_ context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenID)
	return nil
}

// RedisRefreshTokenStore keeps issued token ids in Redis with the refresh
// TTL as expiry. The cache wrapper fails safe, so with Redis unavailable
// Consume reports false and refreshes are refused rather than left
// unrevocable.
type RedisRefreshTokenStore struct {
	cache *cache.Client
}

// NewRedisRefreshTokenStore creates a Redis-backed store.
func NewRedisRefreshTokenStore(cache *cache.Client) *RedisRefreshTokenStore {
	return &RedisRefreshTokenStore{cache: cache}
}

func (s *RedisRefreshTokenStore) Store(ctx context.Context, tokenID, email string, ttl time.Duration) error {
	return s.cache.Set(ctx, refreshTokenKeyPrefix+tokenID, []byte(email), ttl)
}

// Consume uses GETDEL so the check and the removal cannot be separated by a
// concurrent refresh of the same token.
func (s *RedisRefreshTokenStore) Consume(ctx context.Context, tokenID, email string) bool {
	data, err := s.cache.GetDel(ctx, refreshTokenKeyPrefix+tokenID)
	if err != nil || data == nil {
		return false
	}
	return string(data) == email
}

func (s *RedisRefreshTokenStore) Delete(ctx context.Context, tokenID string) error {
	return s.cache.Delete(ctx, refreshTokenKeyPrefix+tokenID)
}
