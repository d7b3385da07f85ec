package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"hrportal/internal/cache"
)

const (
	// DefaultResetTokenTTL bounds the life of a password reset token.
	DefaultResetTokenTTL = 30 * time.Minute

	resetTokenBytes     = 32
	resetTokenKeyPrefix = "password_reset:"
)

// NewResetToken generates an opaque URL-safe token with 32 bytes of entropy.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// ResetTokenStore holds outstanding password reset tokens. Tokens are single
// use: Consume removes the entry before reporting it, so a token can never be
// redeemed twice even under concurrent requests. Expired entries report as
// absent and are removed on detection.
type ResetTokenStore interface {
	Put(ctx context.Context, token, email string, expiresAt time.Time) error
	Consume(ctx context.Context, token string) (email string, ok bool)
}

type resetEntry struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// MemoryResetTokenStore keeps reset tokens in a process-wide map.
type MemoryResetTokenStore struct {
	mu     sync.Mutex
	tokens map[string]resetEntry

	now func() time.Time
}

// NewMemoryResetTokenStore creates an empty in-process store.
func NewMemoryResetTokenStore() *MemoryResetTokenStore {
	return &MemoryResetTokenStore{
		tokens: make(map[string]resetEntry),
		now:    time.Now,
	}
}

func (s *MemoryResetTokenStore) Put(_ context.Context, token, email string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = resetEntry{Email: email, ExpiresAt: expiresAt}
	return nil
}

func (s *MemoryResetTokenStore) Consume(_ context.Context, token string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return "", false
	}
	delete(s.tokens, token)
	if s.now().After(entry.ExpiresAt) {
		return "", false
	}
	return entry.Email, true
}

// RedisResetTokenStore keeps reset tokens in Redis with server-side expiry.
// Consume uses GETDEL so read and delete cannot be separated by a concurrent
// request.
type RedisResetTokenStore struct {
	cache *cache.Client
}

// NewRedisResetTokenStore creates a Redis-backed store.
func NewRedisResetTokenStore(cache *cache.Client) *RedisResetTokenStore {
	return &RedisResetTokenStore{cache: cache}
}

func (s *RedisResetTokenStore) Put(ctx context.Context, token, email string, expiresAt time.Time) error {
	payload, err := json.Marshal(resetEntry{Email: email, ExpiresAt: expiresAt})
	if err != nil {
		return fmt.Errorf("marshal reset entry: %w", err)
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	return s.cache.Set(ctx, resetTokenKeyPrefix+token, payload, ttl)
}

func (s *RedisResetTokenStore) Consume(ctx context.Context, token string) (string, bool) {
	data, err := s.cache.GetDel(ctx, resetTokenKeyPrefix+token)
	if err != nil || data == nil {
		return "", false
	}
	var entry resetEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if time.Now().After(entry.ExpiresAt) {
		return "", false
	}
	return entry.Email, true
}
