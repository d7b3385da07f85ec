package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	errs "hrportal/internal/errors"
)

const (
	// TokenKindAccess marks short-lived tokens carrying a role snapshot.
	TokenKindAccess = "access"
	// TokenKindRefresh marks long-lived tokens used only to obtain new pairs.
	TokenKindRefresh = "refresh"

	// DefaultAccessTokenTTL is used when no TTL is configured.
	DefaultAccessTokenTTL = 30 * time.Minute
	// DefaultRefreshTokenTTL is used when no TTL is configured.
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Claims represents the JWT payload for both token kinds. Access tokens carry
// the role names held at mint time; that snapshot may lag behind the user's
// current roles until the token expires or is refreshed. Refresh tokens carry
// a jti instead, and no roles: roles are re-resolved at refresh time.
type Claims struct {
	Kind     string   `json:"type"`
	Roles    []string `json:"roles,omitempty"`
	FullName string   `json:"full_name,omitempty"`
	jwt.RegisteredClaims
}

// TokenEngine mints and validates HS256-signed access and refresh tokens.
type TokenEngine struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenEngine creates a token engine. Zero TTLs fall back to the defaults.
func NewTokenEngine(secret string, accessTTL, refreshTTL time.Duration) *TokenEngine {
	if accessTTL == 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	if refreshTTL == 0 {
		refreshTTL = DefaultRefreshTokenTTL
	}
	return &TokenEngine{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// MintAccess generates an access token for the subject carrying the given
// role snapshot and display name.
func (e *TokenEngine) MintAccess(subject string, roles []string, fullName string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Kind:     TokenKindAccess,
		Roles:    roles,
		FullName: fullName,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(e.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(e.secret)
}

// MintRefresh generates a refresh token for the subject. The token id (jti)
// is returned separately for the rotation store.
func (e *TokenEngine) MintRefresh(subject string) (token string, tokenID string, err error) {
	now := time.Now()
	tokenID = uuid.New().String()
	claims := &Claims{
		Kind: TokenKindRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(e.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	tokenObj := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	token, err = tokenObj.SignedString(e.secret)
	return token, tokenID, err
}

// AccessTTL returns the configured access token lifetime.
func (e *TokenEngine) AccessTTL() time.Duration {
	return e.accessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (e *TokenEngine) RefreshTTL() time.Duration {
	return e.refreshTTL
}

// Decode parses and signature-checks a token, returning its claims.
func (e *TokenEngine) Decode(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errs.ErrInvalidToken
		}
		return e.secret, nil
	})
	if err != nil {
		return nil, errs.ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errs.ErrInvalidToken
	}
	return claims, nil
}

// Verify decodes a token and checks its kind. Malformed tokens, bad
// signatures, expired timestamps and kind mismatches all collapse into
// ErrInvalidToken so callers cannot tell them apart.
func (e *TokenEngine) Verify(tokenString, expectedKind string) (*Claims, error) {
	claims, err := e.Decode(tokenString)
	if err != nil {
		return nil, err
	}
	if expectedKind != "" && claims.Kind != expectedKind {
		return nil, errs.ErrInvalidToken
	}
	return claims, nil
}
