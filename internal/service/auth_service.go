package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"hrportal/internal/auth"
	errs "hrportal/internal/errors"
	"hrportal/internal/mail"
	"hrportal/internal/model"
	"hrportal/internal/repository"
)

// TokenPair is the result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// RegisterInput describes a new user account.
type RegisterInput struct {
	Email      string
	Password   string
	FullName   string
	EmployeeID *uint
	Roles      []string
}

// AuthService handles authentication operations.
type AuthService interface {
	Login(ctx context.Context, email, password, clientID string) (*TokenPair, *model.User, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenPair, error)
	Logout(ctx context.Context, refreshToken string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Register(ctx context.Context, input RegisterInput) (*model.User, error)
}

type authService struct {
	userRepo     repository.UserRepository
	roleRepo     repository.RoleRepository
	employeeRepo repository.EmployeeRepository
	engine       *auth.TokenEngine
	limiter      *auth.LoginLimiter
	resetStore   auth.ResetTokenStore
	refreshStore auth.RefreshTokenStore
	mailer       mail.Mailer
	resetTTL     time.Duration
	resetBaseURL string
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	userRepo repository.UserRepository,
	roleRepo repository.RoleRepository,
	employeeRepo repository.EmployeeRepository,
	engine *auth.TokenEngine,
	limiter *auth.LoginLimiter,
	resetStore auth.ResetTokenStore,
	refreshStore auth.RefreshTokenStore,
	mailer mail.Mailer,
	resetTTL time.Duration,
	resetBaseURL string,
) AuthService {
	if resetTTL == 0 {
		resetTTL = auth.DefaultResetTokenTTL
	}
	return &authService{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		employeeRepo: employeeRepo,
		engine:       engine,
		limiter:      limiter,
		resetStore:   resetStore,
		refreshStore: refreshStore,
		mailer:       mailer,
		resetTTL:     resetTTL,
		resetBaseURL: resetBaseURL,
	}
}

// Login authenticates a user and mints an access/refresh token pair. The
// clientID (caller IP) feeds the login rate limiter. Unknown email and wrong
// password surface as the same error.
func (s *authService) Login(ctx context.Context, email, password, clientID string) (*TokenPair, *model.User, error) {
	if err := s.limiter.Check(ctx, clientID); err != nil {
		return nil, nil, err
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.limiter.RecordFailure(ctx, clientID)
		return nil, nil, errs.ErrInvalidCredentials
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		s.limiter.RecordFailure(ctx, clientID)
		return nil, nil, errs.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, errs.ErrAccountInactive
	}

	s.limiter.RecordSuccess(ctx, clientID)

	pair, err := s.mintPair(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh validates a refresh token and rotates it: the presented token's id
// is consumed atomically, so of two concurrent refreshes with the same token
// exactly one rotates. The fresh pair carries the user's current roles, not
// the stale claim snapshot.
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.engine.Verify(refreshToken, auth.TokenKindRefresh)
	if err != nil {
		return nil, errs.ErrInvalidToken
	}
	if claims.ID == "" || !s.refreshStore.Consume(ctx, claims.ID, claims.Subject) {
		return nil, errs.ErrInvalidToken
	}

	user, err := s.userRepo.FindByEmail(ctx, claims.Subject)
	if err != nil || !user.IsActive {
		return nil, errs.ErrInvalidToken
	}

	return s.mintPair(ctx, user)
}

// Logout revokes the presented refresh token.
func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.engine.Verify(refreshToken, auth.TokenKindRefresh)
	if err != nil || claims.ID == "" {
		return errs.ErrInvalidToken
	}
	return s.refreshStore.Delete(ctx, claims.ID)
}

// ForgotPassword issues a reset token and dispatches the reset link by email.
// It reports success whether or not the email is registered, and the dispatch
// runs on its own goroutine so a mail failure never fails the request.
func (s *authService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil
		}
		return fmt.Errorf("look up user: %w", err)
	}

	token, err := auth.NewResetToken()
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(s.resetTTL)
	if err := s.resetStore.Put(ctx, token, user.Email, expiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetLink := fmt.Sprintf("%s/reset-password?token=%s", s.resetBaseURL, token)
	go func(to, link string) {
		if err := s.mailer.SendPasswordReset(to, link); err != nil {
			log.Printf("password reset email to %s failed: %v", to, err)
		}
	}(user.Email, resetLink)

	return nil
}

// ResetPassword consumes a reset token and stores a new password hash. The
// token is deleted before the password update, so it can never be replayed.
func (s *authService) ResetPassword(ctx context.Context, token, newPassword string) error {
	email, ok := s.resetStore.Consume(ctx, token)
	if !ok {
		return errs.ErrResetTokenInvalid
	}

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return errs.ErrResetTokenInvalid
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// Register creates a new user with hashed password and the requested roles.
// Role assignment is admin-gated at the route level.
func (s *authService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, input.Email)
	if err == nil && existing != nil {
		return nil, errs.ErrUserAlreadyExists
	}
	if err != nil && err != gorm.ErrRecordNotFound {
		return nil, fmt.Errorf("check user existence: %w", err)
	}

	if input.EmployeeID != nil {
		if _, err := s.employeeRepo.FindByID(ctx, *input.EmployeeID); err != nil {
			return nil, errs.ErrEmployeeNotFound
		}
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:        input.Email,
		PasswordHash: hash,
		FullName:     input.FullName,
		EmployeeID:   input.EmployeeID,
		IsActive:     true,
	}
	for _, name := range input.Roles {
		role, err := s.roleRepo.FindByName(ctx, name)
		if err != nil {
			continue // unknown role names are skipped, not fatal
		}
		user.Roles = append(user.Roles, *role)
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (s *authService) mintPair(ctx context.Context, user *model.User) (*TokenPair, error) {
	roles := user.RoleNames()

	accessToken, err := s.engine.MintAccess(user.Email, roles, user.FullName)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, tokenID, err := s.engine.MintRefresh(user.Email)
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}
	if err := s.refreshStore.Store(ctx, tokenID, user.Email, s.engine.RefreshTTL()); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresAt:    time.Now().Add(s.engine.AccessTTL()),
	}, nil
}
