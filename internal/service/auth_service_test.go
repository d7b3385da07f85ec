package service

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"hrportal/internal/auth"
	errs "hrportal/internal/errors"
	"hrportal/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, userID uint, passwordHash string) error {
	args := m.Called(ctx, userID, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) AddRole(ctx context.Context, user *model.User, role *model.Role) error {
	args := m.Called(ctx, user, role)
	return args.Error(0)
}

func (m *MockUserRepository) RemoveRole(ctx context.Context, user *model.User, role *model.Role) error {
	args := m.Called(ctx, user, role)
	return args.Error(0)
}

// MockRoleRepository is a mock implementation of repository.RoleRepository.
type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role *model.Role) error {
	args := m.Called(ctx, role)
	return args.Error(0)
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id uint) (*model.Role, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) FindByName(ctx context.Context, name string) (*model.Role, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) List(ctx context.Context) ([]model.Role, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Role), args.Error(1)
}

func (m *MockRoleRepository) CreatePermission(ctx context.Context, perm *model.Permission) error {
	args := m.Called(ctx, perm)
	return args.Error(0)
}

func (m *MockRoleRepository) FindPermission(ctx context.Context, name string, roleID uint) (*model.Permission, error) {
	args := m.Called(ctx, name, roleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Permission), args.Error(1)
}

// MockEmployeeRepository is a mock implementation of repository.EmployeeRepository.
type MockEmployeeRepository struct {
	mock.Mock
}

func (m *MockEmployeeRepository) Create(ctx context.Context, employee *model.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) Update(ctx context.Context, employee *model.Employee) error {
	args := m.Called(ctx, employee)
	return args.Error(0)
}

func (m *MockEmployeeRepository) FindByID(ctx context.Context, id uint) (*model.Employee, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Employee), args.Error(1)
}

func (m *MockEmployeeRepository) List(ctx context.Context) ([]model.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Employee), args.Error(1)
}

// channelMailer records dispatched reset links for asynchronous assertions.
type channelMailer struct {
	links chan string
}

func newChannelMailer() *channelMailer {
	return &channelMailer{links: make(chan string, 1)}
}

func (m *channelMailer) SendPasswordReset(_, resetLink string) error {
	m.links <- resetLink
	return nil
}

type authFixture struct {
	userRepo     *MockUserRepository
	roleRepo     *MockRoleRepository
	employeeRepo *MockEmployeeRepository
	engine       *auth.TokenEngine
	mailer       *channelMailer
	service      AuthService
}

func newAuthFixture(t *testing.T, opts ...func(*fixtureConfig)) *authFixture {
	t.Helper()
	cfg := &fixtureConfig{
		maxAttempts: 5,
		window:      15 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	userRepo := &MockUserRepository{}
	roleRepo := &MockRoleRepository{}
	employeeRepo := &MockEmployeeRepository{}
	engine := auth.NewTokenEngine("test-secret", time.Minute, time.Hour)
	limiter := auth.NewLoginLimiter(auth.NewMemoryAttemptStore(), cfg.maxAttempts, cfg.window)
	mailer := newChannelMailer()

	svc := NewAuthService(
		userRepo, roleRepo, employeeRepo,
		engine, limiter,
		auth.NewMemoryResetTokenStore(),
		auth.NewMemoryRefreshTokenStore(),
		mailer, 30*time.Minute, "http://localhost:5173",
	)
	return &authFixture{
		userRepo:     userRepo,
		roleRepo:     roleRepo,
		employeeRepo: employeeRepo,
		engine:       engine,
		mailer:       mailer,
		service:      svc,
	}
}

type fixtureConfig struct {
	maxAttempts int
	window      time.Duration
}

func withWindow(maxAttempts int, window time.Duration) func(*fixtureConfig) {
	return func(cfg *fixtureConfig) {
		cfg.maxAttempts = maxAttempts
		cfg.window = window
	}
}

func activeUser(t *testing.T, password string, roles ...string) *model.User {
	t.Helper()
	hash, err := auth.HashPassword(password)
	assert.NoError(t, err)
	user := &model.User{
		ID:           1,
		Email:        "a@x.com",
		PasswordHash: hash,
		FullName:     "Test User",
		IsActive:     true,
	}
	for _, name := range roles {
		user.Roles = append(user.Roles, model.Role{Name: name})
	}
	return user
}

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("successful login mints a valid pair", func(t *testing.T) {
		f := newAuthFixture(t)
		user := activeUser(t, "Secret1!", "employee")
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)

		pair, got, err := f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)
		assert.Equal(t, "bearer", pair.TokenType)

		claims, err := f.engine.Verify(pair.AccessToken, auth.TokenKindAccess)
		assert.NoError(t, err)
		assert.Equal(t, []string{"employee"}, claims.Roles)
		assert.Equal(t, "a@x.com", claims.Subject)

		refreshClaims, err := f.engine.Verify(pair.RefreshToken, auth.TokenKindRefresh)
		assert.NoError(t, err)
		assert.Equal(t, auth.TokenKindRefresh, refreshClaims.Kind)
	})

	t.Run("unknown email and wrong password are indistinguishable", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.On("FindByEmail", mock.Anything, "missing@x.com").Return(nil, gorm.ErrRecordNotFound)
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(activeUser(t, "Secret1!"), nil)

		_, _, errMissing := f.service.Login(ctx, "missing@x.com", "whatever", "1.2.3.4")
		_, _, errWrongPass := f.service.Login(ctx, "a@x.com", "not-the-password", "1.2.3.4")

		assert.ErrorIs(t, errMissing, errs.ErrInvalidCredentials)
		assert.ErrorIs(t, errWrongPass, errs.ErrInvalidCredentials)
		assert.Equal(t, errMissing.Error(), errWrongPass.Error())
	})

	t.Run("inactive user is rejected after password check", func(t *testing.T) {
		f := newAuthFixture(t)
		user := activeUser(t, "Secret1!")
		user.IsActive = false
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)

		_, _, err := f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
		assert.ErrorIs(t, err, errs.ErrAccountInactive)
	})
}

func TestAuthService_LoginLockout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	user := activeUser(t, "Secret1!", "employee")
	f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)

	for i := 0; i < 5; i++ {
		_, _, err := f.service.Login(ctx, "a@x.com", "wrong-password", "1.2.3.4")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	}

	// Correct credentials no longer help once locked.
	_, _, err := f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
	assert.ErrorIs(t, err, errs.ErrTooManyAttempts)

	// A different client is unaffected.
	_, _, err = f.service.Login(ctx, "a@x.com", "Secret1!", "9.9.9.9")
	assert.NoError(t, err)
}

func TestAuthService_LoginLockoutExpires(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t, withWindow(5, 50*time.Millisecond))
	user := activeUser(t, "Secret1!", "employee")
	f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)

	for i := 0; i < 5; i++ {
		_, _, err := f.service.Login(ctx, "a@x.com", "wrong-password", "1.2.3.4")
		assert.ErrorIs(t, err, errs.ErrInvalidCredentials)
	}
	_, _, err := f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
	assert.ErrorIs(t, err, errs.ErrTooManyAttempts)

	time.Sleep(60 * time.Millisecond)

	_, _, err = f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
	assert.NoError(t, err)
}

func TestAuthService_Refresh(t *testing.T) {
	ctx := context.Background()

	t.Run("rotation revokes the previous refresh token", func(t *testing.T) {
		f := newAuthFixture(t)
		user := activeUser(t, "Secret1!", "employee")
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)

		pair, _, err := f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
		assert.NoError(t, err)

		next, err := f.service.Refresh(ctx, pair.RefreshToken)
		assert.NoError(t, err)
		assert.NotEmpty(t, next.AccessToken)
		assert.NotEqual(t, pair.RefreshToken, next.RefreshToken)

		// The presented refresh token died with the rotation.
		_, err = f.service.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, errs.ErrInvalidToken)

		// The replacement still works.
		_, err = f.service.Refresh(ctx, next.RefreshToken)
		assert.NoError(t, err)
	})

	t.Run("concurrent refreshes of one token rotate exactly once", func(t *testing.T) {
		f := newAuthFixture(t)
		user := activeUser(t, "Secret1!", "employee")
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)

		pair, _, err := f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
		assert.NoError(t, err)

		const workers = 8
		var wg sync.WaitGroup
		var successes int32
		start := make(chan struct{})
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				if _, err := f.service.Refresh(ctx, pair.RefreshToken); err == nil {
					atomic.AddInt32(&successes, 1)
				}
			}()
		}
		close(start)
		wg.Wait()

		assert.Equal(t, int32(1), successes)
	})

	t.Run("roles are re-resolved, not taken from the stale claim", func(t *testing.T) {
		f := newAuthFixture(t)
		user := activeUser(t, "Secret1!", "employee")
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil).Once()

		pair, _, err := f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
		assert.NoError(t, err)

		// The user gained a role between login and refresh.
		promoted := activeUser(t, "Secret1!", "employee", "manager")
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(promoted, nil)

		next, err := f.service.Refresh(ctx, pair.RefreshToken)
		assert.NoError(t, err)

		claims, err := f.engine.Verify(next.AccessToken, auth.TokenKindAccess)
		assert.NoError(t, err)
		assert.Equal(t, []string{"employee", "manager"}, claims.Roles)
	})

	t.Run("access token is refused as refresh input", func(t *testing.T) {
		f := newAuthFixture(t)
		user := activeUser(t, "Secret1!", "employee")
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)

		pair, _, err := f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
		assert.NoError(t, err)

		_, err = f.service.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})

	t.Run("deactivated user cannot refresh", func(t *testing.T) {
		f := newAuthFixture(t)
		user := activeUser(t, "Secret1!", "employee")
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil).Once()

		pair, _, err := f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
		assert.NoError(t, err)

		deactivated := activeUser(t, "Secret1!", "employee")
		deactivated.IsActive = false
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(deactivated, nil)

		_, err = f.service.Refresh(ctx, pair.RefreshToken)
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})

	t.Run("garbage token is refused", func(t *testing.T) {
		f := newAuthFixture(t)
		_, err := f.service.Refresh(ctx, "not-a-token")
		assert.ErrorIs(t, err, errs.ErrInvalidToken)
	})
}

func TestAuthService_Logout(t *testing.T) {
	ctx := context.Background()
	f := newAuthFixture(t)
	user := activeUser(t, "Secret1!", "employee")
	f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)

	pair, _, err := f.service.Login(ctx, "a@x.com", "Secret1!", "1.2.3.4")
	assert.NoError(t, err)

	assert.NoError(t, f.service.Logout(ctx, pair.RefreshToken))

	_, err = f.service.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, errs.ErrInvalidToken)
}

func TestAuthService_PasswordReset(t *testing.T) {
	ctx := context.Background()

	t.Run("full reset round trip, token single use", func(t *testing.T) {
		f := newAuthFixture(t)
		user := activeUser(t, "OldSecret1!")
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(user, nil)
		f.userRepo.On("UpdatePassword", mock.Anything, user.ID, mock.AnythingOfType("string")).Return(nil).Once()

		assert.NoError(t, f.service.ForgotPassword(ctx, "a@x.com"))

		var resetLink string
		select {
		case resetLink = <-f.mailer.links:
		case <-time.After(time.Second):
			t.Fatal("reset email was not dispatched")
		}
		token := resetLink[strings.Index(resetLink, "token=")+len("token="):]
		assert.NotEmpty(t, token)

		assert.NoError(t, f.service.ResetPassword(ctx, token, "NewSecret1!"))
		f.userRepo.AssertExpectations(t)

		// Replaying the identical token fails.
		err := f.service.ResetPassword(ctx, token, "AnotherSecret1!")
		assert.ErrorIs(t, err, errs.ErrResetTokenInvalid)
	})

	t.Run("unknown email reports success and sends nothing", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.On("FindByEmail", mock.Anything, "missing@x.com").Return(nil, gorm.ErrRecordNotFound)

		assert.NoError(t, f.service.ForgotPassword(ctx, "missing@x.com"))

		select {
		case link := <-f.mailer.links:
			t.Fatalf("unexpected reset email: %s", link)
		case <-time.After(50 * time.Millisecond):
		}
	})

	t.Run("unknown token is rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		err := f.service.ResetPassword(ctx, "never-issued", "NewSecret1!")
		assert.ErrorIs(t, err, errs.ErrResetTokenInvalid)
	})
}

func TestAuthService_Register(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with resolved roles", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.On("FindByEmail", mock.Anything, "new@x.com").Return(nil, gorm.ErrRecordNotFound)
		f.roleRepo.On("FindByName", mock.Anything, "employee").Return(&model.Role{ID: 4, Name: "employee"}, nil)
		f.roleRepo.On("FindByName", mock.Anything, "no-such-role").Return(nil, gorm.ErrRecordNotFound)
		f.userRepo.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

		user, err := f.service.Register(ctx, RegisterInput{
			Email:    "new@x.com",
			Password: "Secret1!",
			FullName: "New User",
			Roles:    []string{"employee", "no-such-role"},
		})
		assert.NoError(t, err)
		assert.Equal(t, "new@x.com", user.Email)
		assert.True(t, user.IsActive)
		assert.NotEmpty(t, user.PasswordHash)
		assert.NotEqual(t, "Secret1!", user.PasswordHash)
		// Unknown role names are skipped.
		assert.Equal(t, []string{"employee"}, user.RoleNames())
	})

	t.Run("duplicate email is rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		f.userRepo.On("FindByEmail", mock.Anything, "a@x.com").Return(activeUser(t, "Secret1!"), nil)

		_, err := f.service.Register(ctx, RegisterInput{Email: "a@x.com", Password: "Secret1!"})
		assert.ErrorIs(t, err, errs.ErrUserAlreadyExists)
	})

	t.Run("missing linked employee is rejected", func(t *testing.T) {
		f := newAuthFixture(t)
		employeeID := uint(42)
		f.userRepo.On("FindByEmail", mock.Anything, "new@x.com").Return(nil, gorm.ErrRecordNotFound)
		f.employeeRepo.On("FindByID", mock.Anything, employeeID).Return(nil, gorm.ErrRecordNotFound)

		_, err := f.service.Register(ctx, RegisterInput{
			Email:      "new@x.com",
			Password:   "Secret1!",
			EmployeeID: &employeeID,
		})
		assert.ErrorIs(t, err, errs.ErrEmployeeNotFound)
	})
}
