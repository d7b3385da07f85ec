package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"hrportal/internal/model"
	"hrportal/internal/service"
)

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uint, input service.UserUpdateInput) (*model.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) AssignRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	args := m.Called(ctx, userID, roleName)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) RemoveRole(ctx context.Context, userID uint, roleName string) (bool, error) {
	args := m.Called(ctx, userID, roleName)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserService) HasPermission(ctx context.Context, user *model.User, permission string) bool {
	args := m.Called(ctx, user, permission)
	return args.Bool(0)
}

type echoValidator struct {
	validator *validator.Validate
}

func (v *echoValidator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}

func jsonContext(t *testing.T, method, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &echoValidator{validator: validator.New()}
	req := httptest.NewRequest(method, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestUserHandler_UpdateMe(t *testing.T) {
	current := &model.User{ID: 7, Email: "a@x.com", FullName: "Old Name", IsActive: true}

	t.Run("updates the caller's own record", func(t *testing.T) {
		svc := &MockUserService{}
		name := "New Name"
		updated := &model.User{ID: 7, Email: "a@x.com", FullName: name, IsActive: true}
		svc.On("Update", mock.Anything, uint(7), service.UserUpdateInput{FullName: &name}).Return(updated, nil)

		c, rec := jsonContext(t, http.MethodPut, `{"full_name":"New Name"}`)
		c.Set("currentUser", current)

		h := NewUserHandler(svc)
		assert.NoError(t, h.UpdateMe(c))
		assert.Equal(t, http.StatusOK, rec.Code)

		var resp UserResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, uint(7), resp.ID)
		assert.Equal(t, "New Name", resp.FullName)

		// The target id comes from the session, never from the payload.
		svc.AssertCalled(t, "Update", mock.Anything, uint(7), service.UserUpdateInput{FullName: &name})
	})

	t.Run("no authenticated user is a 401", func(t *testing.T) {
		svc := &MockUserService{}
		c, _ := jsonContext(t, http.MethodPut, `{"full_name":"New Name"}`)

		h := NewUserHandler(svc)
		err := h.UpdateMe(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("malformed email is a 400", func(t *testing.T) {
		svc := &MockUserService{}
		c, _ := jsonContext(t, http.MethodPut, `{"email":"not-an-email"}`)
		c.Set("currentUser", current)

		h := NewUserHandler(svc)
		err := h.UpdateMe(c)
		he, ok := err.(*echo.HTTPError)
		assert.True(t, ok)
		assert.Equal(t, http.StatusBadRequest, he.Code)
		svc.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	})
}
