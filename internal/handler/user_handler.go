package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"hrportal/internal/middleware"
	"hrportal/internal/service"
)

// UserHandler handles user administration endpoints.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new user handler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UserUpdateRequest carries optional profile changes on the admin surface.
type UserUpdateRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	IsActive *bool   `json:"is_active,omitempty"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// SelfUpdateRequest carries the profile changes a user may apply to their own
// account. Activation state is deliberately absent.
type SelfUpdateRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`
	Password *string `json:"password,omitempty" validate:"omitempty,min=8"`
}

// ListUsers godoc
// @Summary List users (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} UserResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /auth/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	users, err := h.userService.List(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return c.JSON(http.StatusOK, out)
}

// GetUser godoc
// @Summary Fetch one user (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	user, err := h.userService.Get(c.Request().Context(), uint(id))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateUser godoc
// @Summary Update a user (admin only)
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body UserUpdateRequest true "Changes"
// @Success 200 {object} UserResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}

	var req UserUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Update(c.Request().Context(), uint(id), service.UserUpdateInput{
		FullName: req.FullName,
		Email:    req.Email,
		IsActive: req.IsActive,
		Password: req.Password,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// UpdateMe godoc
// @Summary Update the current user's own profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body SelfUpdateRequest true "Changes"
// @Success 200 {object} UserResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/me [put]
func (h *UserHandler) UpdateMe(c echo.Context) error {
	current, ok := middleware.UserFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}

	var req SelfUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.userService.Update(c.Request().Context(), current.ID, service.UserUpdateInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// AssignRole godoc
// @Summary Assign a role to a user (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param name path string true "Role name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/users/{id}/roles/{name} [post]
func (h *UserHandler) AssignRole(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	roleName := c.Param("name")

	alreadyHeld, err := h.userService.AssignRole(c.Request().Context(), uint(id), roleName)
	if err != nil {
		return domainError(err)
	}
	if alreadyHeld {
		return c.JSON(http.StatusOK, map[string]string{
			"message": fmt.Sprintf("user already has role '%s'", roleName),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("role '%s' assigned to user successfully", roleName),
	})
}

// RemoveRole godoc
// @Summary Remove a role from a user (admin only)
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param name path string true "Role name"
// @Success 200 {object} map[string]string
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/users/{id}/roles/{name} [delete]
func (h *UserHandler) RemoveRole(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid user id")
	}
	roleName := c.Param("name")

	wasHeld, err := h.userService.RemoveRole(c.Request().Context(), uint(id), roleName)
	if err != nil {
		return domainError(err)
	}
	if !wasHeld {
		return c.JSON(http.StatusOK, map[string]string{
			"message": fmt.Sprintf("user does not have role '%s'", roleName),
		})
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message": fmt.Sprintf("role '%s' removed from user successfully", roleName),
	})
}

// CheckPermission godoc
// @Summary Check whether the current user holds a permission
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param name path string true "Permission name"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} errors.ErrorResponse
// @Router /auth/check-permission/{name} [get]
func (h *UserHandler) CheckPermission(c echo.Context) error {
	user, ok := middleware.UserFromContext(c)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "could not validate credentials")
	}
	name := c.Param("name")

	return c.JSON(http.StatusOK, map[string]interface{}{
		"has_permission": h.userService.HasPermission(c.Request().Context(), user, name),
		"permission":     name,
		"user_id":        user.ID,
		"user_email":     user.Email,
	})
}
