package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"hrportal/internal/service"
)

// RoleHandler handles role and permission catalog endpoints.
type RoleHandler struct {
	roleService service.RoleService
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// RoleCreateRequest represents a new role.
type RoleCreateRequest struct {
	Name        string `json:"name" validate:"required,max=50"`
	Description string `json:"description" validate:"max=255"`
}

// PermissionCreateRequest represents a new role-scoped permission.
type PermissionCreateRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"max=255"`
}

// CreateRole godoc
// @Summary Create a role (admin only)
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body RoleCreateRequest true "Role"
// @Success 201 {object} model.Role
// @Failure 400 {object} errors.ErrorResponse
// @Router /auth/roles [post]
func (h *RoleHandler) CreateRole(c echo.Context) error {
	var req RoleCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	role, err := h.roleService.CreateRole(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, role)
}

// ListRoles godoc
// @Summary List roles with their permissions
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Role
// @Router /auth/roles [get]
func (h *RoleHandler) ListRoles(c echo.Context) error {
	roles, err := h.roleService.ListRoles(c.Request().Context())
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, roles)
}

// GetRole godoc
// @Summary Fetch one role with its permissions
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Success 200 {object} model.Role
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/roles/{id} [get]
func (h *RoleHandler) GetRole(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role id")
	}
	role, err := h.roleService.GetRole(c.Request().Context(), uint(id))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, role)
}

// CreatePermission godoc
// @Summary Create a permission under a role (admin only)
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Role ID"
// @Param request body PermissionCreateRequest true "Permission"
// @Success 201 {object} model.Permission
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /auth/roles/{id}/permissions [post]
func (h *RoleHandler) CreatePermission(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid role id")
	}

	var req PermissionCreateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	perm, err := h.roleService.CreatePermission(c.Request().Context(), uint(id), req.Name, req.Description)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, perm)
}
