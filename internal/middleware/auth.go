package middleware

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"hrportal/internal/auth"
	errs "hrportal/internal/errors"
	"hrportal/internal/model"
	"hrportal/internal/repository"
)

const currentUserKey = "currentUser"

// UserFromContext returns the authenticated user stored by Authenticate.
func UserFromContext(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(currentUserKey).(*model.User)
	return user, ok
}

// Authenticate resolves the bearer access token to a user. A missing header,
// an invalid token and an unknown subject all produce the same 401, so this
// path cannot be used to enumerate users.
func Authenticate(engine *auth.TokenEngine, users repository.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c)
			if token == "" {
				return unauthorized()
			}

			claims, err := engine.Verify(token, auth.TokenKindAccess)
			if err != nil {
				return unauthorized()
			}

			user, err := users.FindByEmail(c.Request().Context(), claims.Subject)
			if err != nil {
				return unauthorized()
			}

			c.Set(currentUserKey, user)
			return next(c)
		}
	}
}

// RequireActive rejects authenticated but deactivated users.
func RequireActive() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFromContext(c)
			if !ok {
				return unauthorized()
			}
			if !user.IsActive {
				return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
					Error: errs.ErrAccountInactive.Error(),
					Code:  "ACCOUNT_INACTIVE",
				})
			}
			return next(c)
		}
	}
}

// RequireRoles admits users holding any one of the allowed roles. The
// rejection names the acceptable roles; role names are not secrets.
func RequireRoles(allowed ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFromContext(c)
			if !ok {
				return unauthorized()
			}
			if !auth.HasAnyRole(user, allowed) {
				return echo.NewHTTPError(http.StatusForbidden, errs.ErrorResponse{
					Error: "not enough permissions. Required roles: " + strings.Join(allowed, ", "),
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// RequirePermissions admits users whose roles grant any one of the required
// permissions.
func RequirePermissions(required ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFromContext(c)
			if !ok {
				return unauthorized()
			}
			if !auth.HasAnyPermission(user, required) {
				return echo.NewHTTPError(http.StatusForbidden, errs.ErrorResponse{
					Error: "not enough permissions. Required permissions: " + strings.Join(required, ", "),
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

// OwnershipConfig configures a resource-ownership gate.
type OwnershipConfig struct {
	// IDParam is the route parameter carrying the resource id. Defaults to "id".
	IDParam string
	// Lookup resolves a resource id to its owning employee id.
	Lookup func(ctx context.Context, id uint) (ownerEmployeeID uint, err error)
	// BypassRoles allow access regardless of ownership.
	BypassRoles []string
}

// RequireOwnership admits the owner of the target resource or a holder of a
// bypass role. A missing resource is a 404; an ownership mismatch a 403.
func RequireOwnership(cfg OwnershipConfig) echo.MiddlewareFunc {
	idParam := cfg.IDParam
	if idParam == "" {
		idParam = "id"
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, ok := UserFromContext(c)
			if !ok {
				return unauthorized()
			}

			if len(cfg.BypassRoles) > 0 && auth.HasAnyRole(user, cfg.BypassRoles) {
				return next(c)
			}

			id, err := strconv.ParseUint(c.Param(idParam), 10, 64)
			if err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, errs.ErrorResponse{
					Error: "invalid resource id",
					Code:  "INVALID_ID",
				})
			}

			ownerID, err := cfg.Lookup(c.Request().Context(), uint(id))
			if err != nil {
				return echo.NewHTTPError(http.StatusNotFound, errs.ErrorResponse{
					Error: "resource not found",
					Code:  "NOT_FOUND",
				})
			}

			if user.EmployeeID == nil || *user.EmployeeID != ownerID {
				return echo.NewHTTPError(http.StatusForbidden, errs.ErrorResponse{
					Error: "you do not have access to this resource",
					Code:  "FORBIDDEN",
				})
			}
			return next(c)
		}
	}
}

func bearerToken(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return header[len(prefix):]
	}
	return ""
}

func unauthorized() *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, errs.ErrorResponse{
		Error: "could not validate credentials",
		Code:  "INVALID_TOKEN",
	})
}
