package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"hrportal/internal/auth"
	"hrportal/internal/config"
	"hrportal/internal/handler"
	"hrportal/internal/middleware"
	"hrportal/internal/repository"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	engine *auth.TokenEngine,
	userRepo repository.UserRepository,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	roleHandler *handler.RoleHandler,
	employeeHandler *handler.EmployeeHandler,
	employeeOwner middleware.OwnershipConfig,
) {
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)

	// Secured routes: echo-jwt rejects unsigned or tampered tokens, then
	// Authenticate resolves the subject to a user and RequireActive drops
	// deactivated accounts.
	secured := api.Group("",
		echojwt.WithConfig(echojwt.Config{
			SigningKey:  []byte(cfg.JWTSecret),
			TokenLookup: "header:" + echo.HeaderAuthorization,
		}),
		middleware.Authenticate(engine, userRepo),
		middleware.RequireActive(),
	)

	secured.GET("/auth/me", authHandler.Me)
	secured.PUT("/auth/me", userHandler.UpdateMe)
	secured.GET("/auth/check-permission/:name", userHandler.CheckPermission)

	// Administration (superuser only)
	admin := secured.Group("", middleware.RequireRoles(auth.SuperuserRole))
	admin.POST("/auth/register", authHandler.Register)
	admin.GET("/auth/users", userHandler.ListUsers)
	admin.GET("/auth/users/:id", userHandler.GetUser)
	admin.PUT("/auth/users/:id", userHandler.UpdateUser)
	admin.POST("/auth/users/:id/roles/:name", userHandler.AssignRole)
	admin.DELETE("/auth/users/:id/roles/:name", userHandler.RemoveRole)
	admin.POST("/auth/roles", roleHandler.CreateRole)
	admin.POST("/auth/roles/:id/permissions", roleHandler.CreatePermission)

	secured.GET("/auth/roles", roleHandler.ListRoles)
	secured.GET("/auth/roles/:id", roleHandler.GetRole)

	// Employee routes: permission gate for listing, role gates for writes,
	// ownership gate (with admin/hr bypass) for single-record reads.
	secured.GET("/employees", employeeHandler.ListEmployees,
		middleware.RequirePermissions("employee:read_admin", "employee:read_hr", "employee:read_manager"))
	secured.GET("/employees/:id", employeeHandler.GetEmployee,
		middleware.RequireOwnership(employeeOwner))
	secured.POST("/employees", employeeHandler.CreateEmployee,
		middleware.RequireRoles("admin", "hr"))
	secured.PUT("/employees/:id", employeeHandler.UpdateEmployee,
		middleware.RequireRoles("admin", "hr"))
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
