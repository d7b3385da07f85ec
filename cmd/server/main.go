package main

import (
	"context"
	"log"
	"net/http"

	"hrportal/docs"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"hrportal/internal/auth"
	"hrportal/internal/cache"
	"hrportal/internal/config"
	"hrportal/internal/db"
	"hrportal/internal/handler"
	"hrportal/internal/mail"
	mw "hrportal/internal/middleware"
	"hrportal/internal/model"
	"hrportal/internal/repository"
	"hrportal/internal/router"
	"hrportal/internal/seed"
	"hrportal/internal/service"
)

// @title HR Portal API
// @version 1.0
// @description HR record-keeping service with role/permission based access control and JWT authentication.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = cfg.SwaggerHost
	}

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.Employee{},
		&model.User{},
		&model.Role{},
		&model.Permission{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	ctx := context.Background()
	if err := seed.EnsureRoles(ctx, gormDB); err != nil {
		log.Fatalf("seed roles: %v", err)
	}
	if err := seed.EnsureAdmin(ctx, gormDB, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("seed admin: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Repositories
	userRepo := repository.NewUserRepository(gormDB)
	roleRepo := repository.NewRoleRepository(gormDB)
	employeeRepo := repository.NewEmployeeRepository(gormDB)

	// Auth components: Redis-backed stores so counters and tokens are shared
	// across replicas. Swap in the memory stores for single-node deployments.
	engine := auth.NewTokenEngine(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
	limiter := auth.NewLoginLimiter(
		auth.NewRedisAttemptStore(cacheClient, cfg.LockoutWindow),
		cfg.MaxLoginAttempts,
		cfg.LockoutWindow,
	)
	resetStore := auth.NewRedisResetTokenStore(cacheClient)
	refreshStore := auth.NewRedisRefreshTokenStore(cacheClient)

	var mailer mail.Mailer
	if cfg.SMTPUsername != "" {
		mailer = mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.FromEmail)
	} else {
		mailer = mail.LogMailer{}
	}

	// Services
	authService := service.NewAuthService(
		userRepo, roleRepo, employeeRepo,
		engine, limiter, resetStore, refreshStore,
		mailer, cfg.ResetTokenTTL, cfg.ResetBaseURL,
	)
	userService := service.NewUserService(userRepo, roleRepo)
	roleService := service.NewRoleService(roleRepo)
	employeeService := service.NewEmployeeService(employeeRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)

	router.Register(
		e,
		cfg,
		engine,
		userRepo,
		authHandler,
		userHandler,
		roleHandler,
		employeeHandler,
		mw.OwnershipConfig{
			Lookup:      employeeService.OwnerOf,
			BypassRoles: []string{"admin", "hr"},
		},
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
