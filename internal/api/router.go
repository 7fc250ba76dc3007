package api

import (
	echoprometheus "github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/opratem/schoolems/docs"
	"github.com/opratem/schoolems/internal/api/handler"
	"github.com/opratem/schoolems/internal/api/middleware"
	"github.com/opratem/schoolems/internal/core/domain"
	"github.com/opratem/schoolems/internal/core/ports"
	"github.com/opratem/schoolems/internal/core/service"
	mongorepo "github.com/opratem/schoolems/internal/infrastructure/db/mongo"
	redisstore "github.com/opratem/schoolems/internal/infrastructure/db/redis"
	"github.com/opratem/schoolems/internal/pkg/config"
)

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, mail ports.MailQueue, cfg *config.Config, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("hr"))

	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Dependencies ---
	userRepo := mongorepo.NewUserRepository(db)
	employeeRepo := mongorepo.NewEmployeeRepository(db)
	leaveRepo := mongorepo.NewLeaveRepository(db)
	revoker := redisstore.NewRevocationStore(rdb)

	tokenService := service.NewJWTTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	hasher := service.NewBcryptHasher(0)

	authService := service.NewAuthService(
		userRepo, employeeRepo, tokenService, revoker, hasher, mail,
		service.AuthConfig{
			ResetTokenTTL:       cfg.Auth.ResetTokenTTL,
			ResetBaseURL:        cfg.Auth.ResetBaseURL,
			MaxConcurrentHashes: int64(cfg.Auth.MaxConcurrentHashes),
		},
		log,
	)
	userService := service.NewUserProfileService(userRepo)
	employeeService := service.NewEmployeeService(employeeRepo, leaveRepo, log)
	leaveService := service.NewLeaveRequestService(leaveRepo, employeeRepo, log)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	employeeHandler := handler.NewEmployeeHandler(employeeService)
	leaveHandler := handler.NewLeaveHandler(leaveService)
	healthHandler := handler.NewHealthHandler(db, rdb)

	// Identity resolution runs on every request; the route groups below
	// decide whether an anonymous request may proceed.
	e.Use(middleware.Authenticate(tokenService, revoker, log))

	requireAuth := middleware.RequireAuth()
	managers := middleware.RequireRoles(domain.RoleAdmin, domain.RoleManager)
	adminOnly := middleware.RequireRoles(domain.RoleAdmin)

	// --- Auth routes ---
	auth := e.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/register", authHandler.Register)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)
	auth.PUT("/change-password", authHandler.ChangePassword, requireAuth)
	auth.POST("/logout", authHandler.Logout, requireAuth)
	auth.GET("/health", healthHandler.Liveness)

	// --- Profile routes ---
	users := e.Group("/users", requireAuth)
	users.GET("/profile", userHandler.Profile)
	users.PUT("/profile", userHandler.UpdateProfile)

	// --- Employee routes ---
	employees := e.Group("/employees", requireAuth)
	employees.GET("", employeeHandler.List)
	employees.GET("/:id", employeeHandler.Get)
	employees.POST("", employeeHandler.Create, managers)
	employees.PUT("/:id", employeeHandler.Update, managers)
	employees.DELETE("/:id", employeeHandler.Delete, adminOnly)

	// --- Leave-request routes ---
	leaves := e.Group("/leave-requests", requireAuth)
	leaves.POST("", leaveHandler.Submit)
	leaves.GET("", leaveHandler.ListAll, managers)
	leaves.GET("/employee/:id", leaveHandler.ListForEmployee)
	leaves.PUT("/:id/status", leaveHandler.UpdateStatus, managers)
	leaves.DELETE("/:id", leaveHandler.Delete)

	// --- Operational endpoints ---
	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthHandler.Readiness)     // readiness – are dependencies up?
	e.GET("/metrics", echoprometheus.NewHandler())      // prometheus scrape target
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
