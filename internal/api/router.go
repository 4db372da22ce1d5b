package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoswagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/fotf/subscription-system/docs"
	"github.com/fotf/subscription-system/internal/api/handler"
	"github.com/fotf/subscription-system/internal/api/middleware"
	"github.com/fotf/subscription-system/internal/core/ports"
)

// Dependencies carries everything the router needs, wired in cmd/api.
type Dependencies struct {
	Accounts      ports.AccountRepository
	Auth          ports.AuthService
	Tokens        ports.TokenService
	Products      ports.ProductService
	Subscriptions ports.SubscriptionService
	Mongo         *mongo.Database
	Redis         *redis.Client
	Logger        zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.CORS())
	e.Use(echoprometheus.NewMiddleware("subscriptions"))

	authGate := middleware.Auth(deps.Tokens)
	adminGate := middleware.AdminOnly(deps.Accounts)

	authHandler := handler.NewAuthHandler(deps.Auth)
	userHandler := handler.NewUserHandler(deps.Auth)
	productHandler := handler.NewProductHandler(deps.Products)
	subscriptionHandler := handler.NewSubscriptionHandler(deps.Subscriptions)
	adminHandler := handler.NewAdminHandler(deps.Accounts, deps.Subscriptions)

	api := e.Group("/api")

	// --- Auth ---
	api.POST("/auth/signup", authHandler.Signup)
	api.POST("/auth/login", authHandler.Login)

	// --- Current user ---
	api.GET("/user", userHandler.Me, authGate)

	// --- Catalog ---
	api.GET("/products", productHandler.List)
	api.POST("/products", productHandler.Create, authGate, adminGate)

	// --- Subscriptions ---
	api.GET("/subscriptions", subscriptionHandler.List, authGate)
	api.POST("/subscriptions", subscriptionHandler.Create, authGate)
	api.POST("/subscriptions/:id/cancel", subscriptionHandler.Cancel, authGate)

	// --- Admin ---
	admin := api.Group("/admin", authGate, adminGate)
	admin.GET("/users", adminHandler.Users)
	admin.GET("/subscriptions", adminHandler.Subscriptions)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness)  // readiness – are dependencies up?

	// --- Operational endpoints ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoswagger.WrapHandler)

	return e
}
