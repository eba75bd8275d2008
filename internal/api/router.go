package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/productvote/catalog-service/internal/api/handler"
	"github.com/productvote/catalog-service/internal/api/middleware"
	"github.com/productvote/catalog-service/internal/core/ports"
)

// Dependencies groups everything the router needs. Mongo and Redis are only
// used by the readiness probe; Redis may be nil.
type Dependencies struct {
	Products    ports.ProductService
	Users       ports.UserService
	Mongo       *mongo.Database
	Redis       *redis.Client
	Logger      zerolog.Logger
	CORSOrigins []string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(deps.Logger))
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins: origins,
	}))
	e.Use(middleware.Metrics())

	// --- Dependencies ---
	productHandler := handler.NewProductHandler(deps.Products)
	userHandler := handler.NewUserHandler(deps.Users)
	healthHandler := handler.NewHealthHandler()

	e.GET("/", healthHandler.Root)

	// --- Product routes ---
	products := e.Group("/products")
	products.POST("", productHandler.Create)
	products.GET("", productHandler.List)
	products.GET("/accepted", productHandler.ListAccepted)
	products.GET("/Featured", productHandler.ListFeatured)
	products.GET("/reported", productHandler.ListReported)
	products.GET("/byEmail/:email", productHandler.ListByOwner)
	products.GET("/:id", productHandler.Get)
	products.PUT("/:id", productHandler.Replace)
	products.DELETE("/:id", productHandler.Delete)
	products.PATCH("/:id/vote", productHandler.Vote)
	products.PATCH("/accept/:id", productHandler.Accept)
	products.PATCH("/reject/:id", productHandler.Reject)
	products.PATCH("/feature/:id", productHandler.Feature)
	products.PATCH("/reported/:id", productHandler.Report)

	// --- User routes ---
	e.POST("/users", userHandler.Register)
	e.GET("/users", userHandler.List)

	// --- Health probes & metrics ---
	e.GET("/health", healthHandler.Liveness) // liveness  – is the process alive?
	if deps.Mongo != nil {
		healthDepsHandler := handler.NewHealthDependenciesHandler(deps.Mongo, deps.Redis)
		e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	return e
}
