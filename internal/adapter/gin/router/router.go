package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"

	"store-api/api"
	"store-api/internal/adapter/gin/handler"
	"store-api/internal/adapter/gin/middleware"
	"store-api/pkg/metrics"
)

const (
	// APIPrefix is the base path of every versioned route.
	APIPrefix = "/api/store/v1"
	// DocsPrefix serves the Swagger UI and its OpenAPI document.
	DocsPrefix = "/api/store/openapi"
)

// Deps bundles what the router needs.
type Deps struct {
	UserHandler *handler.UserHandler
	AuthHandler *handler.AuthHandler
	Verifier    middleware.TokenVerifier
	Metrics     *metrics.Metrics
	ServiceName string
	Log         *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and middleware
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(d.Log))
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(d.Log))
	router.Use(middleware.Metrics(d.Metrics))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": d.ServiceName,
		})
	})
	router.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	router.GET(DocsPrefix+".json", func(c *gin.Context) {
		c.Data(http.StatusOK, "application/json", api.SwaggerJSON)
	})
	router.GET(DocsPrefix+"/*any", gin.WrapH(httpSwagger.Handler(
		httpSwagger.URL(DocsPrefix+".json"),
	)))

	v1 := router.Group(APIPrefix)
	{
		login := v1.Group("/login")
		{
			login.POST("/token", d.AuthHandler.Login)
			login.GET("/me", middleware.BearerAuth(d.Verifier), d.AuthHandler.Me)
		}

		users := v1.Group("/users")
		{
			users.POST("/create", d.UserHandler.CreateUser)
			users.GET("/read", d.UserHandler.GetUser)
			users.PATCH("/update", d.UserHandler.UpdateUser)
			users.DELETE("/delete", d.UserHandler.DeleteUser)
		}
	}

	return router
}
