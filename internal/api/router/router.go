package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/studioshot/headshot-be/internal/api/handler"
)

// SetupRouter configures and returns the Gin router with all routes
func SetupRouter(deps *handler.Dependencies) *gin.Engine {
	r := gin.New()

	// Middleware
	r.Use(gin.Recovery())
	r.Use(LoggerMiddleware(deps.Logger))
	r.Use(CORSMiddleware())

	// Health check endpoint: verifies the database and broker are
	// reachable, not just that the process is up.
	r.GET("/health", func(c *gin.Context) {
		if err := deps.DBClient.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "database unreachable",
			})
			return
		}
		if !deps.RabbitClient.IsConnected() {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unhealthy",
				"error":  "message broker unreachable",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "headshot-api-service",
		})
	})

	orderHandler := handler.NewOrderHandler(deps)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		// POST /api/v1/checkout/completed - payment webhook intake
		v1.POST("/checkout/completed", orderHandler.CheckoutCompleted)

		// GET /api/v1/asset-groups/:asset_group_id/gallery - generated images
		v1.GET("/asset-groups/:asset_group_id/gallery", orderHandler.GetGallery)
	}

	return r
}
