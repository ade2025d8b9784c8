package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qzaway/foodcourt/internal/api/handlers"
	"github.com/qzaway/foodcourt/internal/config"
	"github.com/qzaway/foodcourt/internal/service"
)

// Services are the long-lived handles the routes operate on
type Services struct {
	Cart    service.CartEngine
	Orders  service.OrderHistory
	Catalog service.Catalog
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, svc Services, logger *zap.Logger) *gin.Engine {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(loggingMiddleware(logger))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	{
		v1.GET("/malls", handlers.HandleListMalls(svc.Catalog))
		v1.GET("/malls/:mallId/restaurants", handlers.HandleListRestaurants(svc.Catalog))
		v1.GET("/malls/:mallId/search", handlers.HandleSearch(svc.Catalog, logger))
		v1.GET("/restaurants/:restaurantId/menu", handlers.HandleGetMenu(svc.Catalog))

		cart := v1.Group("/cart")
		{
			cart.PUT("/mall", handlers.HandleSetMall(svc.Cart, logger))
			cart.GET("", handlers.HandleGetCart(svc.Cart))
			cart.GET("/events", handlers.HandleCartEvents(svc.Cart, logger))
			cart.POST("/refresh", handlers.HandleRefreshCart(svc.Cart))
			cart.POST("/items", handlers.HandleAddItem(svc.Cart, logger))
			cart.PATCH("/items/:cartItemId", handlers.HandleUpdateItem(svc.Cart, logger))
			cart.DELETE("/items/:cartItemId", handlers.HandleRemoveItem(svc.Cart, logger))
		}

		v1.POST("/orders", handlers.HandlePlaceOrder(svc.Cart, logger))
		v1.GET("/orders", handlers.HandleListOrders(svc.Orders))
		v1.POST("/orders/:orderId/reorder", handlers.HandleReorder(svc.Orders, svc.Cart, logger))
	}

	return router
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		)
	}
}
