package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/labelprint/orderexport/internal/api/handlers"
	"github.com/labelprint/orderexport/internal/api/middleware"
	"github.com/labelprint/orderexport/internal/config"
	"github.com/labelprint/orderexport/internal/metrics"
	"github.com/labelprint/orderexport/internal/service"
	"github.com/labelprint/orderexport/internal/storage"
)

// Dependencies are the services the router exposes
type Dependencies struct {
	Export  *service.ExportService
	Webhook *service.WebhookService
	Metrics *metrics.Metrics
	// LocalStore serves /exports/:file; nil when exports go to S3
	LocalStore *storage.LocalStore
}

// NewRouter creates and configures the Gin router
func NewRouter(cfg *config.Config, deps Dependencies, logger *zap.Logger) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Middleware
	router.Use(customRecovery(logger))
	router.Use(loggingMiddleware(logger))

	// Root: friendly response so GET / returns 200 instead of 404
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "Order Export API",
			"endpoints": []string{
				"GET /health",
				"GET /metrics",
				"POST /webhooks/shopify/orders",
				"GET /app/api/orders",
				"POST /app/api/export",
				"POST /app/api/export/stored",
				"GET /app/api/exports",
				"GET /exports/:file",
			},
		})
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// Shopify webhook: order create/update events refresh the local mirror
	var observer handlers.WebhookObserver
	if deps.Metrics != nil {
		observer = deps.Metrics
	}
	router.POST("/webhooks/shopify/orders", handlers.HandleShopifyOrderWebhook(cfg, deps.Webhook, observer, logger))

	// Admin app routes (bearer API key)
	admin := router.Group("/app/api")
	admin.Use(middleware.AdminAuth(cfg.API.AdminKeyHash, logger))
	{
		admin.GET("/orders", handlers.HandleListOrders(deps.Export, logger))
		admin.POST("/export", handlers.HandleExport(deps.Export, logger))
		admin.POST("/export/stored", handlers.HandleExportStored(deps.Export, logger))
		admin.GET("/exports", handlers.HandleListExports(deps.Export, logger))
	}

	if deps.LocalStore != nil {
		files := router.Group("/exports")
		files.Use(middleware.AdminAuth(cfg.API.AdminKeyHash, logger))
		files.GET("/:file", handlers.HandleExportFile(deps.LocalStore, logger))
	}

	return router
}

// customRecovery is a custom recovery middleware that logs panics
func customRecovery(logger *zap.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Error("Panic recovered",
			zap.Any("error", recovered),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	})
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		status := c.Writer.Status()
		logger.Info("HTTP request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", status),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}
