package router

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/inderaputra17/JLG-LOGS/internal/metrics"
	"github.com/inderaputra17/JLG-LOGS/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Stock  *handlers.StockHandler
	Comms  *handlers.CommsHandler
	Alerts *handlers.AlertsHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))
	r.Use(metricsMiddleware())

	api := r.Group("/api/v1")
	{
		stock := api.Group("/stock")
		stock.GET("", h.Stock.List)
		stock.POST("", h.Stock.Create)
		stock.GET("/duplicates", h.Stock.Duplicates)
		stock.GET("/:id", h.Stock.Get)
		stock.PUT("/:id", h.Stock.Update)
		stock.DELETE("/:id", h.Stock.Delete)
		stock.POST("/:id/transfer", h.Stock.Transfer)

		comms := api.Group("/comms")
		comms.GET("", h.Comms.List)
		comms.POST("", h.Comms.Upsert)
		comms.GET("/:id", h.Comms.Get)
		comms.PATCH("/:id/status", h.Comms.SetStatus)
		comms.DELETE("/:id", h.Comms.Delete)

		api.GET("/alerts", h.Alerts.List)
		api.GET("/dashboard", h.Alerts.Dashboard)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// metricsMiddleware labels by route template so ids do not explode cardinality.
func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
