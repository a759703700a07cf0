package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/bondastefana/farm-management-app/internal/server/handlers"
)

// Handlers groups the HTTP adapters mounted by the router.
type Handlers struct {
	Soil       *handlers.SoilHandler
	Conditions *handlers.ConditionsHandler
	Feed       *handlers.FeedHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, metricsHandler http.Handler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if metricsHandler != nil {
		r.GET("/metrics", gin.WrapH(metricsHandler))
	}

	soil := r.Group("/soil-analyses")
	soil.POST("", h.Soil.Create)
	soil.GET("/:id", h.Soil.Get)
	soil.PATCH("/:id", h.Soil.UpdateMetadata)
	soil.POST("/:id/samples", h.Soil.AppendSamples)
	soil.GET("/:id/statistics", h.Soil.Statistics)
	soil.POST("/:id/apply", h.Soil.Apply)

	parcels := r.Group("/parcels/:id")
	parcels.GET("/conditions", h.Conditions.Get)
	parcels.PATCH("/conditions", h.Conditions.Edit)
	parcels.POST("/conditions/refresh", h.Conditions.Refresh)
	parcels.POST("/conditions/revert", h.Conditions.Revert)
	parcels.PUT("/location", h.Conditions.SetLocation)
	parcels.GET("/recommendations", h.Conditions.Recommendations)
	parcels.GET("/soil-analyses", h.Soil.ListByParcel)
	parcels.GET("/soil-trend", h.Soil.Trend)

	feed := r.Group("/feed")
	feed.GET("/needed-stock", h.Feed.NeededStock)
	feed.GET("/balance", h.Feed.Balance)
	feed.GET("/balance/snapshot", h.Feed.BalanceSnapshot)
	feed.GET("/rates", h.Feed.Rates)
	feed.PUT("/rates", h.Feed.SetRate)
	feed.DELETE("/rates/:species", h.Feed.ResetRates)
	feed.GET("/periods", h.Feed.Periods)
	feed.PUT("/periods/:foodType", h.Feed.SetPeriod)

	plans := r.Group("/production-plans")
	plans.GET("", h.Feed.Plans)
	plans.POST("", h.Feed.CreatePlan)
	plans.PUT("/:id", h.Feed.UpdatePlan)
	plans.DELETE("/:id", h.Feed.DeletePlan)

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
