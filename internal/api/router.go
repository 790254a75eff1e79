package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/epidash-backend-go/internal/handler"
	"github.com/jengzang/epidash-backend-go/internal/middleware"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.DashboardHandler, logger *zap.Logger, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger(logger))

	// CORS 中间件
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Expose-Headers", "X-Request-ID, Retry-After")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Epidash API is running",
		})
	})

	// API 路由组
	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(limiter))
	{
		api.GET("/coordinates", h.GetCoordinates)

		datasets := api.Group("/datasets")
		{
			datasets.POST("", h.Upload)
			datasets.DELETE("/:id", h.DeleteDataset)

			datasets.GET("/:id/dashboard", h.GetDashboard)
			datasets.GET("/:id/yearly", h.GetYearly)
			datasets.GET("/:id/latest", h.GetLatest)
			datasets.GET("/:id/heatmap", h.GetHeatmap)
			datasets.GET("/:id/kpis", h.GetKPIs)
			datasets.GET("/:id/charts/:chart", h.GetChart)

			// 地图
			datasets.GET("/:id/map/points", h.GetPointMap)
			datasets.GET("/:id/map/choropleth", h.GetChoropleth)

			// 原始数据表
			datasets.GET("/:id/rows/outbreak", h.ListOutbreakRows)
			datasets.GET("/:id/rows/timeseries", h.ListTimeseriesRows)
		}
	}

	return r
}
