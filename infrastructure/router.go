// infrastructure/router.go
package infrastructure

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports the state of one dependency; nil means healthy.
type HealthCheck func() error

type RouterConfig struct {
	Handlers     *VideoHandlers
	JWTSecret    []byte
	Metrics      *PrometheusMetrics
	Gatherer     prometheus.Gatherer
	HealthChecks map[string]HealthCheck
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if cfg.Metrics != nil {
		router.Use(cfg.Metrics.GinMiddleware())
	}

	router.GET("/health", healthHandler(cfg.HealthChecks))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Video Recognition Service is running!"})
	})
	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	h := cfg.Handlers
	videos := router.Group("/videos")
	videos.Use(AuthMiddleware(cfg.JWTSecret))
	{
		videos.POST("/upload", h.UploadVideoHandler)
		videos.POST("/process", h.ProcessVideoHandler)
		videos.POST("/recognize", h.RecognizeVideoHandler)
		videos.POST("/recognize/async", h.RecognizeAsyncHandler)
		videos.GET("/status", h.StatusHandler)
		videos.GET("/formats", h.FormatsHandler)
		videos.GET("/history", h.HistoryHandler)
	}
	return router
}

func healthHandler(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		body := gin.H{}
		healthy := true
		for name, check := range checks {
			state := "connected"
			if err := check(); err != nil {
				state = "error: " + err.Error()
				healthy = false
			}
			body[name] = state
		}
		if !healthy {
			body["status"] = "DOWN"
			c.JSON(http.StatusInternalServerError, body)
			return
		}
		body["status"] = "UP"
		c.JSON(http.StatusOK, body)
	}
}
