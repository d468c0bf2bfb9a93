package api

import (
	"net/http"

	"github.com/anatolykoptev/go_guide/internal/engine"
	"github.com/gin-gonic/gin"
)

// RegisterHealthRoutes registers liveness and metrics endpoints.
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/health", handleHealth)
	r.GET("/metrics", handleMetrics)
}

// GET /health
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GET /metrics
func handleMetrics(c *gin.Context) {
	c.String(http.StatusOK, engine.FormatMetrics())
}
