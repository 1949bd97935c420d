package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/agrachev/github-events-stats/internal/config"
	"github.com/agrachev/github-events-stats/internal/handlers"
	"github.com/agrachev/github-events-stats/internal/ingest"
	"github.com/agrachev/github-events-stats/internal/stats"
	"github.com/agrachev/github-events-stats/internal/store"
)

// NewRouter wires the service endpoints.
// Operational: /health, /ready, /metrics
// Application: /update, /statistics
func NewRouter(cfg config.Config, st *store.PostgresStore, coord *ingest.Coordinator, engine *stats.Engine) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())

	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Readiness: confirms the DB dependency is reachable.
	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handlers.RegisterUpdateRoutes(r, st, coord)
	handlers.RegisterStatisticsRoutes(r, cfg, engine)

	return r
}
