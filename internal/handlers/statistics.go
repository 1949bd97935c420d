package handlers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agrachev/github-events-stats/internal/config"
	"github.com/agrachev/github-events-stats/internal/stats"
)

// RegisterStatisticsRoutes registers the serving-path endpoint.
//
// GET /statistics
// - Returns repo → {event type → mean interval} for all configured repos.
// - The engine computes seconds; the configured interval unit and 3-decimal
//   rounding are applied here, at presentation.
func RegisterStatisticsRoutes(r gin.IRoutes, cfg config.Config, engine *stats.Engine) {
	divisor := cfg.IntervalDivisor()

	r.GET("/statistics", func(c *gin.Context) {
		result := make(map[string]map[string]float64, len(cfg.Repositories))

		for _, repo := range cfg.Repositories {
			perType, err := engine.RepoStatistics(c.Request.Context(), repo)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "db query failed"})
				return
			}

			rounded := make(map[string]float64, len(perType))
			for typ, seconds := range perType {
				rounded[typ] = math.Round(seconds/divisor*1000) / 1000
			}
			result[repo] = rounded
		}

		c.JSON(http.StatusOK, result)
	})
}
