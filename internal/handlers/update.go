package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/agrachev/github-events-stats/internal/ingest"
)

// Pinger validates store connectivity before an ingestion run starts.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RegisterUpdateRoutes registers the ingestion trigger.
//
// GET /update
// - Runs the coordinator over all configured repositories.
// - Per-repository source failures are reported in the summary, not as an
//   HTTP error.
// - An unreachable store fails the whole request with 503, whether it dies
//   before the run or midway through it.
func RegisterUpdateRoutes(r gin.IRoutes, st Pinger, coord *ingest.Coordinator) {
	r.GET("/update", func(c *gin.Context) {
		// Gate on store connectivity so a dead database surfaces as one
		// clear error instead of a failure per repository.
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		err := st.Ping(ctx)
		cancel()
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "event store unavailable"})
			return
		}

		summary, err := coord.Run(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error":  "event store unavailable",
				"run_id": summary.RunID,
			})
			return
		}
		c.JSON(http.StatusOK, summary)
	})
}
