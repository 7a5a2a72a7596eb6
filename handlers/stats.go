package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xctd-glitch/trackng.app/internal/mute"
	"github.com/xctd-glitch/trackng.app/models"
)

// GetStats returns the dashboard counters (admin only). Reads fresh so
// the dashboard never shows a cached counter snapshot.
func GetStats(c *gin.Context) {
	cfg, err := configStore.Fresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load stats"})
		return
	}

	total := cfg.DecisionACount + cfg.DecisionBCount
	share := 0.0
	if total > 0 {
		share = float64(cfg.DecisionACount) / float64(total) * 100
	}

	c.JSON(http.StatusOK, models.GateStatsResponse{
		Enabled:        cfg.Enabled,
		Muted:          mute.Muted(cfg.Enabled, time.Now()),
		DecisionACount: cfg.DecisionACount,
		DecisionBCount: cfg.DecisionBCount,
		TotalDecisions: total,
		SharePercentA:  share,
		StatsResetAt:   cfg.StatsResetAt,
		UpdatedAt:      cfg.UpdatedAt,
	})
}
