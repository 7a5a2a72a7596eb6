package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xctd-glitch/trackng.app/database"
	"github.com/xctd-glitch/trackng.app/internal/country"
	"github.com/xctd-glitch/trackng.app/models"
)

// InboundPostback receives conversion notifications from affiliate
// networks. Always answers 200 with a plain body; partners retry on
// anything else and we would rather record a partial row than bounce.
// GET /postback?click_id=..&country=..&payout=..&status=..
func InboundPostback(c *gin.Context) {
	payout, _ := strconv.ParseFloat(c.Query("payout"), 64)
	status, _ := strconv.Atoi(c.Query("status"))

	err := postbackSvc.RecordInbound(
		c.Query("click_id"),
		country.Normalize(c.Query("country")),
		payout,
		status,
	)
	if err != nil {
		// A failed write must not bounce the partner's notification
		log.Printf("Warning: inbound postback record failed: %v", err)
	}
	c.String(http.StatusOK, "OK")
}

// ListPostbacks returns the postback log, newest first (admin only)
// GET /api/postbacks?direction=..&limit=..&offset=..
func ListPostbacks(c *gin.Context) {
	limit := 50
	offset := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	query := database.DB.Model(&models.PostbackLog{})
	if v := c.Query("direction"); v != "" {
		query = query.Where("direction = ?", v)
	}

	var total int64
	query.Count(&total)

	var entries []models.PostbackLog
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch postback logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"postbacks": entries, "total": total})
}
