package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xctd-glitch/trackng.app/database"
	"github.com/xctd-glitch/trackng.app/internal/engine"
	"github.com/xctd-glitch/trackng.app/internal/store"
	"github.com/xctd-glitch/trackng.app/models"
)

// HandleClick is the public click endpoint: classifies the request, asks
// the engine for a decision and redirects. The click log write is best
// effort and never delays or fails the redirect.
// GET /go?click_id=..&country=..&device=..&landing=..
func HandleClick(c *gin.Context) {
	ip := c.ClientIP()

	countryCode := c.Query("country")
	if countryCode == "" {
		countryCode = geoResolver.Country(ip)
	}

	input := engine.Input{
		CountryCode: countryCode,
		UserAgent:   c.GetHeader("User-Agent"),
		DeviceHint:  c.Query("device"),
		IP:          ip,
		ClickID:     c.Query("click_id"),
		LandingID:   c.Query("landing"),
	}

	decision, err := gateEngine.Decide(c.Request.Context(), input)
	if err != nil {
		// Only storage failures surface here; never leak the cause.
		if errors.Is(err, store.ErrConfigLoad) {
			log.Printf("Error: config store unreachable: %v", err)
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Service unavailable"})
		return
	}

	entry := models.ClickLog{
		ClickID:      input.ClickID,
		IP:           ip,
		UserAgent:    input.UserAgent,
		Country:      decision.Country,
		Device:       string(decision.Device),
		LandingID:    input.LandingID,
		DecisionType: decision.Type,
		Target:       decision.Target,
	}
	if err := database.DB.Create(&entry).Error; err != nil {
		log.Printf("Warning: click log write failed: %v", err)
	}

	c.Redirect(http.StatusFound, decision.Target)
}

// ListClicks returns the click log, newest first (admin only)
// GET /api/clicks?country=..&decision=..&from=..&to=..&limit=..&offset=..
func ListClicks(c *gin.Context) {
	filter := models.ClickLogFilter{Limit: 50}

	if v := c.Query("country"); v != "" {
		filter.Country = &v
	}
	if v := c.Query("decision"); v != "" {
		filter.DecisionType = &v
	}
	if v := c.Query("from"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.StartDate = &t
		}
	}
	if v := c.Query("to"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.EndDate = &t
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			filter.Limit = n
		}
	}
	if v := c.Query("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			filter.Offset = n
		}
	}

	query := database.DB.Model(&models.ClickLog{})
	if filter.Country != nil {
		query = query.Where("country = ?", *filter.Country)
	}
	if filter.DecisionType != nil {
		query = query.Where("decision_type = ?", *filter.DecisionType)
	}
	if filter.StartDate != nil {
		query = query.Where("created_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("created_at <= ?", *filter.EndDate)
	}

	var total int64
	query.Count(&total)

	var entries []models.ClickLog
	if err := query.Order("created_at DESC").Limit(filter.Limit).Offset(filter.Offset).Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch click logs"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"clicks": entries, "total": total})
}
