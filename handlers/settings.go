package handlers

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xctd-glitch/trackng.app/internal/country"
	"github.com/xctd-glitch/trackng.app/internal/device"
	"github.com/xctd-glitch/trackng.app/models"
	"github.com/xctd-glitch/trackng.app/services"
)

// GetSettings returns the current gate configuration (admin only)
func GetSettings(c *gin.Context) {
	cfg, err := configStore.Fresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}
	c.JSON(http.StatusOK, cfg)
}

// UpdateSettings applies a partial configuration update (admin only).
// The postback template is SSRF-checked here, at save time, in addition
// to the check at dispatch time.
func UpdateSettings(c *gin.Context) {
	var req models.UpdateGateConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg, err := configStore.Fresh(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load settings"})
		return
	}

	if req.Enabled != nil {
		cfg.Enabled = *req.Enabled
	}
	if req.TargetURLs != nil {
		for _, raw := range *req.TargetURLs {
			u, err := url.Parse(strings.TrimSpace(raw))
			if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target URL: " + raw})
				return
			}
		}
		cfg.TargetURLs = *req.TargetURLs
	}
	if req.CountryFilterMode != nil {
		mode := models.CountryFilterMode(*req.CountryFilterMode)
		switch mode {
		case models.FilterAll, models.FilterWhitelist, models.FilterBlacklist:
			cfg.CountryFilterMode = mode
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid country filter mode"})
			return
		}
	}
	if req.CountryFilterList != nil {
		normalized := make([]string, 0, len(*req.CountryFilterList))
		for _, code := range *req.CountryFilterList {
			normalized = append(normalized, country.Normalize(code))
		}
		cfg.CountryFilterList = normalized
	}
	if req.PostbackEnabled != nil {
		cfg.PostbackEnabled = *req.PostbackEnabled
	}
	if req.PostbackURLTemplate != nil {
		if *req.PostbackURLTemplate != "" {
			// Validate against a representative fill; the raw template
			// with braces is not itself a well-formed URL.
			filled := services.FillTemplate(*req.PostbackURLTemplate, "US", device.WAP, 1.00)
			if err := postbackSvc.ValidateURL(c.Request.Context(), filled); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid postback URL: " + err.Error()})
				return
			}
		}
		cfg.PostbackURLTemplate = *req.PostbackURLTemplate
	}
	if req.DefaultPayout != nil {
		if *req.DefaultPayout < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Payout cannot be negative"})
			return
		}
		cfg.DefaultPayout = *req.DefaultPayout
	}

	if err := configStore.Update(c.Request.Context(), cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save settings"})
		return
	}

	c.JSON(http.StatusOK, cfg)
}
