package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/xctd-glitch/trackng.app/config"
	"github.com/xctd-glitch/trackng.app/handlers"
	"github.com/xctd-glitch/trackng.app/middleware"
)

func Setup(cfg *config.Config) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL, "http://localhost:3000", "http://localhost:5173"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Public traffic endpoints (no auth)
	r.GET("/go", handlers.HandleClick)
	r.GET("/postback", handlers.InboundPostback)

	// Auth routes (no auth required)
	auth := r.Group("/auth")
	{
		auth.POST("/register", handlers.Register)
		auth.POST("/login", handlers.Login)
	}

	// Admin API
	api := r.Group("/api")
	api.Use(middleware.AuthRequired(), middleware.AdminRequired())
	{
		api.GET("/settings", handlers.GetSettings)
		api.PUT("/settings", handlers.UpdateSettings)
		api.GET("/stats", handlers.GetStats)
		api.GET("/clicks", handlers.ListClicks)
		api.GET("/postbacks", handlers.ListPostbacks)
	}

	return r
}
