package main

import (
	"log"

	"go.uber.org/zap"

	"github.com/xctd-glitch/trackng.app/config"
	"github.com/xctd-glitch/trackng.app/database"
	"github.com/xctd-glitch/trackng.app/handlers"
	"github.com/xctd-glitch/trackng.app/internal/engine"
	"github.com/xctd-glitch/trackng.app/internal/geo"
	"github.com/xctd-glitch/trackng.app/internal/store"
	"github.com/xctd-glitch/trackng.app/internal/vpn"
	"github.com/xctd-glitch/trackng.app/jobs"
	"github.com/xctd-glitch/trackng.app/routes"
	"github.com/xctd-glitch/trackng.app/services"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("Configuration loaded")

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close()

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Structured logger for the decision path
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// GeoIP (optional)
	geoResolver, err := geo.Open(cfg.GeoIPDBPath)
	if err != nil {
		log.Fatalf("Failed to open GeoIP database: %v", err)
	}
	if geoResolver != nil {
		defer geoResolver.Close()
	}

	// Decision core wiring
	configStore := store.New(database.DB, cfg.StatsLocation())
	vpnChecker := vpn.NewChecker(cfg.VPNApiURL, cfg.VPNHashSalt, logger)
	postbackSvc := services.NewPostbackService(database.DB, logger)
	gateEngine := engine.New(configStore, vpnChecker, postbackSvc, cfg.FallbackPath, logger)

	handlers.Init(gateEngine, configStore, postbackSvc, geoResolver)

	// Scheduled jobs
	cronRunner := jobs.Start(configStore, cfg.StatsLocation())
	defer cronRunner.Stop()

	// Setup routes
	router := routes.Setup(cfg)

	// Start server
	log.Printf("Starting server on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
