package config

import (
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Database
	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`

	// JWT
	JWTSecret string `mapstructure:"JWT_SECRET"`

	// VPN reputation service
	VPNApiURL   string `mapstructure:"VPN_API_URL"`
	VPNHashSalt string `mapstructure:"VPN_HASH_SALT"`

	// GeoIP (optional; country lookup from IP disabled when empty)
	GeoIPDBPath string `mapstructure:"GEOIP_DB_PATH"`

	// Routing
	FallbackPath string `mapstructure:"FALLBACK_PATH"`

	// Stats
	StatsTimezone string `mapstructure:"STATS_TIMEZONE"`

	// Server
	Port        string `mapstructure:"PORT"`
	Env         string `mapstructure:"ENV"`
	FrontendURL string `mapstructure:"FRONTEND_URL"`
}

var AppConfig *Config

func Load() (*Config, error) {
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("FRONTEND_URL", "http://localhost:5173")
	viper.SetDefault("FALLBACK_PATH", "/landing")
	viper.SetDefault("STATS_TIMEZONE", "UTC")

	// Only try to read .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		viper.SetConfigFile(".env")
		if err := viper.ReadInConfig(); err != nil {
			log.Printf("Warning: Error reading .env file: %v", err)
		} else {
			log.Println("Loaded configuration from .env file")
		}
	} else {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, err
	}

	AppConfig = config
	return config, nil
}

func (c *Config) GetDSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=disable"
}

// StatsLocation resolves the timezone used for the daily counter reset.
// Falls back to UTC on a bad zone name rather than failing startup.
func (c *Config) StatsLocation() *time.Location {
	loc, err := time.LoadLocation(c.StatsTimezone)
	if err != nil {
		log.Printf("Warning: invalid STATS_TIMEZONE %q, falling back to UTC", c.StatsTimezone)
		return time.UTC
	}
	return loc
}
