package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// Ingestion limits
	MaxUploadRows int
	MaxFileSizeMB int

	// Matching defaults
	DefaultVariancePercent float64

	// Rate limiting, in ulule/limiter notation (e.g. "100-M")
	RateLimit string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("MAX_UPLOAD_ROWS", 50000)
	viper.SetDefault("MAX_FILE_SIZE_MB", 50)
	viper.SetDefault("DEFAULT_VARIANCE_PERCENT", 2.0)
	viper.SetDefault("RATE_LIMIT", "100-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.MaxUploadRows = viper.GetInt("MAX_UPLOAD_ROWS")
	if cfg.MaxUploadRows <= 0 {
		cfg.MaxUploadRows = 50000
		log.Printf("Warning: Invalid MAX_UPLOAD_ROWS. Defaulting to %d.\n", cfg.MaxUploadRows)
	}

	cfg.MaxFileSizeMB = viper.GetInt("MAX_FILE_SIZE_MB")
	if cfg.MaxFileSizeMB <= 0 {
		cfg.MaxFileSizeMB = 50
		log.Printf("Warning: Invalid MAX_FILE_SIZE_MB. Defaulting to %d.\n", cfg.MaxFileSizeMB)
	}

	cfg.DefaultVariancePercent = viper.GetFloat64("DEFAULT_VARIANCE_PERCENT")
	if cfg.DefaultVariancePercent < 0 {
		cfg.DefaultVariancePercent = 2.0
		log.Printf("Warning: Invalid DEFAULT_VARIANCE_PERCENT. Defaulting to %.1f.\n", cfg.DefaultVariancePercent)
	}

	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	return cfg, nil
}
