package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration (env + Viper).
type Config struct {
	Env                string
	Port               string
	LogLevel           string
	DatabaseURL        string // postgres URL, or sqlite://<path> for local runs
	RedisURL           string // optional; enables health counters and import locking
	ModelPath          string // JSON file holding the fitted usage model
	HealthAdminKey     string // guards /reset and the predictor reload endpoint
	CORSAllowedOrigins string // comma separated; "*" allows any origin
	MetricsEnabled     bool
	ExportPageSize     int
	MigrateOnStart     bool
}

// Load loads config from env and optional .env file.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	_ = viper.ReadInConfig()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MODEL_PATH", "ml_model.json")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	viper.SetDefault("METRICS_ENABLED", true)
	viper.SetDefault("EXPORT_PAGE_SIZE", 100)
	viper.SetDefault("MIGRATE_ON_START", true)

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	dbURL := viper.GetString("DATABASE_URL_DEV")
	if env == "production" {
		dbURL = viper.GetString("DATABASE_URL_PROD")
	} else if env == "test" {
		dbURL = viper.GetString("DATABASE_URL_TEST")
	}
	if dbURL == "" {
		dbURL = viper.GetString("DATABASE_URL")
	}

	pageSize := viper.GetInt("EXPORT_PAGE_SIZE")
	if pageSize <= 0 {
		pageSize = 100
	}

	return &Config{
		Env:                env,
		Port:               viper.GetString("PORT"),
		LogLevel:           viper.GetString("LOG_LEVEL"),
		DatabaseURL:        dbURL,
		RedisURL:           viper.GetString("REDIS_URL"),
		ModelPath:          viper.GetString("MODEL_PATH"),
		HealthAdminKey:     viper.GetString("HEALTH_ADMIN_KEY"),
		CORSAllowedOrigins: viper.GetString("CORS_ALLOWED_ORIGINS"),
		MetricsEnabled:     viper.GetBool("METRICS_ENABLED"),
		ExportPageSize:     pageSize,
		MigrateOnStart:     viper.GetBool("MIGRATE_ON_START"),
	}, nil
}

// IsProduction reports whether APP_ENV is "production".
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
