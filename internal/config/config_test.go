package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "")
	t.Setenv("DATABASE_URL_DEV", "")
	t.Setenv("DATABASE_URL", "sqlite://eco.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "ml_model.json", cfg.ModelPath)
	assert.Equal(t, "*", cfg.CORSAllowedOrigins)
	assert.Equal(t, "sqlite://eco.db", cfg.DatabaseURL)
	assert.Equal(t, 100, cfg.ExportPageSize)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_ProductionPicksProdURL(t *testing.T) {
	viper.Reset()
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL_PROD", "postgres://prod")
	t.Setenv("DATABASE_URL_DEV", "postgres://dev")
	t.Setenv("EXPORT_PAGE_SIZE", "-4")
	t.Setenv("METRICS_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "postgres://prod", cfg.DatabaseURL)
	assert.Equal(t, 100, cfg.ExportPageSize)
	assert.False(t, cfg.MetricsEnabled)
}
