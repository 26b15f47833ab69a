package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cryptotracker/src/config"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := config.LoadConfig("../../settings")
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Service.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Service.ClientURL)
	assert.Equal(t, "cryptotracker", cfg.Databases.SQL.Database)
	assert.Equal(t, "https://api.coingecko.com/api/v3", cfg.ExternalClients.CoinGecko.BaseURL)
	assert.Equal(t, "https://api.coincap.io", cfg.ExternalClients.CoinCap.BaseURL)
	assert.Equal(t, 168, cfg.Auth.TokenHours)
	assert.Equal(t, "@every 5m", cfg.MarketData.CronSpec)
	assert.Equal(t, 5, cfg.MarketData.FreshnessMinutes)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("DATABASE_URL", "postgres://from-env/db")

	cfg, err := config.LoadConfig("../../settings")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "postgres://from-env/db", cfg.Databases.SQL.ConnectionString)
}
