package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("uses defaults when environment is empty", func(t *testing.T) {
		for _, key := range []string{
			"DB_PATH", "MOEX_BASE_URL", "MOEX_TIMEOUT", "MOEX_EXCLUDED_BOARD",
			"SECURITIES_SCHEDULE", "MARKETDATA_SCHEDULE", "SEARCH_LIMIT",
			"CALC_COMMISSION", "CALC_TAX", "LOG_LEVEL", "LOG_PRETTY",
		} {
			t.Setenv(key, "")
		}

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "./data/bonds.db", cfg.Database.Path)
		assert.Equal(t, "https://iss.moex.com", cfg.MOEX.BaseURL)
		assert.Equal(t, 30*time.Second, cfg.MOEX.Timeout)
		assert.Equal(t, "SPOB", cfg.MOEX.ExcludedBoard)
		assert.Equal(t, "@hourly", cfg.Schedule.Securities)
		assert.Equal(t, "@every 1m", cfg.Schedule.MarketData)
		assert.Equal(t, 100, cfg.Search.Limit)
		assert.Equal(t, 0.05, cfg.Calculator.Commission)
		assert.Equal(t, 13.0, cfg.Calculator.Tax)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.False(t, cfg.Log.Pretty)
	})

	t.Run("reads overrides", func(t *testing.T) {
		t.Setenv("DB_PATH", "/tmp/bonds.db")
		t.Setenv("MOEX_TIMEOUT", "5s")
		t.Setenv("SEARCH_LIMIT", "20")
		t.Setenv("CALC_TAX", "15")
		t.Setenv("LOG_PRETTY", "true")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "/tmp/bonds.db", cfg.Database.Path)
		assert.Equal(t, 5*time.Second, cfg.MOEX.Timeout)
		assert.Equal(t, 20, cfg.Search.Limit)
		assert.Equal(t, 15.0, cfg.Calculator.Tax)
		assert.True(t, cfg.Log.Pretty)
	})

	t.Run("rejects malformed numbers", func(t *testing.T) {
		t.Setenv("SEARCH_LIMIT", "many")

		_, err := Load()
		assert.ErrorContains(t, err, "SEARCH_LIMIT")
	})

	t.Run("rejects malformed durations", func(t *testing.T) {
		t.Setenv("MOEX_TIMEOUT", "soon")

		_, err := Load()
		assert.ErrorContains(t, err, "MOEX_TIMEOUT")
	})
}
