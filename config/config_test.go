package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, "trading: {}\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Len(t, cfg.Trading.Symbols, 8)
	assert.Equal(t, "USDT", cfg.Trading.Cash)
	assert.Equal(t, "*/5 * * * *", cfg.Trading.Schedule)
	assert.Equal(t, 0.5, cfg.Risk.MaxSpreadPercent)
	assert.Equal(t, 5.0, cfg.Risk.MaxDeviationPercent)
	assert.Equal(t, 0.998, cfg.Risk.BalanceUsageRatio)
	assert.Equal(t, 8, cfg.Risk.MinConfidenceScore)
	assert.Equal(t, "rwa_trading_agent", cfg.Storage.TablePrefix)
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoad_FileValuesWin(t *testing.T) {
	path := writeConfig(t, `
trading:
  symbols: [PAXG_USDT]
  cash: USDT
  schedule: "0 * * * *"
risk:
  min_confidence_score: 5
api:
  port: 9000
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"PAXG_USDT"}, cfg.Trading.Symbols)
	assert.Equal(t, "0 * * * *", cfg.Trading.Schedule)
	assert.Equal(t, 5, cfg.Risk.MinConfidenceScore)
	assert.Equal(t, 9000, cfg.API.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("GATEIO_API_KEY", "key-from-env")
	t.Setenv("DYNAMODB_TABLE_PREFIX", "staging_agent")
	t.Setenv("API_PORT", "9999")

	cfg, err := Load(writeConfig(t, "trading: {}\n"))
	require.NoError(t, err)

	assert.Equal(t, "key-from-env", cfg.Exchange.APIKey)
	assert.Equal(t, "staging_agent", cfg.Storage.TablePrefix)
	assert.Equal(t, 9999, cfg.API.Port)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestUniverse(t *testing.T) {
	cfg, err := Load(writeConfig(t, "trading:\n  symbols: [PAXG_USDT, ONDO_USDT]\n"))
	require.NoError(t, err)

	u := cfg.Universe()
	assert.Equal(t, []string{"PAXG_USDT", "ONDO_USDT"}, u.Symbols)
	assert.Equal(t, "USDT", u.Cash)
	assert.True(t, u.Contains("USDT"))
	assert.False(t, u.Contains("BTC_USDT"))
}
