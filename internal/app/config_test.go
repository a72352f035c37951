package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/coffee-orders/internal/domain/discount"
)

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := loadConfig(filepath.Join(dir, ".env"), []string{filepath.Join(dir, "config.yaml")})
	require.NoError(t, err)

	assert.Equal(t, "RCS", cfg.OrderNumberPrefix)
	assert.Equal(t, discount.AllEnabled(), cfg.Discount.Policy())
	assert.Error(t, cfg.RequireDatabase())
}

func TestLoadConfig_Env(t *testing.T) {
	t.Setenv("COFFEE_DATABASE_URL", "postgres://localhost/coffee")
	t.Setenv("COFFEE_DISCOUNT_FREE_CHEAPEST_AFTER_N", "false")
	dir := t.TempDir()

	cfg, err := loadConfig(filepath.Join(dir, ".env"), nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://localhost/coffee", cfg.DatabaseURL)
	assert.NoError(t, cfg.RequireDatabase())
	assert.Equal(t, discount.Policy{Enabled: true, PercentageOverThreshold: true}, cfg.Discount.Policy())
}

func TestLoadConfig_YAML(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
order_number_prefix: CAFE
discount:
  enabled: false
`), 0o600))

	cfg, err := loadConfig(filepath.Join(dir, ".env"), []string{file})
	require.NoError(t, err)

	assert.Equal(t, "CAFE", cfg.OrderNumberPrefix)
	assert.False(t, cfg.Discount.Policy().Enabled)
	assert.True(t, cfg.Discount.Policy().PercentageOverThreshold)
}
