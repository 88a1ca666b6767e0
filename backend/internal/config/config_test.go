package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("LOT_TRACKED_CURRENCIES", "")
	t.Setenv("REJECT_LOT_GAPS", "")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, []string{"USDT"}, cfg.LotTracked)
	assert.False(t, cfg.RejectLotGaps)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "admin", cfg.AdminUsername)
}

func TestLoadRequiresJWTSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9000")
	t.Setenv("LOT_TRACKED_CURRENCIES", "usdt, btc")
	t.Setenv("REJECT_LOT_GAPS", "true")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "30")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Port)
	assert.Equal(t, []string{"USDT", "BTC"}, cfg.LotTracked)
	assert.True(t, cfg.RejectLotGaps)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)
}
