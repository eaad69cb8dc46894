package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir()) // no config file present

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "./orivyx.db", cfg.DatabasePath)
	assert.Equal(t, "required", cfg.AuthMode)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
	assert.Equal(t, 15, cfg.DirectoryTimeoutSec)
	assert.Equal(t, 300, cfg.MonitorHistoryTTLSec)
	assert.Equal(t, float64(6), cfg.LeadRatePerMin)
	assert.Equal(t, 3, cfg.LeadRateBurst)
	assert.Equal(t, 64*1024, cfg.LeadMaxBodyBytes)
}

func TestLoadZeroBodyLimitFallsBack(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("ORIVYX_LEAD_MAX_BODY_BYTES", "0")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 64*1024, cfg.LeadMaxBodyBytes)
}

func TestLoadEnvOverride(t *testing.T) {
	viper.Reset()
	t.Chdir(t.TempDir())
	t.Setenv("ORIVYX_PORT", "9090")
	t.Setenv("ORIVYX_AUTH_MODE", "disabled")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "disabled", cfg.AuthMode)
}
